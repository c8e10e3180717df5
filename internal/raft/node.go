package raft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/denizg/dosya/internal/store"
	"github.com/hashicorp/raft"
	"github.com/sirupsen/logrus"
)

// maxCreateAttempts bounds id regeneration when a replicated create collides.
const maxCreateAttempts = 5

// Config configures a Node.
type Config struct {
	NodeID       string
	Bootstrap    bool          // Form a single-voter cluster on start
	ApplyTimeout time.Duration // Bound on how long a write waits for commit

	// Zero values keep hashicorp/raft's defaults.
	HeartbeatTimeout time.Duration
	ElectionTimeout  time.Duration
	CommitTimeout    time.Duration

	// LogOutput receives raft's own log lines.
	LogOutput io.Writer
}

// Node serializes record writes through a raft log and applies them to a
// local store once committed. Reads are served from that store directly.
type Node struct {
	raft         *raft.Raft
	transport    raft.Transport
	applyTimeout time.Duration
	log          logrus.FieldLogger
}

// NewNode starts a raft node whose FSM writes into st. Log, stable and
// snapshot storage are kept in memory.
func NewNode(cfg Config, st RecordStore, transport raft.Transport, logger logrus.FieldLogger) (*Node, error) {
	rc := raft.DefaultConfig()
	rc.LocalID = raft.ServerID(cfg.NodeID)
	if cfg.HeartbeatTimeout > 0 {
		rc.HeartbeatTimeout = cfg.HeartbeatTimeout
		rc.LeaderLeaseTimeout = cfg.HeartbeatTimeout
	}
	if cfg.ElectionTimeout > 0 {
		rc.ElectionTimeout = cfg.ElectionTimeout
	}
	if cfg.CommitTimeout > 0 {
		rc.CommitTimeout = cfg.CommitTimeout
	}
	if cfg.LogOutput != nil {
		rc.LogOutput = cfg.LogOutput
	}
	if cfg.ApplyTimeout <= 0 {
		cfg.ApplyTimeout = 5 * time.Second
	}

	logs := raft.NewInmemStore()
	snapshots := raft.NewInmemSnapshotStore()

	r, err := raft.NewRaft(rc, NewFSM(st, logger), logs, logs, snapshots, transport)
	if err != nil {
		return nil, fmt.Errorf("creating raft node: %w", err)
	}

	if cfg.Bootstrap {
		logger.Info("Bootstrapping cluster...")
		bootstrapConfig := raft.Configuration{
			Servers: []raft.Server{
				{
					ID:      rc.LocalID,
					Address: transport.LocalAddr(),
				},
			},
		}
		if err := r.BootstrapCluster(bootstrapConfig).Error(); err != nil {
			r.Shutdown()
			return nil, fmt.Errorf("bootstrapping cluster: %w", err)
		}
	}

	return &Node{
		raft:         r,
		transport:    transport,
		applyTimeout: cfg.ApplyTimeout,
		log:          logger,
	}, nil
}

// Create replicates a new record and returns its id.
func (n *Node) Create(value string) (string, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		resp, err := n.apply(Command{Op: OpCreate, ID: store.NewID(), Value: value})
		if errors.Is(err, store.ErrIDTaken) {
			continue
		}
		if err != nil {
			return "", err
		}
		id, ok := resp.(string)
		if !ok {
			return "", fmt.Errorf("unexpected create response %T", resp)
		}
		return id, nil
	}
	return "", fmt.Errorf("create: %w after %d attempts", store.ErrIDTaken, maxCreateAttempts)
}

// Update replicates a value replacement and reports whether the record existed.
func (n *Node) Update(id, value string) (store.UpdateResult, error) {
	resp, err := n.apply(Command{Op: OpUpdate, ID: id, Value: value})
	if err != nil {
		return store.NotFound, err
	}
	result, ok := resp.(store.UpdateResult)
	if !ok {
		return store.NotFound, fmt.Errorf("unexpected update response %T", resp)
	}
	return result, nil
}

// Delete replicates the removal of a record. Missing records are not an error.
func (n *Node) Delete(id string) error {
	_, err := n.apply(Command{Op: OpDelete, ID: id})
	return err
}

// apply submits cmd to the raft log and waits until it is applied locally.
func (n *Node) apply(cmd Command) (interface{}, error) {
	if n.raft.State() != raft.Leader {
		return nil, fmt.Errorf("%w: leader is at %q", raft.ErrNotLeader, n.Leader())
	}

	cmdBytes, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshaling command: %w", err)
	}

	// This is a blocking call that waits until the command is committed
	// by a majority of the cluster and applied to the FSM.
	future := n.raft.Apply(cmdBytes, n.applyTimeout)
	if err := future.Error(); err != nil {
		return nil, fmt.Errorf("applying %s: %w", cmd.Op, err)
	}
	if err, ok := future.Response().(error); ok {
		return nil, err
	}

	n.log.WithFields(logrus.Fields{"op": cmd.Op, "id": cmd.ID}).Debug("Applied command via Raft")
	return future.Response(), nil
}

// Join adds a voter to the cluster. Only the leader can do this.
func (n *Node) Join(nodeID, addr string) error {
	if n.raft.State() != raft.Leader {
		return fmt.Errorf("%w: leader is at %q", raft.ErrNotLeader, n.Leader())
	}
	future := n.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, 0)
	if err := future.Error(); err != nil {
		return fmt.Errorf("adding voter %s at %s: %w", nodeID, addr, err)
	}
	n.log.Infof("LEADER: Successfully added node %s at %s to the cluster", nodeID, addr)
	return nil
}

// State returns the node's raft role as text (Leader, Follower, ...).
func (n *Node) State() string {
	return n.raft.State().String()
}

// Leader returns the raft address of the current leader, or "" if unknown.
func (n *Node) Leader() string {
	addr, _ := n.raft.LeaderWithID()
	return string(addr)
}

// Addr is the raft address of this node.
func (n *Node) Addr() string {
	return string(n.transport.LocalAddr())
}

// WaitForLeader blocks until the cluster has elected a leader or ctx ends.
func (n *Node) WaitForLeader(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if n.Leader() != "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for leader: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Snapshot forces a snapshot of the FSM.
func (n *Node) Snapshot() error {
	return n.raft.Snapshot().Error()
}

// Shutdown stops the raft node.
func (n *Node) Shutdown() error {
	return n.raft.Shutdown().Error()
}
