// Package raft contains the implementation of the Raft consensus layer.
package raft

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/denizg/dosya/internal/store"
	"github.com/hashicorp/raft"
	"github.com/sirupsen/logrus"
)

// Log entry operations.
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// RecordStore is the interface our FSM needs to interact with the storage layer.
type RecordStore interface {
	Insert(id, value string) bool
	Update(id, value string) store.UpdateResult
	Delete(id string)
	Snapshot() map[string]string
	Restore(records map[string]string)
}

// Command represents a single command that will be committed to the Raft log.
type Command struct {
	Op    string `json:"op"`
	ID    string `json:"id"`
	Value string `json:"value,omitempty"`
}

// FSM is a Finite State Machine that applies Raft logs to the record store.
type FSM struct {
	store RecordStore
	log   logrus.FieldLogger
}

// NewFSM creates a new FSM over the given record store.
func NewFSM(st RecordStore, logger logrus.FieldLogger) *FSM {
	return &FSM{
		store: st,
		log:   logger,
	}
}

// Apply applies a Raft log entry to the record store. The returned value is
// handed back to the caller through ApplyFuture.Response:
// the id for CREATE, a store.UpdateResult for UPDATE, nil for DELETE,
// or an error.
func (f *FSM) Apply(entry *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(entry.Data, &cmd); err != nil {
		f.log.Panicf("Failed to unmarshal command at index %d: %v", entry.Index, err)
	}

	f.log.WithFields(logrus.Fields{
		"op":    cmd.Op,
		"id":    cmd.ID,
		"index": entry.Index,
	}).Debug("FSM: applying command")

	switch cmd.Op {
	case OpCreate:
		if !f.store.Insert(cmd.ID, cmd.Value) {
			return store.ErrIDTaken
		}
		return cmd.ID
	case OpUpdate:
		return f.store.Update(cmd.ID, cmd.Value)
	case OpDelete:
		f.store.Delete(cmd.ID)
		return nil
	default:
		f.log.Warnf("FSM: unrecognized command op: %s", cmd.Op)
		return fmt.Errorf("unrecognized command op %q", cmd.Op)
	}
}

// Snapshot captures every record so the log can be compacted.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	return &fsmSnapshot{records: f.store.Snapshot()}, nil
}

// Restore replaces the store contents with a snapshot written by Persist.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var records map[string]string
	if err := json.NewDecoder(rc).Decode(&records); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	f.store.Restore(records)
	f.log.Infof("FSM: restored %d records from snapshot", len(records))
	return nil
}

type fsmSnapshot struct {
	records map[string]string
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.records); err != nil {
		sink.Cancel()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return sink.Close()
}

func (s *fsmSnapshot) Release() {}
