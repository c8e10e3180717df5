// Package main is the entry point for the dosya record server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denizg/dosya/internal/config"
	"github.com/denizg/dosya/internal/mcptools"
	internal_raft "github.com/denizg/dosya/internal/raft"
	"github.com/denizg/dosya/internal/server"
	"github.com/denizg/dosya/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/raft"
	"github.com/sirupsen/logrus"
)

const version = "0.1.0"

var log = logrus.New()

func initLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(lvl)
	return nil
}

func main() {
	// --- Configuration and Flags ---
	configFile := flag.String("config", "", "Path to config file (defaults are used when empty)")
	bootstrap := flag.Bool("bootstrap", false, "Bootstrap the raft cluster (run on the first node only)")
	flag.Parse()

	cfg := config.New()
	if *configFile != "" {
		if err := cfg.Load(*configFile); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := initLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	bodyLimit, err := cfg.BodyLimit()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// --- Initialize Store ---
	st := store.New(cfg.Shards)
	var writer server.Writer = server.Local(st)
	var cluster server.Cluster

	// --- Raft Setup ---
	var node *internal_raft.Node
	if cfg.Raft.Enabled {
		node, err = startRaft(cfg, st, *bootstrap)
		if err != nil {
			log.Fatalf("Failed to start raft: %v", err)
		}
		writer, cluster = node, node
	}

	// --- MCP endpoint ---
	var mcpHandler http.Handler
	if cfg.MCPPath != "" {
		mcpHandler = mcptools.Handler(mcptools.New(st, writer, version))
	}

	// --- Start the HTTP Server ---
	handler := server.New(st, writer, server.Options{
		Paths:        cfg.Paths,
		MaxBodyBytes: bodyLimit,
		Cluster:      cluster,
		MCP:          mcpHandler,
		MCPPath:      cfg.MCPPath,
		Logger:       log,
	})
	ln, err := server.Listen(cfg.HTTPAddr(), cfg.MaxConnections)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.HTTPAddr(), err)
	}
	httpServer := &http.Server{Handler: handler}

	log.WithFields(logrus.Fields{
		"addr":            ln.Addr().String(),
		"shards":          cfg.Shards,
		"max_body":        humanize.IBytes(uint64(bodyLimit)),
		"max_connections": cfg.MaxConnections,
		"raft":            cfg.Raft.Enabled,
	}).Info("Starting HTTP server")

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if node != nil && cfg.Raft.Join != "" {
		if err := joinCluster(cfg.Raft.Join, cfg.Raft.NodeID, node.Addr()); err != nil {
			log.Fatalf("Failed to join cluster via %s: %v", cfg.Raft.Join, err)
		}
		log.Infof("Joined cluster via %s", cfg.Raft.Join)
	}

	log.Info("dosya started successfully.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown: %v", err)
	}
	if node != nil {
		if err := node.Shutdown(); err != nil {
			log.Errorf("Raft shutdown: %v", err)
		}
	}
}

func startRaft(cfg *config.Config, st *store.Store, bootstrap bool) (*internal_raft.Node, error) {
	raftAddr := cfg.RaftAddr()
	addr, err := net.ResolveTCPAddr("tcp", raftAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving raft address: %w", err)
	}
	raftLog := log.WriterLevel(logrus.DebugLevel)
	transport, err := raft.NewTCPTransport(raftAddr, addr, 3, 10*time.Second, raftLog)
	if err != nil {
		return nil, fmt.Errorf("creating raft transport: %w", err)
	}

	node, err := internal_raft.NewNode(internal_raft.Config{
		NodeID:       cfg.Raft.NodeID,
		Bootstrap:    bootstrap,
		ApplyTimeout: cfg.Raft.ApplyTimeout,
		LogOutput:    raftLog,
	}, st, transport, log.WithField("node_id", cfg.Raft.NodeID))
	if err != nil {
		transport.Close()
		return nil, err
	}
	log.Infof("Raft node %s listening on %s", cfg.Raft.NodeID, node.Addr())
	return node, nil
}

// joinCluster asks the leader's HTTP API to add this node as a voter.
func joinCluster(leaderHTTP, nodeID, raftAddr string) error {
	body, err := json.Marshal(map[string]string{"node_id": nodeID, "addr": raftAddr})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post("http://"+leaderHTTP+"/join", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("join refused: %s", resp.Status)
	}
	return nil
}
