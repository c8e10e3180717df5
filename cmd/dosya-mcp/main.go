// Command dosya-mcp serves the record store and helpers as MCP tools over stdio.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/denizg/dosya/internal/mcptools"
	"github.com/denizg/dosya/internal/server"
	"github.com/denizg/dosya/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

const version = "0.1.0"

func main() {
	shards := flag.Int("shards", store.DefaultShards, "Lock stripes in the record store")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	st := store.New(*shards)
	srv := mcptools.New(st, server.Local(st), version)

	log.Info("Serving MCP on stdio")
	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
