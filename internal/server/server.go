// Package server handles the HTTP API for the record store and helper endpoints.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/denizg/dosya/internal/config"
	"github.com/denizg/dosya/internal/store"
	"github.com/sirupsen/logrus"
)

// Response texts shared with API clients.
const (
	msgNotFound = "Not found"
	msgUpdated  = "Updated successfully"
	msgCreated  = "Created with ID: "
)

// Records is the read side of the record store.
// By depending on an interface, we can easily mock the store in our tests.
type Records interface {
	List() []string
	Get(id string) (string, bool)
	Len() int
}

// Writer applies record mutations, either directly or through a replicated log.
type Writer interface {
	Create(value string) (string, error)
	Update(id, value string) (store.UpdateResult, error)
	Delete(id string) error
}

// Cluster is implemented by a replicated Writer that supports membership changes.
type Cluster interface {
	Join(nodeID, addr string) error
	State() string
	Leader() string
}

// Options configures a Server. Zero values fall back to sensible defaults.
type Options struct {
	Paths        config.Paths
	MaxBodyBytes int64
	Cluster      Cluster      // nil in standalone mode
	MCP          http.Handler // mounted at MCPPath when both are set
	MCPPath      string
	Logger       logrus.FieldLogger
}

// Server is the HTTP server for the record store.
type Server struct {
	records Records
	writer  Writer
	opts    Options
	log     logrus.FieldLogger
	router  *http.ServeMux
	handler http.Handler
}

// New creates a new Server instance.
func New(records Records, writer Writer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Paths == (config.Paths{}) {
		opts.Paths = config.New().Paths
	}

	s := &Server{
		records: records,
		writer:  writer,
		opts:    opts,
		log:     opts.Logger,
		router:  http.NewServeMux(),
	}
	s.registerRoutes()
	s.handler = s.recoverPanics(s.logRequests(s.router))
	return s
}

// ServeHTTP makes our Server a standard http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// registerRoutes sets up the HTTP routing for the server.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /api/dosya", s.handleList)
	s.router.HandleFunc("POST /api/dosya", s.handleCreate)
	s.router.HandleFunc("GET /api/dosya/{id}", s.handleGet)
	s.router.HandleFunc("PUT /api/dosya/{id}", s.handleUpdate)
	s.router.HandleFunc("DELETE /api/dosya/{id}", s.handleDelete)

	s.router.HandleFunc("GET "+s.opts.Paths.StringBase+s.opts.Paths.StringReverse, s.handleReverse)
	s.router.HandleFunc("GET "+s.opts.Paths.DateBase+s.opts.Paths.DateDiff, s.handleDaysBetween)

	s.router.HandleFunc("GET /status", s.handleStatus)
	if s.opts.Cluster != nil {
		s.router.HandleFunc("POST /join", s.handleJoin)
	}
	if s.opts.MCP != nil && s.opts.MCPPath != "" {
		s.router.Handle(s.opts.MCPPath, s.opts.MCP)
	}
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusResponse is the body of GET /status.
type statusResponse struct {
	Records   int    `json:"records"`
	Mode      string `json:"mode"`
	RaftState string `json:"raft_state,omitempty"`
	Leader    string `json:"leader,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Records: s.records.Len(), Mode: "standalone"}
	if c := s.opts.Cluster; c != nil {
		resp.Mode = "raft"
		resp.RaftState = c.State()
		resp.Leader = c.Leader()
	}
	writeJSON(w, http.StatusOK, resp)
}
