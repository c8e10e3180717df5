package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/denizg/dosya/internal/dates"
	"github.com/denizg/dosya/internal/strutil"
)

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("metin") {
		http.Error(w, "Missing required parameter: metin", http.StatusBadRequest)
		return
	}
	text := q.Get("metin")
	writeText(w, http.StatusOK, fmt.Sprintf("Orijinal: %s, Ters: %s", text, strutil.Reverse(text)))
}

func (s *Server) handleDaysBetween(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, second := q.Get("tarih1"), q.Get("tarih2")

	days, err := dates.DaysBetween(first, second)
	if err != nil {
		if errors.Is(err, dates.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.WithError(err).Error("Date difference failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Tarih 1: %s, Tarih 2: %s arasındaki gün farkı: %d", first, second, days))
}

// joinRequest is the body of POST /join.
type joinRequest struct {
	NodeID string `json:"node_id"`
	Addr   string `json:"addr"`
}

// handleJoin adds a new node to the Raft cluster.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid join request body", http.StatusBadRequest)
		return
	}
	if req.NodeID == "" || req.Addr == "" {
		http.Error(w, "Missing node_id or addr in join request", http.StatusBadRequest)
		return
	}

	s.log.Infof("LEADER: Received join request for node %s at %s", req.NodeID, req.Addr)
	if err := s.opts.Cluster.Join(req.NodeID, req.Addr); err != nil {
		s.writeFailed(w, "join", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
