package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/denizg/dosya/internal/store"
	"github.com/hashicorp/raft"
)

// localWriter applies writes straight to an in-process store.
type localWriter struct {
	st *store.Store
}

// Local returns a Writer that mutates st directly. Its methods never fail.
func Local(st *store.Store) Writer {
	return localWriter{st: st}
}

func (l localWriter) Create(value string) (string, error) {
	return l.st.Create(value), nil
}

func (l localWriter) Update(id, value string) (store.UpdateResult, error) {
	return l.st.Update(id, value), nil
}

func (l localWriter) Delete(id string) error {
	l.st.Delete(id)
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	values := s.records.List()
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, values)
}

// handleGet serves read requests. It reads directly from the local store,
// so followers in a raft cluster might have slightly stale data.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	value, ok := s.records.Get(r.PathValue("id"))
	if !ok {
		writeText(w, http.StatusOK, msgNotFound)
		return
	}
	writeText(w, http.StatusOK, value)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	value, ok := s.readBody(w, r)
	if !ok {
		return
	}
	id, err := s.writer.Create(value)
	if err != nil {
		s.writeFailed(w, "create", err)
		return
	}
	s.log.WithField("id", id).Info("Created record")
	writeText(w, http.StatusOK, msgCreated+id)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	value, ok := s.readBody(w, r)
	if !ok {
		return
	}
	result, err := s.writer.Update(id, value)
	if err != nil {
		s.writeFailed(w, "update", err)
		return
	}
	if result != store.Updated {
		writeText(w, http.StatusOK, msgNotFound)
		return
	}
	s.log.WithField("id", id).Info("Updated record")
	writeText(w, http.StatusOK, msgUpdated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.writer.Delete(id); err != nil {
		s.writeFailed(w, "delete", err)
		return
	}
	s.log.WithField("id", id).Info("Deleted record")
	w.WriteHeader(http.StatusOK)
}

// readBody returns the raw request body as the record value. On failure it
// has already written the error response.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return "", false
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}
	return string(body), true
}

// writeFailed maps a Writer error to a response. Writes that reach a raft
// follower are refused with the leader's address.
func (s *Server) writeFailed(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, raft.ErrNotLeader) {
		leaderAddr := ""
		if s.opts.Cluster != nil {
			leaderAddr = s.opts.Cluster.Leader()
		}
		http.Error(w, "Writes must be sent to the leader at: "+leaderAddr, http.StatusForbidden)
		return
	}
	s.log.WithError(err).Errorf("Failed to %s record", op)
	http.Error(w, "Failed to "+op+" record: "+err.Error(), http.StatusInternalServerError)
}
