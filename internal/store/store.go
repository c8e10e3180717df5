// Package store contains the core logic for the in-memory record store.
// It is designed to be thread-safe for concurrent access.
package store

import (
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// DefaultShards is the shard count used when the caller asks for none.
const DefaultShards = 32

// ErrIDTaken is returned when a record is inserted under an id that is already live.
var ErrIDTaken = errors.New("record id already in use")

// UpdateResult reports the outcome of an Update.
type UpdateResult int

const (
	// NotFound means the id was not live; the store is unchanged.
	NotFound UpdateResult = iota
	// Updated means the value was replaced.
	Updated
)

func (r UpdateResult) String() string {
	switch r {
	case Updated:
		return "Updated"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// shard is one lock-protected partition of the record map.
type shard struct {
	mu      sync.RWMutex
	records map[string]string
}

// Store is a thread-safe in-memory mapping from generated ids to opaque values.
// Records are striped over shards by the xxhash of their id, so operations on
// different ids rarely contend. Operations on the same id serialize on that
// shard's lock.
type Store struct {
	shards []*shard
}

// New initializes and returns an empty Store with the given number of shards.
// A non-positive count selects DefaultShards.
func New(shardCount int) *Store {
	if shardCount <= 0 {
		shardCount = DefaultShards
	}
	s := &Store{shards: make([]*shard, shardCount)}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]string)}
	}
	return s
}

// NewID returns a fresh random record id.
func NewID() string {
	return uuid.NewString()
}

func (s *Store) shardFor(id string) *shard {
	if len(s.shards) == 1 {
		return s.shards[0]
	}
	return s.shards[xxhash.Sum64String(id)%uint64(len(s.shards))]
}

// List returns a copy of every current value in unspecified order.
func (s *Store) List() []string {
	s.rlockAll()
	defer s.runlockAll()

	values := make([]string, 0, s.lenLocked())
	for _, sh := range s.shards {
		for _, v := range sh.records {
			values = append(values, v)
		}
	}
	return values
}

// Get returns the value stored under id and whether it was present.
func (s *Store) Get(id string) (string, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	value, ok := sh.records[id]
	return value, ok
}

// Create stores value under a newly generated id and returns that id.
func (s *Store) Create(value string) string {
	for {
		id := NewID()
		if s.Insert(id, value) {
			return id
		}
	}
}

// Insert stores value under id unless id is already live.
// It reports whether the record was inserted.
func (s *Store) Insert(id, value string) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.records[id]; exists {
		return false
	}
	sh.records[id] = value
	return true
}

// Update replaces the value of an existing record. It never creates one.
func (s *Store) Update(id, value string) UpdateResult {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.records[id]; !exists {
		return NotFound
	}
	sh.records[id] = value
	return Updated
}

// Delete removes the record if present. Deleting a missing id is a no-op.
func (s *Store) Delete(id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.records, id)
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.rlockAll()
	defer s.runlockAll()
	return s.lenLocked()
}

// Snapshot returns a point-in-time copy of all records keyed by id.
func (s *Store) Snapshot() map[string]string {
	s.rlockAll()
	defer s.runlockAll()

	out := make(map[string]string, s.lenLocked())
	for _, sh := range s.shards {
		for id, v := range sh.records {
			out[id] = v
		}
	}
	return out
}

// Restore replaces the whole content of the store with records.
func (s *Store) Restore(records map[string]string) {
	for _, sh := range s.shards {
		sh.mu.Lock()
	}
	defer func() {
		for i := len(s.shards) - 1; i >= 0; i-- {
			s.shards[i].mu.Unlock()
		}
	}()

	for _, sh := range s.shards {
		sh.records = make(map[string]string)
	}
	for id, v := range records {
		s.shardFor(id).records[id] = v
	}
}

func (s *Store) lenLocked() int {
	n := 0
	for _, sh := range s.shards {
		n += len(sh.records)
	}
	return n
}

// rlockAll read-locks every shard in index order.
func (s *Store) rlockAll() {
	for _, sh := range s.shards {
		sh.mu.RLock()
	}
}

// runlockAll releases the shard read locks in reverse order.
func (s *Store) runlockAll() {
	for i := len(s.shards) - 1; i >= 0; i-- {
		s.shards[i].mu.RUnlock()
	}
}
