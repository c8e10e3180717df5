// Package store_test contains the unit tests for the store package.
package store

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Lifecycle walks one record through create, read, update and delete.
func TestStore_Lifecycle(t *testing.T) {
	s := New(4)

	// 1. Get a non-existent id
	_, ok := s.Get("missing")
	assert.False(t, ok)

	// 2. Create returns an id that reads back the value
	id := s.Create("value1")
	require.NotEmpty(t, id)
	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "value1", got)

	// 3. Update replaces the value
	assert.Equal(t, Updated, s.Update(id, "value2"))
	got, ok = s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "value2", got)

	// 4. Delete removes it, and deleting again is a no-op
	s.Delete(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
	s.Delete(id)
	assert.Equal(t, 0, s.Len())
}

func TestStore_UpdateMissDoesNotInsert(t *testing.T) {
	s := New(0)

	assert.Equal(t, NotFound, s.Update("never-created", "v"))
	_, ok := s.Get("never-created")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
}

func TestStore_InsertRejectsLiveID(t *testing.T) {
	s := New(2)

	require.True(t, s.Insert("a", "first"))
	assert.False(t, s.Insert("a", "second"))

	got, _ := s.Get("a")
	assert.Equal(t, "first", got)

	s.Delete("a")
	assert.True(t, s.Insert("a", "third"))
}

func TestStore_ListMatchesLiveRecords(t *testing.T) {
	s := New(8)

	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		ids = append(ids, s.Create(fmt.Sprintf("v%d", i)))
	}
	s.Delete(ids[0])
	s.Delete(ids[5])
	s.Update(ids[1], "changed")

	values := s.List()
	assert.Len(t, values, 8)
	assert.Equal(t, 8, s.Len())
	assert.Contains(t, values, "changed")
	assert.NotContains(t, values, "v0")
	assert.NotContains(t, values, "v1")
}

func TestStore_ListEmptyIsNotNil(t *testing.T) {
	s := New(1)
	values := s.List()
	require.NotNil(t, values)
	assert.Len(t, values, 0)
}

func TestStore_SnapshotRestore(t *testing.T) {
	src := New(4)
	for i := 0; i < 20; i++ {
		src.Create(fmt.Sprintf("v%d", i))
	}
	snap := src.Snapshot()
	require.Len(t, snap, 20)

	// Mutating the snapshot must not leak into the store.
	for id := range snap {
		snap[id] = "mutated"
		break
	}
	assert.NotContains(t, src.List(), "mutated")

	dst := New(16)
	dst.Create("stale")
	dst.Restore(src.Snapshot())

	want := src.List()
	got := dst.List()
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "stale")

	for id, v := range src.Snapshot() {
		restored, ok := dst.Get(id)
		require.True(t, ok, "id %s missing after restore", id)
		assert.Equal(t, v, restored)
	}
}

func TestUpdateResult_String(t *testing.T) {
	assert.Equal(t, "Updated", Updated.String())
	assert.Equal(t, "NotFound", NotFound.String())
	assert.Equal(t, "Unknown", UpdateResult(42).String())
}

// TestStore_ConcurrentCreateUniqueIDs hammers Create from many goroutines.
func TestStore_ConcurrentCreateUniqueIDs(t *testing.T) {
	s := New(DefaultShards)
	var wg sync.WaitGroup
	numGoroutines := 100
	numOperations := 200

	idsCh := make(chan string, numGoroutines*numOperations)
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				idsCh <- s.Create(fmt.Sprintf("value_%d_%d", goroutineID, j))
			}
		}(i)
	}
	wg.Wait()
	close(idsCh)

	seen := make(map[string]struct{}, numGoroutines*numOperations)
	for id := range idsCh {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, numGoroutines*numOperations)
	assert.Equal(t, numGoroutines*numOperations, s.Len())
}

// TestStore_ConcurrentMixed runs reads, writes and snapshots together under -race.
func TestStore_ConcurrentMixed(t *testing.T) {
	s := New(8)
	shared := s.Create("initial_value")

	var wg sync.WaitGroup
	numGoroutines := 50
	numOperations := 500

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				switch j % 5 {
				case 0:
					id := s.Create("some_value")
					s.Delete(id)
				case 1:
					s.Update(shared, fmt.Sprintf("v_%d_%d", goroutineID, j))
				case 2:
					s.Get(shared)
				case 3:
					s.List()
				case 4:
					s.Snapshot()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(shared)
	assert.True(t, ok)
}
