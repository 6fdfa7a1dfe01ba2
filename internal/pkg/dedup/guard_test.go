package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardMarkAndCheck(t *testing.T) {
	guard := NewGuard(DefaultMaxEntries)

	assert.False(t, guard.IsProcessed("Ev001"))
	guard.MarkProcessed("Ev001")
	assert.True(t, guard.IsProcessed("Ev001"))
	assert.False(t, guard.IsProcessed("Ev002"))
}

func TestGuardCheckAndMark(t *testing.T) {
	guard := NewGuard(DefaultMaxEntries)

	assert.False(t, guard.CheckAndMark("Ev001"), "first delivery processes")
	assert.True(t, guard.CheckAndMark("Ev001"), "redelivery is dropped")
}

func TestGuardOverflowClearsEverything(t *testing.T) {
	guard := NewGuard(3)
	for i := 0; i < 3; i++ {
		guard.MarkProcessed(fmt.Sprintf("Ev%03d", i))
	}
	require.Equal(t, 3, guard.Len())

	// The overflowing insert wipes the set, itself included.
	guard.MarkProcessed("Ev003")
	assert.Equal(t, 0, guard.Len())
	assert.False(t, guard.IsProcessed("Ev003"))
	assert.False(t, guard.IsProcessed("Ev000"))
}

func TestGuardDefaultsBadCap(t *testing.T) {
	guard := NewGuard(0)
	guard.MarkProcessed("Ev001")
	assert.Equal(t, 1, guard.Len())
}

func TestGuardConcurrentCheckAndMark(t *testing.T) {
	guard := NewGuard(DefaultMaxEntries)
	const workers = 32

	var processed int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !guard.CheckAndMark("Ev001") {
				mu.Lock()
				processed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), processed, "exactly one goroutine wins")
}

func TestEventHashStableAcrossKeyOrder(t *testing.T) {
	a := EventHash([]byte(`{"event_id":"Ev001","type":"event_callback"}`))
	b := EventHash([]byte(`{ "type": "event_callback", "event_id": "Ev001" }`))
	assert.Equal(t, a, b)

	c := EventHash([]byte(`{"event_id":"Ev002","type":"event_callback"}`))
	assert.NotEqual(t, a, c)
}

func TestEventHashMalformedJSONFallsBackToRawBytes(t *testing.T) {
	a := EventHash([]byte(`{"event_id":`))
	b := EventHash([]byte(`{"event_id":`))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, EventHash([]byte(`{"other":`)))
}
