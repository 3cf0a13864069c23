package live

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu   sync.Mutex
	data map[string][]int
}

func (f *fakeSource) set(key string, values ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = values
}

func (f *fakeSource) load(key string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func newFixture() (*fakeSource, *Hub[string, []int]) {
	src := &fakeSource{data: map[string][]int{}}
	return src, NewHub(src.load)
}

func TestSubscribePrimesWithCurrentSnapshot(t *testing.T) {
	src, hub := newFixture()
	src.set("a", 1, 2)

	sub, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []int{1, 2}, <-sub.C())
}

func TestInvalidateRedeliversToAllSubscribersOfKey(t *testing.T) {
	src, hub := newFixture()
	src.set("a", 1)

	first, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	defer first.Close()
	second, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	defer second.Close()

	<-first.C()
	<-second.C()

	src.set("a", 1, 2)
	require.NoError(t, hub.Invalidate("a"))

	assert.Equal(t, []int{1, 2}, <-first.C())
	assert.Equal(t, []int{1, 2}, <-second.C())
}

func TestKeysAreIsolated(t *testing.T) {
	src, hub := newFixture()
	src.set("a", 1)
	src.set("b", 9)

	subA, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	defer subA.Close()
	subB, err := hub.Subscribe("b", nil)
	require.NoError(t, err)
	defer subB.Close()

	<-subA.C()
	<-subB.C()

	src.set("b", 9, 10)
	require.NoError(t, hub.Invalidate("b"))

	select {
	case got := <-subA.C():
		t.Fatalf("subscriber for key a received %v from a write to key b", got)
	default:
	}
	assert.Equal(t, []int{9, 10}, <-subB.C())
}

func TestSlowReaderIsConflatedToLatestSnapshot(t *testing.T) {
	src, hub := newFixture()
	src.set("a", 0)

	sub, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	defer sub.Close()

	// never drain the primed snapshot; pile up writes
	for i := 1; i <= 5; i++ {
		src.set("a", i)
		require.NoError(t, hub.Invalidate("a"))
	}

	// the reader sees exactly the latest snapshot, not a stale intermediate
	assert.Equal(t, []int{5}, <-sub.C())
	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected buffered snapshot %v", extra)
	default:
	}
}

func TestFilterAppliesPerDelivery(t *testing.T) {
	src, hub := newFixture()
	src.set("a", 1, 2, 3, 4)

	evens := func(values []int) []int {
		kept := make([]int, 0, len(values))
		for _, v := range values {
			if v%2 == 0 {
				kept = append(kept, v)
			}
		}
		return kept
	}

	sub, err := hub.Subscribe("a", evens)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []int{2, 4}, <-sub.C())
}

func TestCloseStopsDeliveriesAndLeavesOthersAlone(t *testing.T) {
	src, hub := newFixture()
	src.set("a", 1)

	closed, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	kept, err := hub.Subscribe("a", nil)
	require.NoError(t, err)
	defer kept.Close()

	<-closed.C()
	<-kept.C()

	closed.Close()
	closed.Close() // idempotent

	src.set("a", 1, 2)
	require.NoError(t, hub.Invalidate("a"))

	select {
	case got := <-closed.C():
		t.Fatalf("closed subscription received %v", got)
	default:
	}
	assert.Equal(t, []int{1, 2}, <-kept.C())
}
