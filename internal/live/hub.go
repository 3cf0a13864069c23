// Package live turns store mutations into live result streams. A Hub owns
// the query for one kind of snapshot; subscribers register under a key and
// receive the current snapshot immediately, then a fresh snapshot after
// every write that invalidates the key.
package live

import "sync"

// Hub fans snapshots out to subscribers grouped by key. Keys are isolated:
// invalidating one key never touches another key's subscribers.
//
// Delivery never blocks the writer. Each subscription holds a one-slot
// buffer and is conflated: a reader that falls behind skips intermediate
// snapshots and sees the latest one. Per subscription, deliveries stay in
// the order of the invalidations that produced them.
type Hub[K comparable, V any] struct {
	load func(K) (V, error)

	mu     sync.Mutex
	nextID int
	subs   map[K]map[int]*Sub[V]
}

// Sub is one live subscription. Close is idempotent and does not affect
// other subscribers.
type Sub[V any] struct {
	release func()
	filter  func(V) V
	ch      chan V
	once    sync.Once
}

// NewHub builds a hub around load, the snapshot query for a key. The hub
// runs load under its own lock, so snapshot order matches invalidation
// order.
func NewHub[K comparable, V any](load func(K) (V, error)) *Hub[K, V] {
	return &Hub[K, V]{
		load: load,
		subs: make(map[K]map[int]*Sub[V]),
	}
}

// Subscribe registers a subscriber for key and primes it with the current
// snapshot. filter, when non-nil, is applied to every delivery; it must be
// pure. Registration and priming happen under the hub lock, so no write can
// slip between the snapshot and the registration.
func (h *Hub[K, V]) Subscribe(key K, filter func(V) V) (*Sub[V], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.load(key)
	if err != nil {
		return nil, err
	}

	h.nextID++
	id := h.nextID

	sub := &Sub[V]{
		filter: filter,
		ch:     make(chan V, 1),
	}
	sub.release = func() { h.remove(key, id) }

	if h.subs[key] == nil {
		h.subs[key] = make(map[int]*Sub[V])
	}
	h.subs[key][id] = sub

	sub.deliver(snapshot)
	return sub, nil
}

// Invalidate re-runs the snapshot query for key and fans the result out to
// every subscriber of that key. Callers invoke it after the write they
// consider committed.
func (h *Hub[K, V]) Invalidate(key K) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subs[key]) == 0 {
		return nil
	}

	snapshot, err := h.load(key)
	if err != nil {
		return err
	}

	for _, sub := range h.subs[key] {
		sub.deliver(snapshot)
	}
	return nil
}

func (h *Hub[K, V]) remove(key K, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs[key], id)
	if len(h.subs[key]) == 0 {
		delete(h.subs, key)
	}
}

// C is the snapshot stream. It is never closed by the hub; readers stop by
// calling Close.
func (s *Sub[V]) C() <-chan V {
	return s.ch
}

// Close stops future deliveries and releases the subscription's slot.
func (s *Sub[V]) Close() {
	s.once.Do(s.release)
}

// deliver conflates: when the reader has not drained the previous snapshot,
// the stale one is dropped and replaced by the new one.
func (s *Sub[V]) deliver(snapshot V) {
	value := snapshot
	if s.filter != nil {
		value = s.filter(snapshot)
	}

	for {
		select {
		case s.ch <- value:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
