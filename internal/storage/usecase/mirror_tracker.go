package usecase

import (
	"sync"
)

// mirrorBatch is the set of mirror writes started by one Write.
type mirrorBatch struct {
	remaining int
	done      chan struct{}
}

// mirrorTracker counts in-flight mirror writes per key and chains the
// batches of one key so a slow mirror of an older value can never land after
// a newer one.
type mirrorTracker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string]int
	tails   map[string]*mirrorBatch
	writers map[string]*keyWriter
	total   int
}

// keyWriter serializes writes of one key from the primary write until its
// mirror batch is queued. refs counts the writers holding or waiting.
type keyWriter struct {
	mu   sync.Mutex
	refs int
}

func newMirrorTracker() *mirrorTracker {
	t := &mirrorTracker{
		pending: make(map[string]int),
		tails:   make(map[string]*mirrorBatch),
		writers: make(map[string]*keyWriter),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// lock serializes writers of key so the primary order and the mirror order
// agree. The returned func releases the key.
func (t *mirrorTracker) lock(key string) func() {
	t.mu.Lock()
	w, ok := t.writers[key]
	if !ok {
		w = &keyWriter{}
		t.writers[key] = w
	}
	w.refs++
	t.mu.Unlock()

	w.mu.Lock()
	return func() {
		w.mu.Unlock()
		t.mu.Lock()
		w.refs--
		if w.refs == 0 {
			delete(t.writers, key)
		}
		t.mu.Unlock()
	}
}

// begin registers a batch of n mirror writes for key. The returned channel
// is closed once the previous batch of key has finished; nil means there is
// nothing to wait for.
func (t *mirrorTracker) begin(key string, n int) (*mirrorBatch, <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var prev <-chan struct{}
	if tail, ok := t.tails[key]; ok {
		prev = tail.done
	}
	batch := &mirrorBatch{remaining: n, done: make(chan struct{})}
	t.tails[key] = batch
	t.pending[key] += n
	t.total += n
	return batch, prev
}

func (t *mirrorTracker) done(key string, batch *mirrorBatch) {
	t.mu.Lock()
	defer t.mu.Unlock()

	batch.remaining--
	if batch.remaining == 0 {
		close(batch.done)
		if t.tails[key] == batch {
			delete(t.tails, key)
		}
	}

	t.pending[key]--
	if t.pending[key] <= 0 {
		delete(t.pending, key)
	}
	t.total--
	t.cond.Broadcast()
}

func (t *mirrorTracker) waitKey(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.pending[key] > 0 {
		t.cond.Wait()
	}
}

func (t *mirrorTracker) waitAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.total > 0 {
		t.cond.Wait()
	}
}
