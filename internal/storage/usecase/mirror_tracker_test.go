package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMirrorTracker_ChainsBatchesPerKey(t *testing.T) {
	tracker := newMirrorTracker()

	first, prev := tracker.begin("k", 2)
	assert.Nil(t, prev)

	second, prev := tracker.begin("k", 1)
	assert.NotNil(t, prev)

	_, other := tracker.begin("other", 1)
	assert.Nil(t, other, "keys are chained independently")

	tracker.done("k", first)
	select {
	case <-prev:
		t.Fatal("previous batch reported done with one write outstanding")
	default:
	}

	tracker.done("k", first)
	select {
	case <-prev:
	case <-time.After(time.Second):
		t.Fatal("previous batch never reported done")
	}

	tracker.done("k", second)
	_, prev = tracker.begin("k", 1)
	assert.Nil(t, prev, "finished chains are forgotten")
}

func TestMirrorTracker_WaitKey(t *testing.T) {
	tracker := newMirrorTracker()
	batch, _ := tracker.begin("k", 1)

	released := make(chan struct{})
	go func() {
		tracker.waitKey("k")
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("waitKey returned with a mirror pending")
	case <-time.After(20 * time.Millisecond):
	}

	tracker.done("k", batch)
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waitKey never returned")
	}
}

func TestMirrorTracker_LockSerializesWriters(t *testing.T) {
	tracker := newMirrorTracker()
	unlock := tracker.lock("k")

	acquired := make(chan struct{})
	go func() {
		release := tracker.lock("k")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second writer acquired a held key")
	case <-time.After(20 * time.Millisecond):
	}

	otherUnlock := tracker.lock("other")
	otherUnlock()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second writer never acquired the key")
	}
}
