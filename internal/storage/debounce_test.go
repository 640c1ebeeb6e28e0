package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackboard/blackboard/internal/document"
)

type recordingStore struct {
	mu    sync.Mutex
	saved []*document.Document
	err   error
}

func (s *recordingStore) Load(context.Context) (*document.Document, error) {
	return document.NewEmptyDocument(), nil
}

func (s *recordingStore) Save(_ context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, doc)
	return s.err
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *recordingStore) last() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[len(s.saved)-1]
}

func docWithPan(x float64) *document.Document {
	doc := document.NewEmptyDocument()
	doc.View.PanX = x
	return doc
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	store := &recordingStore{}
	d := NewDebouncer(store, 20*time.Millisecond)

	for i := range 5 {
		d.Save(docWithPan(float64(i)), false)
	}
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 4.0, store.last().View.PanX, "the newest document wins")
	assert.False(t, d.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.count())
}

func TestDebouncerImmediateSave(t *testing.T) {
	store := &recordingStore{}
	d := NewDebouncer(store, time.Hour)

	d.Save(docWithPan(1), false)
	d.Save(docWithPan(2), true)

	require.Equal(t, 1, store.count())
	assert.Equal(t, 2.0, store.last().View.PanX)
	assert.False(t, d.Pending())
}

func TestDebouncerFlushAndDiscard(t *testing.T) {
	store := &recordingStore{}
	d := NewDebouncer(store, time.Hour)

	require.NoError(t, d.Flush(), "nothing pending")
	assert.Zero(t, store.count())

	d.Save(docWithPan(1), false)
	require.NoError(t, d.Flush())
	assert.Equal(t, 1, store.count())

	d.Save(docWithPan(2), false)
	d.Discard()
	require.NoError(t, d.Flush())
	assert.Equal(t, 1, store.count())
}

func TestDebouncerReportsWriteErrors(t *testing.T) {
	boom := errors.New("disk full")
	store := &recordingStore{err: boom}
	d := NewDebouncer(store, time.Hour)

	d.Save(docWithPan(1), false)
	assert.ErrorIs(t, d.Flush(), boom)
	assert.False(t, d.Pending(), "a failed write is dropped")
}

func TestDebouncerDefaultDelay(t *testing.T) {
	d := NewDebouncer(&recordingStore{}, 0)
	assert.Equal(t, DefaultSaveDelay, d.delay)
}

type blockingStore struct {
	recordingStore
	started chan struct{}
	release chan struct{}
}

func (s *blockingStore) Save(ctx context.Context, doc *document.Document) error {
	s.started <- struct{}{}
	<-s.release
	return s.recordingStore.Save(ctx, doc)
}

func TestDebouncerFlushWaitsForTimerWrite(t *testing.T) {
	store := &blockingStore{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDebouncer(store, time.Millisecond)

	d.Save(docWithPan(1), false)
	<-store.started

	flushed := make(chan error)
	go func() { flushed <- d.Flush() }()

	select {
	case <-flushed:
		t.Fatal("flush returned while a write was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(store.release)
	require.NoError(t, <-flushed)
	assert.Equal(t, 1, store.count())
}
