// Package pkg is a package that provides utilities for rocq.
package pkg

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrDuplicateKey is returned by Insert when the key is already present.
var ErrDuplicateKey = errors.New("appendlog: duplicate key")

// AppendLog is a generic append-only table keyed by K. Entries can be added
// and read but never updated or removed, which makes point-in-time views
// cheap: a view is just the length of the log at the moment it was taken.
//
// Reads may run concurrently; Insert takes an exclusive lock and performs the
// duplicate check and the append as one atomic step.
type AppendLog[K comparable, V any] interface {
	Len() uint64
	Insert(key K, val V) (uint64, error)
	Get(key K) (V, bool)
	View() View[K, V]
}

// View is a read-only snapshot of an AppendLog. It never observes entries
// inserted after it was taken.
type View[K comparable, V any] interface {
	Len() uint64
	Get(key K) (V, bool)
	Range(fn func(key K, val V) error) error
}

type logEntry[K comparable, V any] struct {
	key K
	val V
}

type appendLogImpl[K comparable, V any] struct {
	mu      sync.RWMutex
	index   map[K]uint64
	entries []logEntry[K, V]
}

// NewAppendLog creates an empty AppendLog.
func NewAppendLog[K comparable, V any]() AppendLog[K, V] {
	return &appendLogImpl[K, V]{
		index: make(map[K]uint64),
	}
}

// Insert implements AppendLog. It returns the sequence number assigned to the
// entry, or ErrDuplicateKey if the key is already present. The check and the
// append happen under one lock so two racing inserts of the same key cannot
// both succeed.
func (l *appendLogImpl[K, V]) Insert(key K, val V) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[key]; ok {
		return 0, ErrDuplicateKey
	}

	seq := uint64(len(l.entries))
	l.entries = append(l.entries, logEntry[K, V]{key: key, val: val})
	l.index[key] = seq

	slog.Debug("appendlog insert", "seq", seq)

	return seq, nil
}

// Get implements AppendLog. It reads the live table, including entries
// inserted after any outstanding views were taken.
func (l *appendLogImpl[K, V]) Get(key K) (V, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seq, ok := l.index[key]
	if !ok {
		var zero V
		return zero, false
	}

	return l.entries[seq].val, true
}

// Len implements AppendLog.
func (l *appendLogImpl[K, V]) Len() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return uint64(len(l.entries))
}

// View implements AppendLog.
func (l *appendLogImpl[K, V]) View() View[K, V] {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return &viewImpl[K, V]{log: l, limit: uint64(len(l.entries))}
}

type viewImpl[K comparable, V any] struct {
	log   *appendLogImpl[K, V]
	limit uint64
}

// Len implements View.
func (v *viewImpl[K, V]) Len() uint64 {
	return v.limit
}

// Get implements View. Entries inserted at or after the snapshot point are
// treated as absent.
func (v *viewImpl[K, V]) Get(key K) (V, bool) {
	v.log.mu.RLock()
	defer v.log.mu.RUnlock()

	seq, ok := v.log.index[key]
	if !ok || seq >= v.limit {
		var zero V
		return zero, false
	}

	return v.log.entries[seq].val, true
}

// Range implements View. It visits entries in insertion order and stops at
// the first callback error, which it returns.
func (v *viewImpl[K, V]) Range(fn func(key K, val V) error) error {
	v.log.mu.RLock()
	snapshot := v.log.entries[:v.limit]
	v.log.mu.RUnlock()

	for _, e := range snapshot {
		if err := fn(e.key, e.val); err != nil {
			return err
		}
	}

	return nil
}
