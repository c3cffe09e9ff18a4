package services

import (
	"sync"

	"github.com/google/uuid"
)

// keyLock serializes work per key. Entries are dropped once unused.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock func.
func (k *keyLock) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// EventLocks serializes ticket issuance per event. Services that number
// tickets from the same store must share one instance so that sequence
// allocation and capacity checks never interleave.
type EventLocks struct {
	keys *keyLock
}

func NewEventLocks() *EventLocks {
	return &EventLocks{keys: newKeyLock()}
}

func (l *EventLocks) Lock(eventID uuid.UUID) func() {
	return l.keys.Lock(eventID.String())
}
