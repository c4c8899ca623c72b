// Package snapshot holds the latest backend state the estimator runs on.
// The engine itself is pure; the store is the single place where polled
// and pushed snapshots meet the request path.
package snapshot

import (
	"sync"
	"time"

	"github.com/smartcharge/chargest/core/model"
)

// Store exposes the latest queue status and system parameters.
type Store interface {
	SetQueueStatus(*model.QueueSnapshot)
	QueueStatus() (*model.QueueSnapshot, time.Time)
	SetSystemParameters(*model.SystemParameters)
	SystemParameters() (*model.SystemParameters, time.Time)
}

// MemoryStore is a mutex-guarded latest-value Store.
type MemoryStore struct {
	mu        sync.RWMutex
	queue     *model.QueueSnapshot
	queueAt   time.Time
	params    *model.SystemParameters
	paramsAt  time.Time
	clockFunc func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clockFunc: time.Now}
}

func (s *MemoryStore) SetQueueStatus(q *model.QueueSnapshot) {
	s.mu.Lock()
	s.queue = q
	s.queueAt = s.clockFunc()
	s.mu.Unlock()
}

// QueueStatus returns the latest queue snapshot and when it was stored.
// A nil snapshot means none has arrived yet.
func (s *MemoryStore) QueueStatus() (*model.QueueSnapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue, s.queueAt
}

func (s *MemoryStore) SetSystemParameters(p *model.SystemParameters) {
	s.mu.Lock()
	s.params = p
	s.paramsAt = s.clockFunc()
	s.mu.Unlock()
}

// SystemParameters returns the latest parameters and when they were stored.
func (s *MemoryStore) SystemParameters() (*model.SystemParameters, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params, s.paramsAt
}
