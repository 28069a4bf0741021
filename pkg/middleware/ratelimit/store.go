// Package ratelimit holds per-process request counters keyed by client and
// the echo middlewares built on them.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// WindowStore counts hits per key in fixed windows. Expired windows are
// swept at most once per window length.
type WindowStore struct {
	mu        sync.Mutex
	length    time.Duration
	hits      map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

func NewWindowStore(length time.Duration) *WindowStore {
	return &WindowStore{
		length: length,
		hits:   make(map[string]*window),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (s *WindowStore) WithClock(now func() time.Time) *WindowStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lastSweep = now()
	return s
}

// Hit records one request for key and returns the count in the current
// window together with the window's reset time.
func (s *WindowStore) Hit(key string) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.length {
		s.sweepLocked(now)
	}

	w, ok := s.hits[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(s.length)}
		s.hits[key] = w
	}
	w.count++
	return w.count, w.resetAt
}

func (s *WindowStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
}

func (s *WindowStore) sweepLocked(now time.Time) {
	for k, w := range s.hits {
		if !now.Before(w.resetAt) {
			delete(s.hits, k)
		}
	}
	s.lastSweep = now
}

func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// Limit adapts a WindowStore to echo's RateLimiterStore.
type Limit struct {
	Store *WindowStore
	Max   int
}

func (l *Limit) Allow(identifier string) (bool, error) {
	n, _ := l.Store.Hit(identifier)
	return n <= l.Max, nil
}
