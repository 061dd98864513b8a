package conversation

import (
	"context"
	"sync"
	"time"
)

const minSweepSize = 1024

// Memory is an in-process store. Transcripts are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	maxTurns int
	ttl      time.Duration
	sessions map[string][]Turn

	// next map size that forces a sweep
	sweepAt   int
	lastSweep time.Time
	now       func() time.Time
}

// NewMemory keeps at most maxTurns turns per session; 0 means unbounded.
// Sessions whose last turn is older than ttl are dropped; ttl <= 0 keeps them forever.
func NewMemory(maxTurns int, ttl time.Duration) *Memory {
	return &Memory{
		maxTurns: maxTurns,
		ttl:      ttl,
		sessions: make(map[string][]Turn),
		sweepAt:  minSweepSize,
		now:      time.Now,
	}
}

func (m *Memory) expired(turns []Turn, now time.Time) bool {
	if m.ttl <= 0 || len(turns) == 0 {
		return false
	}
	return now.Sub(turns[len(turns)-1].At) > m.ttl
}

func (m *Memory) History(_ context.Context, key string) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := m.sessions[key]
	if m.expired(turns, m.now()) {
		return []Turn{}, nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *Memory) Append(_ context.Context, key string, t Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if t.At.IsZero() {
		t.At = now
	}
	turns := m.sessions[key]
	if m.expired(turns, now) {
		turns = nil
	}
	turns = append(turns, t)
	if m.maxTurns > 0 && len(turns) > m.maxTurns {
		turns = append([]Turn(nil), turns[len(turns)-m.maxTurns:]...)
	}
	if m.expired(turns, now) {
		delete(m.sessions, key)
	} else {
		m.sessions[key] = turns
	}

	if m.ttl > 0 && (len(m.sessions) >= m.sweepAt || now.Sub(m.lastSweep) > m.ttl) {
		m.sweep(now)
	}
	return nil
}

// sweep drops expired sessions. Caller holds the write lock.
func (m *Memory) sweep(now time.Time) {
	for k, turns := range m.sessions {
		if m.expired(turns, now) {
			delete(m.sessions, k)
		}
	}
	m.lastSweep = now
	m.sweepAt = 2 * len(m.sessions)
	if m.sweepAt < minSweepSize {
		m.sweepAt = minSweepSize
	}
}

// Len reports how many sessions are held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func (m *Memory) Close() error { return nil }
