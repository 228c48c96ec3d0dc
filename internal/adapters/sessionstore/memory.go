package sessionstore

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	values   map[string]string
	lastSeen time.Time
}

// Memory is an in-process Storage. Sessions idle for longer than the TTL
// are dropped on next access or by Sweep.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemory creates an in-memory storage. ttl <= 0 means DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{sessions: make(map[string]*memorySession), ttl: ttl, now: time.Now}
}

// session returns the live session, dropping it when idle too long.
// PRE: m.mu is held
func (m *Memory) session(id string, create bool) *memorySession {
	now := m.now()
	s, ok := m.sessions[id]
	if ok && now.Sub(s.lastSeen) > m.ttl {
		delete(m.sessions, id)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		s = &memorySession{values: make(map[string]string)}
		m.sessions[id] = s
	}
	s.lastSeen = now
	return s
}

// Get returns a value from the session.
func (m *Memory) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(sessionID, false)
	if s == nil {
		return "", false, nil
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores a value, creating the session if needed.
func (m *Memory) Set(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(sessionID, true).values[key] = value
	return nil
}

// Delete removes keys and drops the session once it is empty.
func (m *Memory) Delete(_ context.Context, sessionID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(sessionID, false)
	if s == nil {
		return nil
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	if len(s.values) == 0 {
		delete(m.sessions, sessionID)
	}
	return nil
}

// Sweep drops every idle session and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
