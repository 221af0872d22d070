package state

import "sync"

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore constructs the in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]*Session)}
}

// LastCity returns the last city stored for the user.
func (m *memoryStore) LastCity(userID int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok && sess.LastCity != nil {
		return *sess.LastCity, true
	}
	return "", false
}

// SetLastCity records city as the user's last query.
func (m *memoryStore) SetLastCity(userID int64, city string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{}
		m.sessions[userID] = sess
	}
	sess.LastCity = &city
}
