package app

import "sync"

// SessionFactory создаёт новую сессию для чата
type SessionFactory func() *Session

// Registry хранит по одной сессии на чат.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	factory  SessionFactory
}

// NewRegistry создаёт пустой реестр
func NewRegistry(factory SessionFactory) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		factory:  factory,
	}
}

// Get возвращает сессию чата, создаёт новую если не найдена
func (r *Registry) Get(chatID int64) *Session {
	r.mu.RLock()
	sess, exists := r.sessions[chatID]
	r.mu.RUnlock()

	if exists {
		return sess
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, exists = r.sessions[chatID]; exists {
		return sess
	}
	sess = r.factory()
	r.sessions[chatID] = sess
	return sess
}

// Drop закрывает и забывает сессию чата
func (r *Registry) Drop(chatID int64) {
	r.mu.Lock()
	sess, exists := r.sessions[chatID]
	delete(r.sessions, chatID)
	r.mu.Unlock()

	if exists {
		sess.Close()
	}
}

// Close закрывает все сессии
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[int64]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
