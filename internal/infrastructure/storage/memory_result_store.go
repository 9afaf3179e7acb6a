package storage

import (
	"sync"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/domain/port"
)

// MemoryResultStore in-memory хранилище детекций
type MemoryResultStore struct {
	mu    sync.RWMutex
	batch entity.DetectionBatch
}

// NewMemoryResultStore создаёт пустое хранилище
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{}
}

// Reset очищает хранилище
func (s *MemoryResultStore) Reset() {
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()
}

// SetBatch заменяет детекции, без слияния с прежними
func (s *MemoryResultStore) SetBatch(batch entity.DetectionBatch) {
	s.mu.Lock()
	s.batch = batch.Clone()
	s.mu.Unlock()
}

// Current возвращает копию текущих детекций
func (s *MemoryResultStore) Current() entity.DetectionBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.batch.Clone()
}

// Проверка реализации интерфейса
var _ port.DetectionResultStore = (*MemoryResultStore)(nil)
