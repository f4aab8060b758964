package storage

import (
	"context"
	"sync"
	"time"

	"github.com/Pingu1337/QRx1/internal/model"
)

// MemoryStore — потокобезопасное хранилище ссылок в памяти.
// Используется в локальной разработке и тестах.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string]model.LinkRecord
	backstop time.Duration
}

// NewMemoryStore создаёт новое хранилище в памяти.
func NewMemoryStore(backstop time.Duration) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]model.LinkRecord),
		backstop: backstop,
	}
}

// Save сохраняет запись.
func (s *MemoryStore) Save(_ context.Context, rec *model.LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.Token] = *rec
	return nil
}

// Take атомарно извлекает и удаляет запись. Записи старше
// страховочного окна считаются отсутствующими.
func (s *MemoryStore) Take(_ context.Context, token string) (*model.LinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.data, token)

	if time.Since(rec.Created) >= s.backstop {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Sweep удаляет записи старше страховочного окна.
func (s *MemoryStore) Sweep(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for token, rec := range s.data {
		if time.Since(rec.Created) >= s.backstop {
			delete(s.data, token)
			removed++
		}
	}
	return removed, nil
}

// Ping всегда успешен для хранилища в памяти.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Len возвращает число живых записей. Нужен тестам и уборке.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Tokens возвращает токены живых записей. Нужен тестам.
func (s *MemoryStore) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens := make([]string, 0, len(s.data))
	for token := range s.data {
		tokens = append(tokens, token)
	}
	return tokens
}
