package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pingu1337/QRx1/internal/model"
	"github.com/Pingu1337/QRx1/internal/storage"
)

// Тест сохранения и атомарного взятия записи
func TestMemoryStore_SaveAndTake(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)

	rec := &model.LinkRecord{Token: "abc1234", Target: "https://yandex.ru", Created: time.Now()}
	require.NoError(t, store.Save(context.Background(), rec))

	got, err := store.Take(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://yandex.ru", got.Target)

	// Повторное взятие — запись уже уничтожена
	_, err = store.Take(context.Background(), "abc1234")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_TakeMissing(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)

	_, err := store.Take(context.Background(), "nothing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// Запись старше страховочного окна недоступна, даже если мягкий
// таймер по ней не сработал.
func TestMemoryStore_BackstopExpiry(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)

	rec := &model.LinkRecord{
		Token:   "old1234",
		Target:  "https://yandex.ru",
		Created: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), rec))

	_, err := store.Take(context.Background(), "old1234")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, store.Len())
}

// Уборка удаляет только просроченные записи.
func TestMemoryStore_Sweep(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)

	require.NoError(t, store.Save(context.Background(), &model.LinkRecord{
		Token: "fresh12", Target: "https://yandex.ru", Created: time.Now(),
	}))
	require.NoError(t, store.Save(context.Background(), &model.LinkRecord{
		Token: "stale12", Target: "https://mail.ru", Created: time.Now().Add(-2 * time.Hour),
	}))

	removed, err := store.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 1, store.Len())

	got, err := store.Take(context.Background(), "fresh12")
	require.NoError(t, err)
	assert.Equal(t, "https://yandex.ru", got.Target)
}

// Из конкурирующих взятий одной записи выигрывает ровно одно.
func TestMemoryStore_ConcurrentTake(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)

	rec := &model.LinkRecord{Token: "race123", Target: "https://yandex.ru", Created: time.Now()}
	require.NoError(t, store.Save(context.Background(), rec))

	const goroutines = 32
	var wg sync.WaitGroup
	var wins int64
	var mu sync.Mutex

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Take(context.Background(), "race123"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}

func TestMemoryStore_Ping(t *testing.T) {
	store := storage.NewMemoryStore(time.Hour)
	assert.NoError(t, store.Ping(context.Background()))
}
