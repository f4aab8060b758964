package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/model"
)

// ErrNotFound возвращается, когда токен отсутствует в хранилище.
// Случаи "уже использован", "истёк" и "никогда не существовал"
// намеренно неразличимы.
var ErrNotFound = errors.New("link not found")

// LinkStore определяет контракт хранилища одноразовых ссылок.
type LinkStore interface {
	// Save сохраняет новую запись.
	Save(ctx context.Context, rec *model.LinkRecord) error
	// Take атомарно находит и удаляет запись по токену.
	// Из конкурирующих вызовов выигрывает ровно один.
	Take(ctx context.Context, token string) (*model.LinkRecord, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// Sweeper реализуется хранилищами, которым нужна периодическая уборка
// записей старше страховочного окна. Redis сюда не входит: там TTL
// выставляется на ключе и уборку делает сам сервер.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// RunJanitor запускает периодическую уборку до отмены контекста.
func RunJanitor(ctx context.Context, s Sweeper, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				logger.Error("уборка просроченных ссылок не удалась", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("удалены просроченные ссылки", zap.Int64("count", removed))
			}
		}
	}
}
