package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/database"
	"github.com/Pingu1337/QRx1/internal/model"
)

// PostgresStore реализует LinkStore поверх PostgreSQL.
// У Postgres нет TTL-индекса, поэтому страховочное окно обеспечивается
// на уровне хранилища дважды: Take отфильтровывает записи старше окна,
// а Sweep физически удаляет их. Оба механизма переживают рестарт
// процесса, в отличие от мягких таймеров движка.
type PostgresStore struct {
	db       *database.DB
	backstop time.Duration
	logger   *zap.Logger
}

// NewPostgresStore создаёт новый экземпляр PostgresStore.
func NewPostgresStore(db *database.DB, backstop time.Duration, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, backstop: backstop, logger: logger}
}

// Save сохраняет запись в базу данных.
func (s *PostgresStore) Save(ctx context.Context, rec *model.LinkRecord) error {
	query := `INSERT INTO links (token, target, created)
              VALUES ($1, $2, $3)
              RETURNING id`

	err := s.db.Pool.QueryRow(ctx, query, rec.Token, rec.Target, rec.Created).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

// Take удаляет запись по токену и возвращает её одним запросом.
// DELETE .. RETURNING закрывает гонку между переходом и таймаутом:
// два конкурирующих вызова не могут удалить одну строку дважды.
func (s *PostgresStore) Take(ctx context.Context, token string) (*model.LinkRecord, error) {
	query := `DELETE FROM links
              WHERE token = $1 AND created > $2
              RETURNING id, token, target, created`

	rec := &model.LinkRecord{}
	cutoff := time.Now().Add(-s.backstop)
	err := s.db.Pool.QueryRow(ctx, query, token, cutoff).Scan(
		&rec.ID, &rec.Token, &rec.Target, &rec.Created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return rec, nil
}

// Sweep удаляет записи старше страховочного окна.
func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	query := `DELETE FROM links WHERE created <= $1`
	tag, err := s.db.Pool.Exec(ctx, query, time.Now().Add(-s.backstop))
	if err != nil {
		return 0, fmt.Errorf("database sweep error: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping проверяет доступность базы данных.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, "SELECT 1")
	return err
}
