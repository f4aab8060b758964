// Package service содержит движок жизненного цикла одноразовых ссылок:
// выпуск токена, мягкий таймаут и одноразовое погашение.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/model"
	"github.com/Pingu1337/QRx1/internal/storage"
)

// ErrEmptyTarget возвращается при попытке создать ссылку без адреса.
var ErrEmptyTarget = errors.New("target URL is empty")

// NoTimeout передаётся вместо timeoutSeconds, когда клиент не прислал
// таймаут. После нормализации даёт таймаут по умолчанию.
const NoTimeout = -1

const expireOpTimeout = 5 * time.Second

// LinkService управляет жизненным циклом одноразовых ссылок.
// Запись исчезает по первому из трёх событий: погашение, мягкий
// таймаут, страховочное окно хранилища.
type LinkService struct {
	store       storage.LinkStore
	logger      *zap.Logger
	tokenLength int
	defaultTTL  time.Duration
	maxTTL      time.Duration
	// after планирует одноразовый отложенный вызов. В боевом коде это
	// time.AfterFunc, в тестах срабатывание контролируется вручную.
	after func(d time.Duration, fn func())
}

// NewLinkService создаёт движок жизненного цикла ссылок.
func NewLinkService(store storage.LinkStore, logger *zap.Logger, tokenLength int, defaultTTL, maxTTL time.Duration) *LinkService {
	return &LinkService{
		store:       store,
		logger:      logger,
		tokenLength: tokenLength,
		defaultTTL:  defaultTTL,
		maxTTL:      maxTTL,
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// CreateEphemeralLink выпускает токен, сохраняет запись и планирует её
// мягкое удаление. Возвращает токен сразу, не дожидаясь таймера.
// Коллизии токенов не проверяются: при длине 7 вероятность ничтожна,
// а в database-режиме повтор упрётся в уникальный индекс.
func (s *LinkService) CreateEphemeralLink(ctx context.Context, targetURL string, timeoutSeconds int) (string, error) {
	if targetURL == "" {
		return "", ErrEmptyTarget
	}

	token, err := gonanoid.New(s.tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	rec := &model.LinkRecord{
		Token:   token,
		Target:  targetURL,
		Created: time.Now(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Error("не удалось сохранить ссылку",
			zap.String("token", token),
			zap.Error(err),
		)
		return "", fmt.Errorf("save link: %w", err)
	}

	ttl := s.normalizeTimeout(timeoutSeconds)
	s.after(ttl, func() { s.expireIfUnclaimed(token) })

	return token, nil
}

// normalizeTimeout приводит присланный клиентом таймаут к допустимому
// диапазону: отсутствующее, отрицательное или превышающее максимум
// значение заменяется таймаутом по умолчанию. Сравнение идёт в целых
// секундах: перевод в Duration до проверки переполнял бы int64 на
// больших значениях и пропускал отрицательный интервал в планировщик.
func (s *LinkService) normalizeTimeout(seconds int) time.Duration {
	if seconds < 0 || seconds > int(s.maxTTL/time.Second) {
		return s.defaultTTL
	}
	return time.Duration(seconds) * time.Second
}

// RedeemLink гасит токен: атомарно извлекает запись и возвращает адрес
// назначения. Для каждого токена успешным бывает не более одного
// вызова; все последующие получают storage.ErrNotFound.
func (s *LinkService) RedeemLink(ctx context.Context, token string) (string, error) {
	rec, err := s.store.Take(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("take link: %w", err)
	}
	return rec.Target, nil
}

// expireIfUnclaimed вызывается таймером мягкого таймаута. Если запись
// ещё жива — удаляет её; если уже погашена или убрана — ничего не
// делает. Таймер при погашении не отменяется: поздний вызов дешевле
// учёта таймеров.
func (s *LinkService) expireIfUnclaimed(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), expireOpTimeout)
	defer cancel()

	rec, err := s.store.Take(ctx, token)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("не удалось убрать просроченную ссылку",
				zap.String("token", token),
				zap.Error(err),
			)
		}
		return
	}

	s.logger.Info("ссылка не востребована и удалена",
		zap.String("token", rec.Token),
	)
}

// Ping проверяет доступность хранилища.
func (s *LinkService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
