// Package auth содержит аутентификацию входящих запросов.
// Вариант выбирается один раз при старте по конфигурации, а не
// по переменным окружения внутри обработчиков.
package auth

import (
	"context"
	"crypto/hmac"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerProxySecret  = "X-RapidAPI-Proxy-Secret"
	headerUser         = "X-RapidAPI-User"
	headerSubscription = "X-RapidAPI-Subscription"
	headerVersion      = "X-RapidAPI-Version"
)

// Principal описывает авторизованного клиента запроса.
type Principal struct {
	ID           string
	Name         string
	Subscription string
	Version      string
}

type contextKey struct{}

// WithPrincipal кладёт принципала в контекст запроса.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext извлекает принципала из контекста запроса.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Authenticator — подключаемая стратегия аутентификации.
type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// New выбирает стратегию по окружению: в development запросы
// пропускаются без проверки, иначе проверяется секрет прокси.
func New(environment, proxySecret string, logger *zap.Logger) Authenticator {
	if environment == "development" {
		return &Noop{Logger: logger}
	}
	return &ProxySecret{Secret: proxySecret, Logger: logger}
}

// Noop пропускает все запросы. Только для локальной разработки.
type Noop struct {
	Logger *zap.Logger
}

// Middleware реализует Authenticator.
func (a *Noop) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Logger.Info("аутентификация пропущена (development)",
			zap.String("uri", r.RequestURI),
		)
		next.ServeHTTP(w, r)
	})
}

// ProxySecret проверяет секрет API-прокси и собирает принципала из
// заголовков прокси.
type ProxySecret struct {
	Secret string
	Logger *zap.Logger
}

// Middleware реализует Authenticator.
func (a *ProxySecret) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(headerProxySecret)
		if a.Secret == "" || !hmac.Equal([]byte(got), []byte(a.Secret)) {
			a.Logger.Warn("запрос отклонён: неверный секрет прокси",
				zap.String("uri", r.RequestURI),
			)
			http.Redirect(w, r, "/access-denied", http.StatusFound)
			return
		}

		p := Principal{
			ID:           r.Header.Get(headerUser),
			Name:         r.Header.Get(headerUser),
			Subscription: r.Header.Get(headerSubscription),
			Version:      r.Header.Get(headerVersion),
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
