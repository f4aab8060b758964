package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/auth"
)

func TestNoopPassesThrough(t *testing.T) {
	a := auth.New("development", "", zap.NewNop())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qr", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProxySecretRejectsWithoutHeader(t *testing.T) {
	a := auth.New("production", "top-secret", zap.NewNop())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next не должен вызываться без секрета")
	})

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qr", nil))

	resp := rec.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/access-denied", resp.Header.Get("Location"))
}

func TestProxySecretRejectsWrongSecret(t *testing.T) {
	a := auth.New("production", "top-secret", zap.NewNop())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next не должен вызываться с неверным секретом")
	})

	req := httptest.NewRequest(http.MethodGet, "/qr", nil)
	req.Header.Set("X-RapidAPI-Proxy-Secret", "guess")

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}

// Пустой сконфигурированный секрет не открывает доступ всем подряд.
func TestProxySecretEmptyConfiguredSecret(t *testing.T) {
	a := auth.New("production", "", zap.NewNop())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next не должен вызываться при пустом секрете")
	})

	req := httptest.NewRequest(http.MethodGet, "/qr", nil)
	req.Header.Set("X-RapidAPI-Proxy-Secret", "")

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestProxySecretBuildsPrincipal(t *testing.T) {
	a := auth.New("production", "top-secret", zap.NewNop())

	var got auth.Principal
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/qr", nil)
	req.Header.Set("X-RapidAPI-Proxy-Secret", "top-secret")
	req.Header.Set("X-RapidAPI-User", "pingu")
	req.Header.Set("X-RapidAPI-Subscription", "PRO")

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, "pingu", got.Name)
	assert.Equal(t, "PRO", got.Subscription)
}

func TestProxySecretAnonymousPrincipalGetsID(t *testing.T) {
	a := auth.New("production", "top-secret", zap.NewNop())

	var got auth.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/qr", nil)
	req.Header.Set("X-RapidAPI-Proxy-Secret", "top-secret")

	a.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, got.ID)
}
