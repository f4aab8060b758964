package router_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/auth"
	"github.com/Pingu1337/QRx1/internal/handlers"
	"github.com/Pingu1337/QRx1/internal/mailer"
	"github.com/Pingu1337/QRx1/internal/qr"
	"github.com/Pingu1337/QRx1/internal/router"
	"github.com/Pingu1337/QRx1/internal/service"
	"github.com/Pingu1337/QRx1/internal/storage"
)

// Собирает сервис целиком: память + движок + обработчики + маршруты.
func setupServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(staticDir, "index.html"),
		[]byte("<html>consumed</html>"), 0644))

	logger := zap.NewNop()
	store := storage.NewMemoryStore(time.Hour)
	svc := service.NewLinkService(store, logger, 7, 180*time.Second, 600*time.Second)
	producer := qr.NewProducer()
	mail := mailer.New("localhost", 465, "", "", "", false, logger)
	handler := handlers.NewHandler(svc, producer, mail, logger, "http://qrx.test", staticDir)
	authn := auth.New("development", "", logger)

	srv := httptest.NewServer(router.NewRouter(handler, authn, logger))
	t.Cleanup(srv.Close)
	return srv, store
}

// Полный сценарий: QR выпускает ссылку, первый переход редиректит,
// второй получает заглушку.
func TestQRLinkRoundtrip(t *testing.T) {
	srv, store := setupServer(t)

	client := srv.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(srv.URL + "/qr?data=https://example.com&timeout=5")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	require.Equal(t, 1, store.Len())

	// Токен достаём из хранилища: в ответе он закодирован в картинку
	tokens := store.Tokens()
	require.Len(t, tokens, 1)
	token := tokens[0]

	first, err := client.Get(srv.URL + "/link/" + token)
	require.NoError(t, err)
	defer first.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, first.StatusCode)
	assert.Equal(t, "https://example.com", first.Header.Get("Location"))

	// Повторный переход — ссылка уже погашена
	second, err := client.Get(srv.URL + "/link/" + token)
	require.NoError(t, err)
	defer second.Body.Close()
	assert.Equal(t, http.StatusOK, second.StatusCode)
}

func TestQRNoData(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := srv.Client().Get(srv.URL + "/qr")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPingRoute(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := srv.Client().Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
