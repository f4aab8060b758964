package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipMiddleware_CompressesResponse(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("advertise ", 50)))
	})

	req := httptest.NewRequest(http.MethodGet, "/advertise", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(next).ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	reader, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "advertise")
}

// JPEG-ответы /qr не должны заворачиваться в gzip.
func TestGzipMiddleware_SkipsQRImages(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xff, 0xd8, 0xff})
	})

	req := httptest.NewRequest(http.MethodGet, "/qr?data=hello", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(next).ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, w.Body.Bytes())
}

func TestGzipMiddleware_DecompressesRequest(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
	})

	var compressed strings.Builder
	gz := gzip.NewWriter(&compressed)
	_, err := gz.Write([]byte(`{"data":"hello"}`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req := httptest.NewRequest(http.MethodPost, "/qr", strings.NewReader(compressed.String()))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(next).ServeHTTP(w, req)

	assert.Equal(t, `{"data":"hello"}`, got)
}
