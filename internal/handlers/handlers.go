package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/model"
	"github.com/Pingu1337/QRx1/internal/qr"
	"github.com/Pingu1337/QRx1/internal/service"
	"github.com/Pingu1337/QRx1/internal/storage"
)

// LinkService — движок жизненного цикла одноразовых ссылок.
type LinkService interface {
	CreateEphemeralLink(ctx context.Context, targetURL string, timeoutSeconds int) (string, error)
	RedeemLink(ctx context.Context, token string) (string, error)
	Ping(ctx context.Context) error
}

// Producer отрисовывает QR-коды.
type Producer interface {
	Render(content string, opts qr.Options) ([]byte, error)
}

// Sender отправляет сообщения формы обратной связи.
type Sender interface {
	Send(msg model.ContactMessage) error
}

// Handler обслуживает HTTP-поверхность сервиса.
type Handler struct {
	Service   LinkService
	QR        Producer
	Mailer    Sender
	Logger    *zap.Logger
	BaseURL   string
	StaticDir string
}

// NewHandler создаёт обработчики HTTP-поверхности.
func NewHandler(svc LinkService, producer Producer, mailer Sender, logger *zap.Logger, baseURL, staticDir string) *Handler {
	return &Handler{
		Service:   svc,
		QR:        producer,
		Mailer:    mailer,
		Logger:    logger,
		BaseURL:   baseURL,
		StaticDir: staticDir,
	}
}

// GenerateQR обрабатывает GET|POST /qr: выпускает одноразовую ссылку
// на присланные данные и возвращает QR-код этой ссылки.
func (h *Handler) GenerateQR(res http.ResponseWriter, req *http.Request) {
	qreq := parseQRRequest(req)
	if qreq.Data == "" {
		http.Error(res, "no data provided", http.StatusBadRequest)
		return
	}

	timeout := service.NoTimeout
	if qreq.Timeout != nil {
		timeout = *qreq.Timeout
	}

	token, err := h.Service.CreateEphemeralLink(req.Context(), qreq.Data, timeout)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTarget) {
			http.Error(res, "no data provided", http.StatusBadRequest)
			return
		}
		h.Logger.Error("не удалось создать ссылку", zap.Error(err))
		http.Error(res, "An error was encountered! Please try again.", http.StatusInternalServerError)
		return
	}

	h.renderQR(res, h.BaseURL+"/link/"+token, qreq.Options)
}

// GenerateRawQR обрабатывает GET /qr/raw: кодирует данные как есть,
// без выпуска одноразовой ссылки.
func (h *Handler) GenerateRawQR(res http.ResponseWriter, req *http.Request) {
	qreq := parseQRRequest(req)
	if qreq.Data == "" {
		http.Error(res, "no data provided", http.StatusBadRequest)
		return
	}
	h.renderQR(res, qreq.Data, qreq.Options)
}

func (h *Handler) renderQR(res http.ResponseWriter, content string, opts model.QROptions) {
	img, err := h.QR.Render(content, toRenderOptions(opts))
	if err != nil {
		h.Logger.Error("не удалось отрисовать QR-код", zap.Error(err))
		http.Error(res, "An error was encountered! Please try again.", http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "image/jpeg")
	res.Header().Set("Content-Length", strconv.Itoa(len(img)))
	res.Write(img)
}

// ResolveLink обрабатывает GET /link/{id}: гасит токен и перенаправляет
// на адрес назначения. Погашенный, просроченный и никогда не
// существовавший токены неразличимы — во всех случаях отдаётся
// страница-заглушка.
func (h *Handler) ResolveLink(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	if id == "" {
		http.Error(res, "Bad Request: Missing ID in URL", http.StatusBadRequest)
		return
	}

	target, err := h.Service.RedeemLink(req.Context(), id)
	switch {
	case err == nil:
		res.Header().Set("Location", target)
		res.WriteHeader(http.StatusTemporaryRedirect)
	case errors.Is(err, storage.ErrNotFound):
		h.servePage(res, req, "index.html")
	default:
		h.Logger.Error("хранилище недоступно при погашении",
			zap.String("token", id),
			zap.Error(err),
		)
		http.Error(res, "service temporarily unavailable", http.StatusBadGateway)
	}
}

// AdvertisePage обрабатывает GET /advertise.
func (h *Handler) AdvertisePage(res http.ResponseWriter, req *http.Request) {
	h.servePage(res, req, "advertise.html")
}

// SubmitAdvertise обрабатывает POST /advertise: отправляет письма и
// отдаёт страницу подтверждения.
func (h *Handler) SubmitAdvertise(res http.ResponseWriter, req *http.Request) {
	msg := model.ContactMessage{
		Org:   formValue(req, "org"),
		Email: formValue(req, "email"),
		Msg:   formValue(req, "msg"),
	}
	if msg.Email == "" {
		http.Error(res, "no email provided", http.StatusBadRequest)
		return
	}

	if err := h.Mailer.Send(msg); err != nil {
		h.Logger.Error("не удалось отправить письмо", zap.Error(err))
		http.Error(res, "An error was encountered! Please try again.", http.StatusInternalServerError)
		return
	}

	h.servePage(res, req, "advertise-submitted.html")
}

// AccessDenied обрабатывает GET /access-denied.
func (h *Handler) AccessDenied(res http.ResponseWriter, req *http.Request) {
	res.WriteHeader(http.StatusForbidden)
	http.ServeFile(&headerPreservingWriter{res}, req, filepath.Join(h.StaticDir, "access-denied.html"))
}

// Ping обрабатывает GET /ping: проверка доступности хранилища.
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	if err := h.Service.Ping(req.Context()); err != nil {
		http.Error(res, "storage unavailable", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

func (h *Handler) servePage(res http.ResponseWriter, req *http.Request, name string) {
	http.ServeFile(res, req, filepath.Join(h.StaticDir, name))
}

// headerPreservingWriter не даёт ServeFile перезаписать уже
// выставленный код ответа.
type headerPreservingWriter struct {
	http.ResponseWriter
}

func (w *headerPreservingWriter) WriteHeader(int) {}

// parseQRRequest собирает запрос из JSON-тела и query-параметров.
// Query имеет приоритет, но каждое поле независимо откатывается к
// телу: timeout из тела действует и когда data пришла через query.
func parseQRRequest(req *http.Request) model.QRRequest {
	var qreq model.QRRequest
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&qreq)
	}

	q := req.URL.Query()
	if v := q.Get("data"); v != "" {
		qreq.Data = v
	}
	if v := q.Get("dark"); v != "" {
		qreq.Options.Dark = v
	}
	if v := q.Get("light"); v != "" {
		qreq.Options.Light = v
	}
	if v, err := strconv.Atoi(q.Get("timeout")); err == nil {
		qreq.Timeout = &v
	}
	if v, err := strconv.Atoi(q.Get("width")); err == nil {
		qreq.Options.Width = v
	}
	if v, err := strconv.Atoi(q.Get("margin")); err == nil {
		qreq.Options.Margin = v
	}
	if v, err := strconv.ParseFloat(q.Get("quality"), 64); err == nil {
		qreq.Options.Quality = v
	}
	return qreq
}

// toRenderOptions переводит клиентские опции в параметры генератора.
// Качество приходит долей 0..1 (как у исходного API) и превращается
// в качество JPEG 1..100.
func toRenderOptions(opts model.QROptions) qr.Options {
	quality := 0
	if opts.Quality > 0 && opts.Quality <= 1 {
		quality = int(opts.Quality * 100)
	}
	return qr.Options{
		Width:   opts.Width,
		Dark:    opts.Dark,
		Light:   opts.Light,
		Quality: quality,
		Margin:  opts.Margin,
	}
}

func formValue(req *http.Request, key string) string {
	if v := req.URL.Query().Get(key); v != "" {
		return v
	}
	return req.PostFormValue(key)
}
