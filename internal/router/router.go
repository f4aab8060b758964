package router

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/auth"
	"github.com/Pingu1337/QRx1/internal/handlers"
	"github.com/Pingu1337/QRx1/internal/middleware"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, authn auth.Authenticator, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	// Генерация QR-кодов закрыта аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware)
		r.Get("/qr", handler.GenerateQR)
		r.Post("/qr", handler.GenerateQR)
		r.Get("/qr/raw", handler.GenerateRawQR)
	})

	// Переход по ссылке доступен любому обладателю токена
	r.Get("/link/{id}", handler.ResolveLink)

	r.Get("/advertise", handler.AdvertisePage)
	r.Post("/advertise", handler.SubmitAdvertise)
	r.Get("/access-denied", handler.AccessDenied)
	r.Get("/ping", handler.Ping)

	return r
}
