package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/auth"
	"github.com/Pingu1337/QRx1/internal/config"
	"github.com/Pingu1337/QRx1/internal/database"
	"github.com/Pingu1337/QRx1/internal/handlers"
	"github.com/Pingu1337/QRx1/internal/mailer"
	"github.com/Pingu1337/QRx1/internal/qr"
	"github.com/Pingu1337/QRx1/internal/router"
	"github.com/Pingu1337/QRx1/internal/service"
	"github.com/Pingu1337/QRx1/internal/storage"
)

const janitorInterval = time.Minute

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		// Неполная конфигурация (например, production без секрета
		// прокси) молча отвергала бы каждый запрос — падаем сразу
		logger.Fatal("Некорректная конфигурация", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Выбор хранилища по режиму
	var store storage.LinkStore
	switch cfg.Mode {
	case "database":
		db, err := database.NewDB(cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
		}
		defer db.Close()

		if err := database.RunMigrations(cfg.PgMigrationsPath, cfg.DatabaseDSN); err != nil {
			logger.Fatal("Не удалось применить миграции", zap.Error(err))
		}
		store = storage.NewPostgresStore(db, cfg.BackstopTTL(), logger)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		store = storage.NewRedisStore(client, cfg.BackstopTTL(), logger)
	default:
		store = storage.NewMemoryStore(cfg.BackstopTTL())
	}

	// Уборка на стороне хранилища — страховка от потери таймеров
	// при рестарте процесса
	if sweeper, ok := store.(storage.Sweeper); ok {
		go storage.RunJanitor(ctx, sweeper, janitorInterval, logger)
	}

	svc := service.NewLinkService(store, logger, cfg.TokenLength, cfg.DefaultLinkTTL(), cfg.MaxLinkTTL())
	producer := qr.NewProducer()
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPSecret,
		cfg.ContactCopy, cfg.Environment == "production", logger)
	handler := handlers.NewHandler(svc, producer, mail, logger, cfg.BaseURL, cfg.StaticDir)
	authn := auth.New(cfg.Environment, cfg.ProxySecret, logger)

	r := router.NewRouter(handler, authn, logger)

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}

	go func() {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress))

		var err error
		if cfg.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка при запуске сервера", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Завершение работы сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
}
