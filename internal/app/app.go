package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Freeeeeet/appointment_desk/internal/audit"
	"github.com/Freeeeeet/appointment_desk/internal/config"
	"github.com/Freeeeeet/appointment_desk/internal/http-server/router"
	"github.com/Freeeeeet/appointment_desk/internal/identity"
	"github.com/Freeeeeet/appointment_desk/internal/notify"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/repository/base"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App собранное приложение: хранилища, сервисы, HTTP-сервер и фоновые задачи
type App struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	redis     *redis.Client
	server    *http.Server
	scheduler *Scheduler
	logger    *zap.Logger
}

// New подключается к Postgres и Redis, применяет миграции и собирает сервисы
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	migrator, err := NewMigrator(pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	redisClient, err := NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	logRepo := repository.NewLogRepository(pool)
	tx := base.NewTransactor(pool)

	recorder := audit.NewRecorder(logRepo, logger.Named("audit"))
	provider := identity.NewProvider(credentialRepo, logger)
	sessions := session.NewManager(session.NewRedisStore(redisClient), cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	// Сервисы
	services := router.Services{
		Auth:      service.NewAuthService(userRepo, provider, sessions, recorder, cfg.Auth.AllowAdminSignup, logger),
		Admin:     service.NewAdminService(userRepo, slotRepo, appointmentRepo, tx, provider, sessions, recorder, recorder, notifier, logger),
		Slots:     service.NewSlotService(slotRepo, appointmentRepo, tx, recorder, logger),
		Booking:   service.NewBookingService(userRepo, slotRepo, appointmentRepo, tx, recorder, notifier, logger),
		Messages:  service.NewMessageService(userRepo, messageRepo, recorder, logger),
		Dashboard: service.NewDashboardService(userRepo, slotRepo, appointmentRepo, messageRepo),
	}

	server := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router.New(logger, services),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		cfg:       cfg,
		pool:      pool,
		redis:     redisClient,
		server:    server,
		scheduler: NewScheduler(recorder, cfg.Audit.Retention, logger),
		logger:    logger,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down HTTP server", zap.Duration("timeout", a.cfg.HTTPServer.ShutdownTimeout))

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.logger.Info("Server shutdown complete")
	return nil
}

// Close освобождает соединения с хранилищами
func (a *App) Close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Error("Failed to close redis", zap.Error(err))
	}
	a.pool.Close()
	a.logger.Info("Storage closed")
}

// NewPool создаёт пул соединений Postgres и проверяет его
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if !cfg.NotificationsEnabled() {
		logger.Info("Telegram notifications disabled")
		return notify.Nop{}, nil
	}

	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, logger.Named("notify"))
	if err != nil {
		return nil, fmt.Errorf("create telegram notifier: %w", err)
	}

	logger.Info("Telegram notifications enabled", zap.Int64("chat_id", cfg.Telegram.ChatID))
	return tg, nil
}
