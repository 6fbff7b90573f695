package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/foosball-tournament/config"
	"github.com/Dosada05/foosball-tournament/db"
	"github.com/Dosada05/foosball-tournament/handlers"
	"github.com/Dosada05/foosball-tournament/live"
	"github.com/Dosada05/foosball-tournament/repositories"
	api "github.com/Dosada05/foosball-tournament/routes"
	"github.com/Dosada05/foosball-tournament/services"
	"github.com/Dosada05/foosball-tournament/storage"
	"github.com/go-chi/chi/v5"
)

// @title Foosball Tournament API
// @version 1.0
// @description Organizer API and live feed for a foosball tournament tracker.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Настройка логгера
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logLevel.Set(cfg.LogLevel)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	ctx, stop := context.WithCancel(context.Background())

	// Хранилище состояния
	kv, closeStore, err := openStateStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open state store", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация загрузчика архивов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.ArchiveExportEnabled() {
		uploader, err = storage.NewS3Uploader(ctx, cfg.UploaderConfig())
		if err != nil {
			logger.Error("failed to initialize archive uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("archive uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("archive export disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		wsHub.Run(ctx)
		close(hubDone)
	}()
	logger.Info("live hub started")

	// Пароль организатора
	passwordHash := cfg.OrganizerPasswordHash
	if passwordHash == "" {
		passwordHash, err = services.HashPassword(cfg.OrganizerPassword)
		if err != nil {
			logger.Error("failed to hash organizer password", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Инициализация сервисов
	storeOpts := []services.StoreOption{
		services.WithNotifier(wsHub),
		services.WithRecentLimit(cfg.RecentMatchesLimit),
	}
	if uploader != nil {
		storeOpts = append(storeOpts, services.WithUploader(uploader))
	}
	store := services.NewStore(repositories.NewStateRepository(kv), logger, storeOpts...)

	loadCtx, cancelLoad := context.WithTimeout(ctx, 10*time.Second)
	err = store.Load(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Error("failed to load tournament state", slog.Any("error", err))
		os.Exit(1)
	}

	authService := services.NewAuthService(passwordHash, cfg.JWTSecretKey)
	tournamentService := services.NewTournamentService(store, logger)
	predictionService := services.NewPredictionService(store, logger)
	teamService := services.NewTeamService(store)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	historyHandler := handlers.NewHistoryHandler(tournamentService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	teamHandler := handlers.NewTeamHandler(teamService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		authService,
		authHandler,
		tournamentHandler,
		historyHandler,
		predictionHandler,
		teamHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Останавливаем hub: он закрывает соединения зрителей
	stop()
	<-hubDone
	closeStore()
	logger.Info("application exited")
	os.Exit(exitCode)
}

// openStateStore returns the key-value store for cfg.StorageDriver and a
// function releasing its connection.
func openStateStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.KVStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, cfg.PoolOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repositories.EnsurePostgresSchema(ctx, dbConn); err != nil {
			dbConn.Close()
			return nil, nil, err
		}
		logger.Info("database connection established")
		return repositories.NewPostgresKVStore(dbConn), closer(logger, "database connection", dbConn.Close), nil

	case config.StorageRedis:
		client, err := repositories.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis connection established", slog.String("key_prefix", cfg.RedisKeyPrefix))
		return repositories.NewRedisKVStore(client, cfg.RedisKeyPrefix), closer(logger, "redis connection", client.Close), nil

	default:
		logger.Warn("using in-memory state store, data is lost on restart")
		return repositories.NewMemoryKVStore(), func() {}, nil
	}
}

func closer(logger *slog.Logger, name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Error("failed to close "+name, slog.Any("error", err))
		} else {
			logger.Info(name + " closed")
		}
	}
}
