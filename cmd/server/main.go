package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hska/buch-catalog/internal/api"
	"github.com/hska/buch-catalog/internal/api/handler"
	"github.com/hska/buch-catalog/internal/core/ports"
	"github.com/hska/buch-catalog/internal/core/service"
	"github.com/hska/buch-catalog/internal/core/token"
	"github.com/hska/buch-catalog/internal/infrastructure/config"
	mongodb "github.com/hska/buch-catalog/internal/infrastructure/db/mongo"
	redisdb "github.com/hska/buch-catalog/internal/infrastructure/db/redis"
	"github.com/hska/buch-catalog/internal/infrastructure/notify"
	"github.com/hska/buch-catalog/internal/infrastructure/queue"
	"github.com/hska/buch-catalog/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		l := logger.Init(logger.Options{Service: "buch-catalog"})
		l.Fatal().Err(err).Msg("config error")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsLocal(),
		Service: "buch-catalog",
		Env:     cfg.Env,
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer rdb.Close()

	// --- Token codec ---
	alg, err := token.ParseAlgorithm(cfg.JWT.Algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt algorithm")
	}
	material, err := token.ReadMaterial(cfg.JWT.Secret, cfg.JWT.PrivateKeyFile, cfg.JWT.PublicKeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt keys")
	}
	codec, err := token.NewCodec(alg, material)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt codec")
	}

	// --- Services ---
	users := mongodb.NewUserRepository(db)
	authService, err := service.NewAuthService(users, codec, service.AuthConfig{
		Issuer:     cfg.JWT.Issuer,
		Lifetime:   cfg.JWT.Lifetime,
		BcryptCost: cfg.Auth.BcryptCost,
	}, logger.Component("auth"))
	if err != nil {
		log.Fatal().Err(err).Msg("auth service")
	}

	notifier := notify.New(notify.Config{
		Local:  cfg.IsLocal(),
		APIKey: cfg.Notify.ResendAPIKey,
		From:   cfg.Notify.From,
		To:     cfg.Notify.To,
	}, logger.Component("notify"))
	notifications := service.NewNotificationService(notifier, redisdb.NewDedupChecker(rdb), logger.Component("notify"))

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notifications, logger.Component("queue"))
	dispatcher.Start(workerCtx)

	buecher := mongodb.NewBuchRepository(db)
	buchService := service.NewBuchService(buecher, dispatcher, logger.Component("buecher"))

	mediaStore, err := mongodb.NewMediaStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("media store")
	}
	mediaService := service.NewMediaService(buecher, mediaStore, logger.Component("media"))

	var limiter ports.LoginLimiter
	if cfg.Auth.LoginRateLimit > 0 {
		limiter = redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:          logger.Component("http"),
		AuthService:  authService,
		BuchService:  buchService,
		MediaService: mediaService,
		LoginLimiter: limiter,
		Checks:       []handler.DependencyCheck{handler.MongoCheck(db), handler.RedisCheck(rdb)},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("jwt_algorithm", alg.Name()).Msg("server started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	cancelWorkers()
	dispatcher.Wait()
	log.Info().Msg("stopped")
}
