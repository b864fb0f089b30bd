package main

import (
	"conference-app/cache"
	"conference-app/config"
	"conference-app/database"
	"conference-app/handlers"
	"conference-app/middleware"
	"conference-app/model"
	"conference-app/router"
	"conference-app/service"
	"conference-app/tasks"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(config.DEFAULT_ENV_FILE)
	if err != nil {
		logrus.WithError(err).Fatal("configuration error")
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("cannot open database")
	}
	kv, err := openCache(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("cannot open cache")
	}

	queue := tasks.NewQueue(tasks.QueueConfig{
		Workers:     cfg.QueueWorkers,
		MaxAttempts: cfg.QueueMaxAttempts,
		RetryDelay:  cfg.QueueRetryDelay,
	}, log)
	svc := service.New(store, kv, queue, tasks.LogMailer{Log: log}, log)
	svc.RegisterTasks(queue)

	if cfg.AdminLogin != "" && cfg.AdminPassword != "" {
		if err := svc.EnsureUser(ctx, cfg.AdminLogin, cfg.AdminPassword, model.ROLE_ADMIN, cfg.AdminEmail); err != nil {
			log.WithError(err).Fatal("cannot create admin account")
		}
		log.WithField("login", cfg.AdminLogin).Info("admin account ready")
	}

	scheduler := tasks.NewScheduler(queue, log)
	if err := scheduler.Every(cfg.AnnouncementSchedule, tasks.SET_ANNOUNCEMENT, nil); err != nil {
		log.WithError(err).Fatal("cannot schedule announcements")
	}

	queue.Start(context.Background())
	scheduler.Start()
	if err := queue.Enqueue(ctx, tasks.SET_ANNOUNCEMENT, nil); err != nil {
		log.WithError(err).Warn("cannot enqueue initial announcement")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiterStop := make(chan struct{})
	limiter.StartCleanup(time.Minute, limiterStop)

	app := fiber.New()
	router.SetupRoutes(app, handlers.New(svc, cfg.SigningKey, cfg.TokenTTL, log), router.Options{
		SigningKey:  cfg.SigningKey,
		RateLimiter: limiter,
		AccessLog:   true,
	})

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("http server shutdown failed")
	}
	close(limiterStop)
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("scheduler shutdown failed")
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("task queue shutdown failed")
	}
	if err := kv.Close(); err != nil {
		log.WithError(err).Error("cache close failed")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("database close failed")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func openStore(ctx context.Context, cfg config.Config, log *logrus.Logger) (database.Store, error) {
	if cfg.MongoURI == "" {
		log.Warn("MONGODB_CONNSTRING not set, using in-memory store")
		return database.NewMemoryStore(), nil
	}
	store, err := database.DBInit(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	log.WithField("database", cfg.MongoDatabase).Info("connected to mongodb")
	return store, nil
}

func openCache(ctx context.Context, cfg config.Config, log *logrus.Logger) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}
	kv, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	log.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	return kv, nil
}
