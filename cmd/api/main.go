package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/visiai/internal/bootstrap"
	"github.com/bryanwahyu/visiai/internal/config"
	"github.com/bryanwahyu/visiai/internal/infra/httpserver"
	"github.com/bryanwahyu/visiai/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}
	if err := bootstrap.ConfigureLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.Fatalf("logging setup error: %v", err)
	}

	ctx := context.Background()

	// connect database
	db, repo, errRepo, err := bootstrap.Database(ctx, cfg)
	if err != nil {
		logrus.Fatalf("database error: %v", err)
	}
	defer db.Close()

	// init adapters + service
	svc, rdb := bootstrap.Analyzers(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	metrics := middleware.NewMetrics()
	svc.Repo = repo
	svc.Errors = errRepo
	svc.Screenshots = bootstrap.Screenshots(ctx, cfg)
	svc.Metrics = metrics

	checks := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}
	if rdb != nil {
		checks["redis"] = middleware.CheckFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := limiter.Cleanup(10 * time.Minute); n > 0 {
				logrus.WithField("removed", n).Debug("rate limiter cleanup")
			}
		}
	}()

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		Health:         checks,
		Metrics:        metrics,
		Limiter:        limiter,
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":   addr,
			"driver": cfg.Database.Driver,
			"minio":  svc.Screenshots != nil,
			"redis":  rdb != nil,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logrus.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logrus.WithError(err).Error("shutdown error")
	}
}
