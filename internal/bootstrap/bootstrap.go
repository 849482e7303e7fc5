// Package bootstrap builds the adapters shared by the API server and the CLI
// from a loaded config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/visiai/internal/application"
	appscans "github.com/bryanwahyu/visiai/internal/application/scans"
	"github.com/bryanwahyu/visiai/internal/config"
	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/domain/scanerrors"
	domain "github.com/bryanwahyu/visiai/internal/domain/scans"
	"github.com/bryanwahyu/visiai/internal/infra/ai/openai"
	"github.com/bryanwahyu/visiai/internal/infra/audit/pagespeed"
	"github.com/bryanwahyu/visiai/internal/infra/breaker"
	"github.com/bryanwahyu/visiai/internal/infra/cache"
	"github.com/bryanwahyu/visiai/internal/infra/capture"
	mysqlp "github.com/bryanwahyu/visiai/internal/infra/db/mysql"
	"github.com/bryanwahyu/visiai/internal/infra/db/postgres"
	"github.com/bryanwahyu/visiai/internal/infra/storage"
	"github.com/bryanwahyu/visiai/internal/infra/ux"
)

// ConfigureLogging sets the global logrus level and formatter.
func ConfigureLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Breaker converts the config block to adapter settings.
func Breaker(c config.Breaker) breaker.Settings {
	return breaker.Settings{
		MaxRequests:         c.MaxRequests,
		Interval:            c.Interval,
		Timeout:             c.Timeout,
		ConsecutiveFailures: c.ConsecutiveFailures,
	}
}

// Analyzers builds a service with capture and provider adapters wired but
// no persistence. Redis is optional: when it is configured but unreachable
// audits run uncached. The returned client is nil without Redis.
func Analyzers(ctx context.Context, cfg *config.Config) (*appscans.Service, *redis.Client) {
	bs := Breaker(cfg.Providers.Breaker)
	httpClient := &http.Client{}

	var auditor providers.Auditor = pagespeed.NewClient(pagespeed.Config{
		APIKey:  cfg.Providers.Audit.APIKey,
		BaseURL: cfg.Providers.Audit.BaseURL,
		Timeout: cfg.Providers.Audit.Timeout,
		Breaker: bs,
	}, httpClient)
	if cfg.Providers.Audit.APIKey == "" {
		logrus.WithField("provider", "audit").Warn("no API key, audits use the default record")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		c, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, audit cache disabled")
		} else {
			rdb = c
			auditor = cache.NewAuditor(auditor, rdb, cfg.Redis.TTL)
		}
	}

	vision := openai.NewVisionClient(openai.Config{
		APIKey:   cfg.Providers.Vision.APIKey,
		BaseURL:  cfg.Providers.Vision.BaseURL,
		Model:    cfg.Providers.Vision.Model,
		Provider: cfg.Providers.Vision.Provider,
		Timeout:  cfg.Providers.Vision.Timeout,
		Breaker:  bs,
	}, httpClient)
	if cfg.Providers.Vision.APIKey == "" {
		logrus.WithField("provider", "vision").Warn("no API key, vision analysis uses the default record")
	}

	uxClient := ux.NewClient(ux.Config{
		APIKey:  cfg.Providers.UX.APIKey,
		BaseURL: cfg.Providers.UX.BaseURL,
		Timeout: cfg.Providers.UX.Timeout,
		Breaker: bs,
	}, httpClient, nil)

	capturer := capture.NewHTTPCapturer(capture.Config{
		Timeout:            cfg.Capture.Timeout,
		UserAgent:          cfg.Capture.UserAgent,
		MaxBodyBytes:       cfg.Capture.MaxBodyBytes,
		ScreenshotEndpoint: cfg.Capture.ScreenshotEndpoint,
	}, httpClient)

	return &appscans.Service{
		Capturer: capturer,
		Auditor:  auditor,
		Vision:   vision,
		UX:       uxClient,
		Clock:    application.SystemClock{},
	}, rdb
}

// Database opens the configured driver and returns its repositories.
func Database(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, scanerrors.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, postgres.NewScanRepository(db), postgres.NewScanErrorRepository(db), nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return db, mysqlp.NewScanRepository(db), mysqlp.NewScanErrorRepository(db), nil
	}
}

// Screenshots connects MinIO when an endpoint is configured. A nil store
// keeps screenshots inline in the scan record.
func Screenshots(ctx context.Context, cfg *config.Config) domain.ScreenshotStore {
	if cfg.Minio.Endpoint == "" {
		return nil
	}
	store, err := storage.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logrus.WithError(err).Warn("minio unavailable, screenshots stored inline")
		return nil
	}
	return store
}
