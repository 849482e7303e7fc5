package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/visiai/internal/config"
	"github.com/bryanwahyu/visiai/internal/domain/providers"
)

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	require.NoError(t, ConfigureLogging("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	assert.Error(t, ConfigureLogging("loud", "text"))
}

func TestBreakerSettings(t *testing.T) {
	got := Breaker(config.Breaker{MaxRequests: 2, Timeout: time.Minute, ConsecutiveFailures: 3})
	assert.Equal(t, uint32(2), got.MaxRequests)
	assert.Equal(t, time.Minute, got.Timeout)
	assert.Equal(t, uint32(3), got.ConsecutiveFailures)
}

func TestAnalyzersWithoutCredentialsFallBack(t *testing.T) {
	cfg := config.Default()
	svc, rdb := Analyzers(context.Background(), cfg)
	require.NotNil(t, svc)
	assert.Nil(t, rdb)

	audit := svc.Auditor.Audit(context.Background(), "https://example.com")
	assert.Equal(t, providers.DefaultAudit(providers.ReasonMissingKey), audit)

	vision := svc.Vision.Analyze(context.Background(), "aGVsbG8=")
	assert.Equal(t, providers.SourceDefault, vision.Outcome.Source)

	ux := svc.UX.Analyze(context.Background(), "https://example.com")
	assert.Equal(t, providers.SourceSynthetic, ux.Outcome.Source)
}

func TestScreenshotsDisabledWithoutEndpoint(t *testing.T) {
	assert.Nil(t, Screenshots(context.Background(), config.Default()))
}
