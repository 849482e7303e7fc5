package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
)

const (
	KeyPrefix  = "visiai:audit:"
	DefaultTTL = 6 * time.Hour
)

// Auditor caches live audit results per URL in Redis. Default records are
// never cached and Redis failures fall through to the wrapped auditor.
type Auditor struct {
	next   providers.Auditor
	client redis.Cmdable
	ttl    time.Duration
}

func NewAuditor(next providers.Auditor, client redis.Cmdable, ttl time.Duration) *Auditor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Auditor{next: next, client: client, ttl: ttl}
}

func (a *Auditor) Audit(ctx context.Context, url string) providers.AuditResult {
	key := KeyPrefix + url
	log := logrus.WithField("provider", "audit-cache").WithField("url", url)

	val, err := a.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached providers.AuditResult
		if err := json.Unmarshal(val, &cached); err == nil {
			cached.Outcome = providers.Outcome{Source: providers.SourceCache}
			if cached.Issues == nil {
				cached.Issues = []string{}
			}
			return cached
		}
		log.Warn("discarding undecodable cached audit")
	case errors.Is(err, redis.Nil):
	default:
		log.WithError(err).Warn("audit cache read failed")
	}

	res := a.next.Audit(ctx, url)
	if res.Outcome.Source != providers.SourceLive {
		return res
	}
	data, err := json.Marshal(res)
	if err != nil {
		return res
	}
	if err := a.client.Set(ctx, key, string(data), a.ttl).Err(); err != nil {
		log.WithError(err).Warn("audit cache write failed")
	}
	return res
}
