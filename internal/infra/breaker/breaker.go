package breaker

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
)

// Settings configure one provider circuit.
type Settings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultSettings opens after five straight failures and retries after a minute.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:         1,
		Interval:            0,
		Timeout:             60 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// New builds a circuit breaker for a provider.
func New(name string, s Settings) *gobreaker.CircuitBreaker {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultSettings().ConsecutiveFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

// Reason turns an adapter error into the fallback reason recorded on the
// result. Errors without a known cause map to fallback.
func Reason(err error, fallback string) string {
	var netErr net.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return providers.ReasonCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return providers.ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return providers.ReasonTimeout
	default:
		return fallback
	}
}
