// Package service emulates the marketplace backend: authentication, property
// listings and messaging over the record store and seed dataset, with
// simulated network latency.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/estatehub/internal/db"
	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/seed"
)

// DefaultDemoPassword is the single credential accepted for every account.
const DefaultDemoPassword = "password"

// Options configures a Service. The zero value is usable: no latency, the
// default demo password, a private metrics collector and slog.Default().
type Options struct {
	Latency      Latency
	DemoPassword string
	Metrics      *metrics.Collector
	Logger       *slog.Logger
	Clock        func() time.Time
}

// Service is the mock backend. It is safe for concurrent use; mutations of
// persisted collections are serialised so each one commits atomically.
type Service struct {
	store        *db.Store
	seed         *seed.Dataset
	latency      Latency
	demoPassword string
	metrics      *metrics.Collector
	logger       *slog.Logger
	now          func() time.Time

	mu sync.Mutex
}

// New creates a service over store and dataset.
func New(store *db.Store, dataset *seed.Dataset, opts Options) *Service {
	s := &Service{
		store:        store,
		seed:         dataset,
		latency:      opts.Latency,
		demoPassword: opts.DemoPassword,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		now:          opts.Clock,
	}
	if s.demoPassword == "" {
		s.demoPassword = DefaultDemoPassword
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Metrics returns the collector recording operation timings.
func (s *Service) Metrics() *metrics.Collector {
	return s.metrics
}

// Latency returns the configured latency model.
func (s *Service) Latency() Latency {
	return s.latency
}

// simulate waits out the round trip of op.
func (s *Service) simulate(ctx context.Context, op string) error {
	return wait(ctx, s.latency.Delay(op))
}

// observe records timing and outcome of op. Use with a named error return:
//
//	defer s.observe(metrics.OpX, time.Now(), &err)
func (s *Service) observe(op string, start time.Time, err *error) {
	duration := time.Since(start)
	failed := *err != nil
	s.metrics.RecordTiming(op, duration, failed)

	if failed {
		s.logger.Debug("operation failed", "op", op, "duration_ms", duration.Milliseconds(), "error", *err)
		return
	}
	s.logger.Debug("operation completed", "op", op, "duration_ms", duration.Milliseconds())
}

// newID returns prefix followed by a time-ordered random UUID, unique even
// under rapid successive calls.
func newID(prefix string) string {
	return prefix + uuid.Must(uuid.NewV7()).String()
}
