package service

import (
	"context"
	"maps"
	"time"

	"github.com/raphaelgruber/estatehub/internal/metrics"
)

// defaultDelays are the per-operation round trips the mock backend imitates.
var defaultDelays = map[string]time.Duration{
	metrics.OpAuthenticate:      500 * time.Millisecond,
	metrics.OpRegister:          500 * time.Millisecond,
	metrics.OpListProperties:    500 * time.Millisecond,
	metrics.OpGetProperty:       300 * time.Millisecond,
	metrics.OpPublishProperty:   800 * time.Millisecond,
	metrics.OpListMessages:      300 * time.Millisecond,
	metrics.OpSendMessage:       200 * time.Millisecond,
	metrics.OpListConversations: 800 * time.Millisecond,
	metrics.OpMarkRead:          200 * time.Millisecond,
}

// Latency decides how long each simulated call takes. The zero value means
// no delay at all.
type Latency struct {
	// Fixed, when non-negative, is used for every operation.
	Fixed time.Duration

	// PerOperation is consulted when Fixed is negative.
	PerOperation map[string]time.Duration
}

// DefaultLatency returns the per-operation delays of the demo backend.
func DefaultLatency() Latency {
	return Latency{Fixed: -1, PerOperation: maps.Clone(defaultDelays)}
}

// FixedLatency applies d to every operation.
func FixedLatency(d time.Duration) Latency {
	return Latency{Fixed: d}
}

// LatencyFromMillis maps the delayMs setting: negative selects the
// per-operation defaults, anything else is a fixed delay.
func LatencyFromMillis(ms int) Latency {
	if ms < 0 {
		return DefaultLatency()
	}
	return FixedLatency(time.Duration(ms) * time.Millisecond)
}

// Delay returns the simulated round trip for op.
func (l Latency) Delay(op string) time.Duration {
	if l.Fixed >= 0 {
		return l.Fixed
	}
	return l.PerOperation[op]
}

// wait blocks for d or until ctx is done. Operations call it before they
// commit anything, so a cancelled call leaves no trace.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
