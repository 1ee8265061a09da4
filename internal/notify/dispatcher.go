package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trizzaone/internal/types"
)

// defaultRecentCap is the number of dispatched events retained for the
// UI-visible feed.
const defaultRecentCap = 5

// EventWriter persists dispatched events. Backed by the Postgres event
// repository in production.
type EventWriter interface {
	Insert(ctx context.Context, ev types.Event) error
}

// AlertSink delivers a platform-level notification (title + body, no
// response). Backed by the SQS alert publisher in production.
type AlertSink interface {
	Publish(ctx context.Context, ev types.Event) error
}

// MetricsCollector records dispatch outcomes. Satisfied by the CloudWatch
// emitter; a nil collector disables emission.
type MetricsCollector interface {
	Count(ctx context.Context, name string, value float64, dims map[string]string)
	RecordEvent(ctx context.Context, name string, kind types.EventKind)
}

// Preferences captures the user-facing delivery settings for a session.
type Preferences struct {
	// PushEnabled gates platform notifications for non-critical events.
	// Safety-critical kinds ignore it.
	PushEnabled bool
}

// Dispatcher deduplicates detected events by identity within a cooldown
// window and forwards the survivors. Decisions, in order:
//
//  1. Safety-critical kinds (fire, gas) always dispatch: they bypass
//     deduplication, the severity gate, and the push opt-out. A seen-store
//     failure never suppresses them.
//  2. Other kinds consult the SeenStore; repeats within the cooldown are
//     suppressed. Seen-store failures fail open (dispatch anyway) so a
//     broken Redis never silences alerts.
//  3. Dispatched events are persisted and appended to the bounded recent
//     feed; severities >= warning with push enabled also go to the sink.
//
// Persistence and sink failures are logged and do not fail the dispatch:
// delivery is best-effort everywhere except the decision to dispatch.
type Dispatcher struct {
	seen    SeenStore
	events  EventWriter      // optional
	sink    AlertSink        // optional
	metrics MetricsCollector // optional
	prefs   Preferences

	cooldown  time.Duration
	recentCap int
	logger    *slog.Logger

	mu     sync.Mutex
	recent []types.Event // newest-first, bounded to recentCap
}

// DispatcherConfig holds the configuration for creating a Dispatcher.
type DispatcherConfig struct {
	Seen      SeenStore
	Events    EventWriter
	Sink      AlertSink
	Metrics   MetricsCollector
	Prefs     Preferences
	Cooldown  time.Duration
	RecentCap int
	Logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher from the given configuration.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recentCap := cfg.RecentCap
	if recentCap <= 0 {
		recentCap = defaultRecentCap
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 10 * time.Minute
	}
	seen := cfg.Seen
	if seen == nil {
		seen = NewMemorySeenStore(nil)
	}
	return &Dispatcher{
		seen:      seen,
		events:    cfg.Events,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		prefs:     cfg.Prefs,
		cooldown:  cooldown,
		recentCap: recentCap,
		logger:    logger,
	}
}

// Dispatch processes one detected event. Returns true when the event was
// forwarded to the user-facing layer, false when deduplication suppressed it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev types.Event) bool {
	if !ev.Kind.SafetyCritical() {
		fresh, err := d.seen.MarkIfNew(ctx, ev.Identity(), d.cooldown)
		if err != nil {
			// Fail open: a broken dedup store must not silence alerts.
			d.logger.WarnContext(ctx, "seen-store check failed, dispatching anyway",
				"identity", ev.Identity(),
				"error", err,
			)
		} else if !fresh {
			d.logger.DebugContext(ctx, "event suppressed by cooldown",
				"identity", ev.Identity(),
			)
			if d.metrics != nil {
				d.metrics.RecordEvent(ctx, types.MetricEventsSuppressed, ev.Kind)
			}
			return false
		}
	}

	d.record(ctx, ev)

	if d.shouldPush(ev) {
		d.push(ctx, ev)
	}

	d.logger.InfoContext(ctx, "event dispatched",
		"kind", ev.Kind,
		"zone", ev.Zone,
		"severity", ev.Severity,
	)
	if d.metrics != nil {
		d.metrics.RecordEvent(ctx, types.MetricEventsDispatched, ev.Kind)
	}
	return true
}

// Recent returns the newest dispatched events, bounded to the configured cap.
func (d *Dispatcher) Recent() []types.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.Event, len(d.recent))
	copy(out, d.recent)
	return out
}

// shouldPush decides whether the event warrants a platform notification.
// Safety-critical kinds bypass the user's opt-out.
func (d *Dispatcher) shouldPush(ev types.Event) bool {
	if ev.Kind.SafetyCritical() {
		return true
	}
	return d.prefs.PushEnabled && ev.Severity.Rank() >= types.SeverityWarning.Rank()
}

// record persists the event (best-effort) and appends it to the recent feed.
func (d *Dispatcher) record(ctx context.Context, ev types.Event) {
	if d.events != nil {
		if err := d.events.Insert(ctx, ev); err != nil {
			d.logger.ErrorContext(ctx, "failed to persist event",
				"kind", ev.Kind,
				"error", err,
			)
			d.countFailure(ctx, ev)
		}
	}

	d.mu.Lock()
	d.recent = append([]types.Event{ev}, d.recent...)
	if len(d.recent) > d.recentCap {
		d.recent = d.recent[:d.recentCap]
	}
	d.mu.Unlock()
}

// push forwards the event to the platform notification sink (best-effort).
func (d *Dispatcher) push(ctx context.Context, ev types.Event) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Publish(ctx, ev); err != nil {
		d.logger.ErrorContext(ctx, "failed to publish platform notification",
			"kind", ev.Kind,
			"error", err,
		)
		d.countFailure(ctx, ev)
	}
}

func (d *Dispatcher) countFailure(ctx context.Context, ev types.Event) {
	if d.metrics == nil {
		return
	}
	d.metrics.Count(ctx, types.MetricDispatchFailure, 1, map[string]string{
		types.DimEventKind: string(ev.Kind),
	})
}
