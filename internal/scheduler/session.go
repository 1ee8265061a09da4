// Package scheduler runs the simulation session: a timer-driven loop that
// generates a sample, ingests it into the store, persists it, and feeds the
// detectors and the dispatcher.
//
// Control semantics:
//   - Disabling realtime cancels the pending tick; no further generation
//     ticks fire until re-enabled.
//   - Changing the tick interval atomically replaces the timer; no tick from
//     the old interval fires after the change takes effect. Both are
//     serialized through the session's control channel, so control actions
//     and ticks never interleave.
//   - Cancelling the run context stops the session.
//
// A secondary poll timer re-fetches recent samples from the database and
// feeds the same idempotent Ingest, so the push and poll delivery paths may
// both deliver the same logical update without duplicating entries.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"trizzaone/internal/aggregate"
	"trizzaone/internal/detect"
	"trizzaone/internal/notify"
	"trizzaone/internal/telemetry"
	"trizzaone/internal/types"
)

// SampleWriter persists generated samples. Backed by the Postgres sample
// repository in production.
type SampleWriter interface {
	Insert(ctx context.Context, s types.Sample) error
}

// SampleReader fetches recent persisted samples for the poll path.
type SampleReader interface {
	ListRecent(ctx context.Context, limit int) ([]types.Sample, error)
}

// MetricsCollector records tick, ingest, and detection counters. Satisfied by
// the CloudWatch emitter; a nil collector disables emission.
type MetricsCollector interface {
	Count(ctx context.Context, name string, value float64, dims map[string]string)
	RecordEvent(ctx context.Context, name string, kind types.EventKind)
}

// controlMsg carries a session control action into the run loop.
type controlMsg struct {
	setEnabled  *bool
	setInterval *time.Duration
	done        chan struct{}
}

// Session owns one simulated telemetry stream. All state transitions happen
// on the run loop goroutine; external callers communicate via the control
// channel.
type Session struct {
	gen     *telemetry.Generator
	store   *telemetry.Store
	det     *detect.Detector
	windows *detect.WindowDetector
	disp    *notify.Dispatcher

	writer  SampleWriter     // optional
	reader  SampleReader     // optional
	metrics MetricsCollector // optional

	interval     time.Duration
	pollInterval time.Duration
	enabled      bool
	seedZone     types.Zone
	clock        types.Clock
	logger       *slog.Logger

	ctrl chan controlMsg
}

// SessionConfig holds the configuration for creating a Session.
type SessionConfig struct {
	Generator      *telemetry.Generator
	Store          *telemetry.Store
	Detector       *detect.Detector
	WindowDetector *detect.WindowDetector
	Dispatcher     *notify.Dispatcher
	Writer         SampleWriter
	Reader         SampleReader
	Metrics        MetricsCollector
	TickInterval   time.Duration
	PollInterval   time.Duration
	Enabled        bool
	Clock          types.Clock
	Logger         *slog.Logger
}

// NewSession creates a Session from the given configuration.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Session{
		gen:          cfg.Generator,
		store:        cfg.Store,
		det:          cfg.Detector,
		windows:      cfg.WindowDetector,
		disp:         cfg.Dispatcher,
		writer:       cfg.Writer,
		reader:       cfg.Reader,
		metrics:      cfg.Metrics,
		interval:     interval,
		pollInterval: cfg.PollInterval,
		enabled:      cfg.Enabled,
		seedZone:     types.ZoneDining,
		clock:        clock,
		logger:       logger,
		ctrl:         make(chan controlMsg),
	}
}

// Run executes the session loop until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	timer := time.NewTimer(s.interval)
	if !s.enabled {
		stopTimer(timer)
	}
	defer stopTimer(timer)

	var pollCh <-chan time.Time
	if s.reader != nil && s.pollInterval > 0 {
		poll := time.NewTicker(s.pollInterval)
		defer poll.Stop()
		pollCh = poll.C
	}

	s.logger.InfoContext(ctx, "simulation session started",
		"enabled", s.enabled,
		"tick_interval", s.interval,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "simulation session stopped")
			return ctx.Err()

		case msg := <-s.ctrl:
			s.applyControl(ctx, msg, timer)

		case <-timer.C:
			if s.enabled {
				s.Tick(ctx)
				timer.Reset(s.interval)
			}

		case <-pollCh:
			s.PollOnce(ctx)
		}
	}
}

// applyControl handles an enable/disable or interval change on the loop
// goroutine. The old timer is stopped and drained before any change, so a
// stale tick can never fire after the control action completes.
func (s *Session) applyControl(ctx context.Context, msg controlMsg, timer *time.Timer) {
	defer close(msg.done)

	stopTimer(timer)

	if msg.setInterval != nil && *msg.setInterval > 0 {
		s.interval = *msg.setInterval
		s.logger.InfoContext(ctx, "tick interval changed", "interval", s.interval)
	}
	if msg.setEnabled != nil {
		s.enabled = *msg.setEnabled
		s.logger.InfoContext(ctx, "simulation toggled", "enabled", s.enabled)
	}

	if s.enabled {
		timer.Reset(s.interval)
	}
}

// SetEnabled toggles realtime generation. Blocks until the session loop has
// applied the change (or ctx is cancelled).
func (s *Session) SetEnabled(ctx context.Context, enabled bool) error {
	return s.send(ctx, controlMsg{setEnabled: &enabled, done: make(chan struct{})})
}

// SetInterval changes the tick interval. Blocks until the session loop has
// applied the change (or ctx is cancelled).
func (s *Session) SetInterval(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return types.NewAppError(types.ErrCodeValidationInvalidInterval, "tick interval must be positive", nil)
	}
	return s.send(ctx, controlMsg{setInterval: &d, done: make(chan struct{})})
}

func (s *Session) send(ctx context.Context, msg controlMsg) error {
	select {
	case s.ctrl <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-msg.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick runs one generation cycle: produce the next sample from the store
// head (or the seed sample when empty), ingest it, persist it best-effort,
// and run detection and dispatch.
func (s *Session) Tick(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.Count(ctx, types.MetricSimulationTick, 1, nil)
	}

	prev, ok := s.store.Head()
	if !ok {
		prev = telemetry.SeedSample(s.seedZone, s.clock.Now())
	}

	sample := s.gen.Next(prev)
	if !s.store.Ingest(sample) {
		return
	}
	if s.metrics != nil {
		s.metrics.Count(ctx, types.MetricSamplesIngested, 1, map[string]string{
			types.DimZone: string(sample.Zone),
		})
	}

	if s.writer != nil {
		if err := s.writer.Insert(ctx, sample); err != nil {
			// Persistence is best-effort; the in-memory window stays
			// consistent either way.
			s.logger.ErrorContext(ctx, "failed to persist sample",
				"zone", sample.Zone,
				"error", err,
			)
		}
	}

	events := s.det.Inspect(ctx, sample)
	if s.windows != nil {
		events = append(events, s.windows.Check(ctx)...)
	}

	for _, ev := range events {
		if s.metrics != nil {
			s.metrics.RecordEvent(ctx, types.MetricEventsDetected, ev.Kind)
		}
		s.disp.Dispatch(ctx, ev)
	}

	s.logger.DebugContext(ctx, "tick complete",
		"zone", sample.Zone,
		"store_len", s.store.Len(),
		"events", len(events),
	)
}

// PollOnce re-fetches recent samples from the database and feeds them to the
// idempotent ingest. Fetch failures are logged and treated as no-ops.
func (s *Session) PollOnce(ctx context.Context) {
	if s.reader == nil {
		return
	}
	samples, err := s.reader.ListRecent(ctx, s.store.Capacity())
	if err != nil {
		s.logger.WarnContext(ctx, "poll fetch failed", "error", err)
		return
	}
	accepted := 0
	for _, sample := range samples {
		if s.store.Ingest(sample) {
			accepted++
		}
	}
	if accepted > 0 {
		if s.metrics != nil {
			s.metrics.Count(ctx, types.MetricSamplesIngested, float64(accepted), nil)
		}
		s.logger.DebugContext(ctx, "poll merged samples", "accepted", accepted)
	}
}

// AverageNow reports the current store-wide average for a metric. Exposed
// for the dashboard's summary cards.
func (s *Session) AverageNow(m types.Metric) float64 {
	return aggregate.AverageOf(m, s.store.Snapshot())
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
