// Package detect classifies newly observed samples and windowed order
// aggregates against fixed thresholds, yielding candidate events for the
// dispatcher. Detection is best-effort: transient failures while computing
// windowed comparisons are logged and produce no event, and never propagate
// to the caller. Safety-critical signals (fire, gas) are evaluated first and
// are not suppressed by any error path.
package detect

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"trizzaone/internal/types"
)

// SharpChangeThresholds are the fixed relative-change thresholds per metric.
// A change fires only when the baseline value is strictly positive.
var SharpChangeThresholds = map[types.Metric]float64{
	types.MetricTemperature: 0.15,
	types.MetricHumidity:    0.20,
	types.MetricCO2:         0.25,
	types.MetricOccupancy:   0.30,
	types.MetricEnergy:      0.20,
}

// RemoteClassifier delegates "is this sample anomalous" to the third-party
// prediction endpoint. It coexists with the fixed-threshold rules: a high
// risk classification yields an additional warning event.
type RemoteClassifier interface {
	Classify(ctx context.Context, req types.AnomalyRequest) (*types.AnomalyResponse, error)
}

// Detector compares each new sample for a zone against that zone's baseline
// (single-step lookback: the baseline is replaced by the new sample after
// comparison), and evaluates the boolean safety signals on every sample.
type Detector struct {
	mu        sync.Mutex
	baselines map[types.Zone]types.Sample

	remote RemoteClassifier // optional
	clock  types.Clock
	logger *slog.Logger
}

// NewDetector creates a Detector. The remote classifier is optional and may
// be nil; fixed-threshold detection works without it.
func NewDetector(remote RemoteClassifier, clock types.Clock, logger *slog.Logger) *Detector {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		baselines: make(map[types.Zone]types.Sample),
		remote:    remote,
		clock:     clock,
		logger:    logger,
	}
}

// Inspect evaluates one new sample and returns zero or more events.
//
// Order of evaluation:
//  1. Fire alarm and gas leak booleans, critical, always emitted.
//  2. Sharp relative change per metric against the zone baseline, warning.
//  3. Optional remote classification, warning on high risk, best-effort.
//
// The zone baseline is established by the first sample seen for that zone
// and replaced by every subsequent sample after comparison.
func (d *Detector) Inspect(ctx context.Context, s types.Sample) []types.Event {
	var events []types.Event

	if s.FireAlarmTriggered {
		events = append(events, d.newEvent(types.EventFireAlarm, s.Zone, "",
			fmt.Sprintf("fire alarm triggered in %s", s.Zone), types.SeverityCritical))
	}
	if s.GasLeakDetected {
		events = append(events, d.newEvent(types.EventGasLeak, s.Zone, "",
			fmt.Sprintf("gas leak detected in %s", s.Zone), types.SeverityCritical))
	}

	d.mu.Lock()
	baseline, hasBaseline := d.baselines[s.Zone]
	d.baselines[s.Zone] = s
	d.mu.Unlock()

	if hasBaseline {
		events = append(events, d.sharpChanges(baseline, s)...)
	}

	if d.remote != nil {
		if ev := d.classifyRemote(ctx, s); ev != nil {
			events = append(events, *ev)
		}
	}

	return events
}

// sharpChanges compares each thresholded metric of the new sample against
// the baseline. Only baselines strictly greater than zero are comparable.
func (d *Detector) sharpChanges(baseline, s types.Sample) []types.Event {
	var events []types.Event
	for _, m := range types.AllMetrics {
		threshold, ok := SharpChangeThresholds[m]
		if !ok {
			continue
		}
		old := baseline.MetricValue(m)
		if old <= 0 {
			continue
		}
		change := math.Abs(s.MetricValue(m)-old) / old
		if change > threshold {
			events = append(events, d.newEvent(types.EventThresholdChange, s.Zone, m,
				fmt.Sprintf("%s in %s changed %.0f%% (%.1f -> %.1f)",
					m, s.Zone, change*100, old, s.MetricValue(m)),
				types.SeverityWarning))
		}
	}
	return events
}

// classifyRemote delegates to the anomaly endpoint. Failures are logged and
// yield no event.
func (d *Detector) classifyRemote(ctx context.Context, s types.Sample) *types.Event {
	resp, err := d.remote.Classify(ctx, types.AnomalyRequest{
		Zone:           s.Zone,
		Hour:           s.Timestamp.Hour(),
		Occupancy:      s.OccupancyCount,
		PowerUse:       s.EnergyConsumedKWh,
		WaterUse:       0, // no water meter in the simulated sensor set
		CleaningStatus: s.CleaningStatus,
	})
	if err != nil {
		d.logger.WarnContext(ctx, "remote anomaly classification failed",
			"zone", s.Zone,
			"error", err,
		)
		return nil
	}
	if resp.RiskLevel != types.RiskHigh {
		return nil
	}
	ev := d.newEvent(types.EventThresholdChange, s.Zone, "",
		fmt.Sprintf("remote classifier flagged %s as anomalous (p=%.2f)", s.Zone, resp.AnomalyProbability),
		types.SeverityWarning)
	return &ev
}

func (d *Detector) newEvent(kind types.EventKind, zone types.Zone, metric types.Metric, msg string, sev types.Severity) types.Event {
	return types.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Zone:      zone,
		Metric:    metric,
		Message:   msg,
		Severity:  sev,
		Timestamp: d.clock.Now(),
	}
}
