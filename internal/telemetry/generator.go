// Package telemetry implements the synthetic sensor stream: a bounded
// random-walk reading generator and the capacity-limited store that retains
// the most recent window of samples for a session.
package telemetry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"trizzaone/internal/types"
)

// Per-metric drift factors for the multiplicative random walk. Each tick a
// metric moves by a uniform delta in [-drift, +drift] proportional to its
// current value, then is clamped into its declared domain.
var driftFactors = map[types.Metric]float64{
	types.MetricTemperature: 0.05,
	types.MetricHumidity:    0.05,
	types.MetricCO2:         0.05,
	types.MetricLight:       0.15,
	types.MetricOccupancy:   0.25,
	types.MetricEnergy:      0.10,
	types.MetricBattery:     0.10,
}

const (
	// rareEventProbability is the per-tick chance of a fire alarm or gas
	// leak draw. The two draws are independent of the random walk and of
	// each other.
	rareEventProbability = 0.01

	// motionProbability applies when the zone is occupied. Zero occupancy
	// never reports motion.
	motionProbability = 0.99
)

// Generator produces the next synthetic Sample from the previous one.
// It is a pure function of (previous sample, RNG state): injecting a seeded
// *rand.Rand makes a session fully deterministic for tests.
type Generator struct {
	rng   *rand.Rand
	clock types.Clock
}

// NewGenerator creates a Generator. A nil rng falls back to a
// non-deterministic source; a nil clock falls back to the system clock.
func NewGenerator(rng *rand.Rand, clock types.Clock) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Generator{rng: rng, clock: clock}
}

// SeedSample returns the fixed first sample for a session when the store is
// empty. Values sit mid-domain so the walk has headroom in both directions.
func SeedSample(zone types.Zone, now time.Time) types.Sample {
	return types.Sample{
		ID:                 uuid.NewString(),
		Zone:               zone,
		Floor:              1,
		Timestamp:          now,
		Temperature:        24,
		Humidity:           50,
		CO2Level:           600,
		LightLevel:         400,
		OccupancyCount:     8,
		EnergyConsumedKWh:  12,
		BatteryBackupLevel: 90,
		MotionDetected:     true,
		PowerStatus:        true,
		AirPurifierStatus:  true,
		CleaningStatus:     types.CleaningDone,
	}
}

// Next produces a new Sample from prev. Each bounded metric takes a
// multiplicative random step and is clamped into its domain; the zone is
// re-rolled uniformly; occupancy drives the derived motion flag; fire and
// gas are independent low-probability draws.
func (g *Generator) Next(prev types.Sample) types.Sample {
	s := types.Sample{
		ID:        uuid.NewString(),
		Zone:      types.AllZones[g.rng.IntN(len(types.AllZones))],
		Floor:     clampInt(prev.Floor, 0, types.MaxFloor),
		Timestamp: g.clock.Now(),

		Temperature:        g.walk(types.MetricTemperature, prev.Temperature),
		Humidity:           g.walk(types.MetricHumidity, prev.Humidity),
		CO2Level:           g.walk(types.MetricCO2, prev.CO2Level),
		LightLevel:         g.walk(types.MetricLight, prev.LightLevel),
		EnergyConsumedKWh:  g.walk(types.MetricEnergy, prev.EnergyConsumedKWh),
		BatteryBackupLevel: g.walk(types.MetricBattery, prev.BatteryBackupLevel),

		PowerStatus:       prev.PowerStatus,
		AirPurifierStatus: prev.AirPurifierStatus,
		CleaningStatus:    prev.CleaningStatus,
	}

	occ := g.walk(types.MetricOccupancy, float64(prev.OccupancyCount))
	s.OccupancyCount = clampInt(int(math.Round(occ)), 0, int(types.MetricDomains[types.MetricOccupancy].Max))

	// Zero occupancy never reports motion; occupied zones almost always do.
	s.MotionDetected = s.OccupancyCount > 0 && g.rng.Float64() < motionProbability

	s.FireAlarmTriggered = g.rng.Float64() < rareEventProbability
	s.GasLeakDetected = g.rng.Float64() < rareEventProbability

	return s
}

// walk applies the metric's drift factor to value and clamps the result into
// the metric's declared domain.
func (g *Generator) walk(m types.Metric, value float64) float64 {
	drift := driftFactors[m]
	delta := (g.rng.Float64()*2 - 1) * drift * value
	return clampFloat(value+delta, types.MetricDomains[m])
}

func clampFloat(v float64, d types.MetricDomain) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
