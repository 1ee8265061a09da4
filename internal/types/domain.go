package types

import (
	"fmt"
	"time"
)

// Sample is one synthetic sensor reading for a zone at a point in time.
// Samples are immutable once created; the generator produces a new Sample
// each tick and the store retains the most recent window.
type Sample struct {
	ID        string    `json:"id" db:"id"`
	Zone      Zone      `json:"zone" db:"zone"`
	Floor     int       `json:"floor" db:"floor"`
	Timestamp time.Time `json:"timestamp" db:"recorded_at"`

	Temperature        float64 `json:"temperature" db:"temperature"`
	Humidity           float64 `json:"humidity" db:"humidity"`
	CO2Level           float64 `json:"co2_level" db:"co2_level"`
	LightLevel         float64 `json:"light_level" db:"light_level"`
	OccupancyCount     int     `json:"occupancy_count" db:"occupancy_count"`
	EnergyConsumedKWh  float64 `json:"energy_consumed_kwh" db:"energy_consumed_kwh"`
	BatteryBackupLevel float64 `json:"battery_backup_level" db:"battery_backup_level"`

	MotionDetected    bool `json:"motion_detected" db:"motion_detected"`
	PowerStatus       bool `json:"power_status" db:"power_status"`
	AirPurifierStatus bool `json:"air_purifier_status" db:"air_purifier_status"`

	CleaningStatus CleaningStatus `json:"cleaning_status" db:"cleaning_status"`

	FireAlarmTriggered bool `json:"fire_alarm_triggered" db:"fire_alarm_triggered"`
	GasLeakDetected    bool `json:"gas_leak_detected" db:"gas_leak_detected"`
}

// MetricValue returns the numeric value of the named metric. Unknown metrics
// return 0; the metric enumeration is closed so this only happens on
// programmer error.
func (s Sample) MetricValue(m Metric) float64 {
	switch m {
	case MetricTemperature:
		return s.Temperature
	case MetricHumidity:
		return s.Humidity
	case MetricCO2:
		return s.CO2Level
	case MetricLight:
		return s.LightLevel
	case MetricOccupancy:
		return float64(s.OccupancyCount)
	case MetricEnergy:
		return s.EnergyConsumedKWh
	case MetricBattery:
		return s.BatteryBackupLevel
	default:
		return 0
	}
}

// MetricDomain is the inclusive [Min, Max] range a bounded metric is clamped
// into after perturbation.
type MetricDomain struct {
	Min float64
	Max float64
}

// MetricDomains declares the valid range per metric. Every generated Sample
// keeps each bounded field inside its declared domain.
var MetricDomains = map[Metric]MetricDomain{
	MetricTemperature: {Min: 16, Max: 35},
	MetricHumidity:    {Min: 20, Max: 80},
	MetricCO2:         {Min: 350, Max: 2000},
	MetricLight:       {Min: 0, Max: 1000},
	MetricOccupancy:   {Min: 0, Max: 50},
	MetricEnergy:      {Min: 0, Max: 500},
	MetricBattery:     {Min: 0, Max: 100},
}

// MaxFloor bounds the floor field; floors are numbered 0..MaxFloor.
const MaxFloor = 3

// Event is a detected condition worth surfacing to the user.
// Created by the detector, consumed once by the dispatcher, never mutated.
type Event struct {
	ID        string    `json:"id" db:"id"`
	Kind      EventKind `json:"kind" db:"kind"`
	Zone      Zone      `json:"zone,omitempty" db:"zone"`
	Metric    Metric    `json:"metric,omitempty" db:"metric"`
	Message   string    `json:"message" db:"message"`
	Severity  Severity  `json:"severity" db:"severity"`
	Timestamp time.Time `json:"timestamp" db:"detected_at"`
}

// Identity is the deduplication key for an Event. It is intentionally stable
// across repeated occurrences of the same condition: (kind, zone, metric),
// so the dispatcher can suppress repeats within a cooldown window. Safety
// critical kinds still carry an identity for bookkeeping, but the dispatcher
// never suppresses them.
func (e Event) Identity() string {
	switch e.Kind {
	case EventThresholdChange:
		return fmt.Sprintf("%s|%s|%s", e.Kind, e.Zone, e.Metric)
	case EventFireAlarm, EventGasLeak:
		return fmt.Sprintf("%s|%s", e.Kind, e.Zone)
	default:
		return string(e.Kind)
	}
}

// Order is one food order record from the dashboard's order history.
type Order struct {
	ID        string    `json:"id" db:"id"`
	DishName  string    `json:"dish_name" db:"dish_name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	OrderedAt time.Time `json:"ordered_at" db:"ordered_at"`
}

// DishCount is one leaderboard row: a dish and its summed quantity.
type DishCount struct {
	DishName string `json:"dish_name" db:"dish_name"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// ZoneAggregate is the derived view of one zone over a sample subset.
type ZoneAggregate struct {
	Zone     Zone               `json:"zone"`
	Count    int                `json:"count"`
	Averages map[Metric]float64 `json:"averages"`
	Latest   *Sample            `json:"latest,omitempty"`
}

// HourBucket is one equal-width trailing bucket of a windowed aggregation.
// Empty buckets are present with zero values rather than omitted.
type HourBucket struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Count   int       `json:"count"`
	Average float64   `json:"average"`
	Sum     float64   `json:"sum"`
}

// AnomalyRequest is the payload sent to the remote anomaly classifier.
type AnomalyRequest struct {
	Zone           Zone           `json:"zone"`
	Hour           int            `json:"hour"`
	Occupancy      int            `json:"occupancy"`
	PowerUse       float64        `json:"power_use"`
	WaterUse       float64        `json:"water_use"`
	CleaningStatus CleaningStatus `json:"cleaning_status"`
}

// AnomalyResponse is the classification returned by the remote endpoint.
type AnomalyResponse struct {
	Prediction         string    `json:"prediction"`
	AnomalyProbability float64   `json:"anomaly_probability"`
	NormalProbability  float64   `json:"normal_probability"`
	RiskLevel          RiskLevel `json:"risk_level"`
}
