package types

// Zone is a fixed enumerated physical area of the facility that sensors are
// associated with.
type Zone string

const (
	ZoneKitchen  Zone = "kitchen"
	ZoneDining   Zone = "dining"
	ZoneStorage  Zone = "storage"
	ZoneRestroom Zone = "restroom"
	ZoneEntrance Zone = "entrance"
)

// AllZones is the complete zone enumeration, in presentation order.
// The generator re-rolls the zone uniformly from this set each tick.
var AllZones = []Zone{ZoneKitchen, ZoneDining, ZoneStorage, ZoneRestroom, ZoneEntrance}

// ParseZone validates a raw zone string against the enumeration.
func ParseZone(s string) (Zone, bool) {
	for _, z := range AllZones {
		if string(z) == s {
			return z, true
		}
	}
	return "", false
}

// Metric identifies a bounded numeric sensor field on a Sample.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricCO2         Metric = "co2_level"
	MetricLight       Metric = "light_level"
	MetricOccupancy   Metric = "occupancy_count"
	MetricEnergy      Metric = "energy_consumed_kwh"
	MetricBattery     Metric = "battery_backup_level"
)

// AllMetrics lists every numeric metric in presentation order.
var AllMetrics = []Metric{
	MetricTemperature,
	MetricHumidity,
	MetricCO2,
	MetricLight,
	MetricOccupancy,
	MetricEnergy,
	MetricBattery,
}

// ParseMetric validates a raw metric string against the enumeration.
func ParseMetric(s string) (Metric, bool) {
	for _, m := range AllMetrics {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// CleaningStatus is the lifecycle state of a zone's cleaning task.
type CleaningStatus string

const (
	CleaningPending    CleaningStatus = "pending"
	CleaningInProgress CleaningStatus = "in_progress"
	CleaningDone       CleaningStatus = "done"
)

// EventKind identifies the kind of detected event.
type EventKind string

const (
	EventFireAlarm        EventKind = "fire_alarm"
	EventGasLeak          EventKind = "gas_leak"
	EventThresholdChange  EventKind = "threshold_change"
	EventConsumptionSpike EventKind = "consumption_spike"
	EventOrderReceived    EventKind = "order_received"
	EventPopularityChange EventKind = "popularity_change"
)

// Severity determines alert priority and delivery behavior.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities so delivery policies can compare them.
// Higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// SafetyCritical reports whether an event kind must bypass deduplication,
// severity filtering, and the user's push opt-out. Fire and gas events are
// never suppressed by any policy or error path.
func (k EventKind) SafetyCritical() bool {
	return k == EventFireAlarm || k == EventGasLeak
}

// RiskLevel is the classification returned by the remote anomaly endpoint.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)
