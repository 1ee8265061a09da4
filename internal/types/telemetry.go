package types

// Telemetry metric names for CloudWatch. The session loop, the dispatcher,
// the archiver, the remote clients, and the HTTP chassis emit under these
// names so dashboards and alarms key on a single set.
const (
	// Metric Names
	MetricSimulationTick    = "SimulationTick"
	MetricSamplesIngested   = "SamplesIngested"
	MetricEventsDetected    = "EventsDetected"
	MetricEventsDispatched  = "EventsDispatched"
	MetricEventsSuppressed  = "EventsSuppressed"
	MetricDispatchFailure   = "DispatchFailure"
	MetricAPILatency        = "APILatency"
	MetricUpstreamFailure   = "UpstreamFailure"
	MetricSamplesArchived   = "SamplesArchived"

	// Dimension Keys
	DimZone      = "Zone"
	DimEventKind = "EventKind"
	DimEndpoint  = "Endpoint"
	DimOutcome   = "Outcome"

	// Metric Namespace
	MetricNamespace = "TrizzaOne"
)
