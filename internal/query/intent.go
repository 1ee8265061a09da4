// Package query answers dashboard chat questions. The remote language
// endpoint only selects a template label; every label is mapped onto the
// closed Intent enumeration below and dispatched to a fixed handler, so an
// unexpected label degrades to the unsupported intent instead of being
// interpreted.
package query

// Intent is the closed set of supported query templates.
type Intent string

const (
	IntentOrdersToday  Intent = "orders_today"
	IntentAvgMetric    Intent = "avg_metric"
	IntentZoneStatus   Intent = "zone_status"
	IntentTopDish      Intent = "top_dish"
	IntentAlertsRecent Intent = "alerts_recent"
	IntentUnsupported  Intent = "unsupported"
)

// ParseIntent maps a remote label onto the closed enumeration. Unknown
// labels map to IntentUnsupported.
func ParseIntent(label string) Intent {
	switch Intent(label) {
	case IntentOrdersToday, IntentAvgMetric, IntentZoneStatus, IntentTopDish, IntentAlertsRecent:
		return Intent(label)
	default:
		return IntentUnsupported
	}
}
