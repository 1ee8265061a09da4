// Package aggregate computes derived statistics over a window of samples for
// dashboard presentation and for the detector's windowed comparisons.
//
// All functions are pure and recompute fully from their input on each call;
// there is no cache and therefore no invalidation problem.
package aggregate

import (
	"time"

	"trizzaone/internal/types"
)

// AverageOf returns the arithmetic mean of the metric across the subset.
// An empty subset returns 0, never NaN and never an error.
// Callers that need to distinguish "no data" from "average of zero" should
// check the subset length themselves.
func AverageOf(m types.Metric, samples []types.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	return SumOf(m, samples) / float64(len(samples))
}

// SumOf returns the sum of the metric across the subset.
func SumOf(m types.Metric, samples []types.Sample) float64 {
	var total float64
	for _, s := range samples {
		total += s.MetricValue(m)
	}
	return total
}

// FilterZone returns the subset of samples belonging to the zone,
// preserving input order.
func FilterZone(zone types.Zone, samples []types.Sample) []types.Sample {
	var out []types.Sample
	for _, s := range samples {
		if s.Zone == zone {
			out = append(out, s)
		}
	}
	return out
}

// GroupByZone partitions samples by zone, producing one aggregate record per
// zone present in the input: count, per-metric average, and the latest
// sample. Input is expected newest-first, so the first sample seen for a
// zone is its latest.
func GroupByZone(samples []types.Sample) []types.ZoneAggregate {
	byZone := make(map[types.Zone][]types.Sample)
	for _, s := range samples {
		byZone[s.Zone] = append(byZone[s.Zone], s)
	}

	var out []types.ZoneAggregate
	for _, zone := range types.AllZones {
		group, ok := byZone[zone]
		if !ok {
			continue
		}
		agg := types.ZoneAggregate{
			Zone:     zone,
			Count:    len(group),
			Averages: make(map[types.Metric]float64, len(types.AllMetrics)),
		}
		for _, m := range types.AllMetrics {
			agg.Averages[m] = AverageOf(m, group)
		}
		latest := group[0]
		agg.Latest = &latest
		out = append(out, agg)
	}
	return out
}

// GroupByHour buckets samples into windowHours equal-width trailing buckets
// ending at now. Exactly windowHours buckets are returned regardless of how
// many samples fall into each; empty buckets carry zero values. Buckets are
// ordered oldest-first. Samples outside the window are ignored.
func GroupByHour(m types.Metric, samples []types.Sample, now time.Time, windowHours int) []types.HourBucket {
	if windowHours <= 0 {
		return nil
	}

	windowStart := now.Add(-time.Duration(windowHours) * time.Hour)
	buckets := make([]types.HourBucket, windowHours)
	for i := range buckets {
		buckets[i].Start = windowStart.Add(time.Duration(i) * time.Hour)
		buckets[i].End = buckets[i].Start.Add(time.Hour)
	}

	for _, s := range samples {
		if s.Timestamp.Before(windowStart) || s.Timestamp.After(now) {
			continue
		}
		idx := int(s.Timestamp.Sub(windowStart) / time.Hour)
		if idx >= windowHours {
			// Samples exactly at "now" land in the last bucket.
			idx = windowHours - 1
		}
		buckets[idx].Count++
		buckets[idx].Sum += s.MetricValue(m)
	}

	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].Average = buckets[i].Sum / float64(buckets[i].Count)
		}
	}
	return buckets
}
