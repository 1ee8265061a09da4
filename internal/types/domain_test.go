package types

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventIdentity(t *testing.T) {
	t.Run("threshold change keys on kind zone metric", func(t *testing.T) {
		a := Event{ID: "1", Kind: EventThresholdChange, Zone: ZoneKitchen, Metric: MetricTemperature}
		b := Event{ID: "2", Kind: EventThresholdChange, Zone: ZoneKitchen, Metric: MetricTemperature}
		assert.Equal(t, a.Identity(), b.Identity(), "same condition must share an identity")

		c := Event{ID: "3", Kind: EventThresholdChange, Zone: ZoneKitchen, Metric: MetricHumidity}
		assert.NotEqual(t, a.Identity(), c.Identity(), "different metric is a different condition")

		d := Event{ID: "4", Kind: EventThresholdChange, Zone: ZoneDining, Metric: MetricTemperature}
		assert.NotEqual(t, a.Identity(), d.Identity(), "different zone is a different condition")
	})

	t.Run("safety kinds key on kind and zone", func(t *testing.T) {
		a := Event{Kind: EventFireAlarm, Zone: ZoneKitchen}
		b := Event{Kind: EventFireAlarm, Zone: ZoneDining}
		assert.NotEqual(t, a.Identity(), b.Identity())

		gas := Event{Kind: EventGasLeak, Zone: ZoneKitchen}
		assert.NotEqual(t, a.Identity(), gas.Identity())
	})

	t.Run("windowed kinds key on kind alone", func(t *testing.T) {
		a := Event{ID: "1", Kind: EventConsumptionSpike}
		b := Event{ID: "2", Kind: EventConsumptionSpike}
		assert.Equal(t, a.Identity(), b.Identity())
	})
}

func TestSafetyCritical(t *testing.T) {
	assert.True(t, EventFireAlarm.SafetyCritical())
	assert.True(t, EventGasLeak.SafetyCritical())
	assert.False(t, EventThresholdChange.SafetyCritical())
	assert.False(t, EventConsumptionSpike.SafetyCritical())
	assert.False(t, EventOrderReceived.SafetyCritical())
	assert.False(t, EventPopularityChange.SafetyCritical())
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityWarning.Rank())
	assert.Greater(t, SeverityWarning.Rank(), SeverityInfo.Rank())
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidZone, http.StatusBadRequest},
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeNotFoundSample, http.StatusNotFound},
		{ErrCodeConflictSimulationState, http.StatusConflict},
		{ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstreamAnomaly, http.StatusBadGateway},
		{ErrCodeUpstreamUnavailable, http.StatusBadGateway},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), string(tt.code))
	}
}

func TestMetricValue_CoversEveryMetric(t *testing.T) {
	s := Sample{
		Temperature:        24,
		Humidity:           50,
		CO2Level:           600,
		LightLevel:         400,
		OccupancyCount:     8,
		EnergyConsumedKWh:  12,
		BatteryBackupLevel: 90,
	}
	for _, m := range AllMetrics {
		assert.NotZero(t, s.MetricValue(m), string(m))
	}
	assert.Zero(t, s.MetricValue(Metric("unknown")))
}

func TestParseZoneAndMetric(t *testing.T) {
	z, ok := ParseZone("kitchen")
	assert.True(t, ok)
	assert.Equal(t, ZoneKitchen, z)

	_, ok = ParseZone("rooftop")
	assert.False(t, ok)

	m, ok := ParseMetric("co2_level")
	assert.True(t, ok)
	assert.Equal(t, MetricCO2, m)

	_, ok = ParseMetric("loudness")
	assert.False(t, ok)
}
