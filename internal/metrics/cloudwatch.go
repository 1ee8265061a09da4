// Package metrics emits operational telemetry to CloudWatch. All metric and
// dimension names come from the constants in the types package.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"trizzaone/internal/types"
)

// CWClient abstracts the CloudWatch PutMetricData operation for testability.
type CWClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Emitter records counters and latencies. Emission is best-effort: failures
// are logged and never propagate to the caller.
type Emitter struct {
	client    CWClient
	namespace string
	logger    *slog.Logger
}

// NewEmitter creates an Emitter. An empty namespace falls back to the
// default TrizzaOne namespace.
func NewEmitter(client CWClient, namespace string, logger *slog.Logger) *Emitter {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// Count emits a count-unit datum with the given dimensions.
func (e *Emitter) Count(ctx context.Context, name string, value float64, dims map[string]string) {
	e.put(ctx, name, value, cwTypes.StandardUnitCount, dims)
}

// Latency emits a milliseconds-unit datum with the given dimensions.
func (e *Emitter) Latency(ctx context.Context, name string, d time.Duration, dims map[string]string) {
	e.put(ctx, name, float64(d.Milliseconds()), cwTypes.StandardUnitMilliseconds, dims)
}

// RecordEvent is a convenience counter keyed by event kind.
func (e *Emitter) RecordEvent(ctx context.Context, name string, kind types.EventKind) {
	e.Count(ctx, name, 1, map[string]string{types.DimEventKind: string(kind)})
}

func (e *Emitter) put(ctx context.Context, name string, value float64, unit cwTypes.StandardUnit, dims map[string]string) {
	if e.client == nil {
		return
	}

	var dimensions []cwTypes.Dimension
	for k, v := range dims {
		dimensions = append(dimensions, cwTypes.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(e.namespace),
		MetricData: []cwTypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: dimensions,
				Timestamp:  aws.Time(time.Now().UTC()),
			},
		},
	})
	if err != nil {
		e.logger.WarnContext(ctx, "metric emission failed",
			"metric", name,
			"error", err,
		)
	}
}
