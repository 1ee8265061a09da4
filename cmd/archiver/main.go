// Package main is the entrypoint for the telemetry archiver.
//
// The archiver exports samples older than the retention window to compressed
// JSON-lines files and trims the exported rows. It runs as a Lambda when
// invoked inside the AWS runtime (scheduled via EventBridge) and as a
// one-shot CLI otherwise.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"trizzaone/internal/archive"
	"trizzaone/internal/config"
	"trizzaone/internal/db"
	"trizzaone/internal/metrics"
	"trizzaone/internal/types"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if isLambdaEnvironment() {
		lambda.Start(func(ctx context.Context) (archive.Result, error) {
			return runOnce(ctx, logger)
		})
		return
	}

	result, err := runOnce(context.Background(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	logger.Info("archiver finished",
		"exported", result.Exported,
		"deleted", result.Deleted,
		"path", result.Path,
	)
}

// runOnce executes one archive cycle against the configured database.
func runOnce(ctx context.Context, logger *slog.Logger) (archive.Result, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return archive.Result{}, fmt.Errorf("loading configuration: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return archive.Result{}, fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	var collector archive.MetricsCollector
	if cfg.Observability.MetricsEnabled {
		if emitter := newEmitter(ctx, cfg, logger); emitter != nil {
			collector = emitter
		}
	}

	exporter := archive.NewExporter(db.NewSampleRepository(pool), cfg.Archive, types.RealClock{}, collector, logger)
	return exporter.Run(ctx)
}

// newEmitter builds the CloudWatch emitter. Emission is optional; a failed
// AWS configuration load only disables it.
func newEmitter(ctx context.Context, cfg *config.Config, logger *slog.Logger) *metrics.Emitter {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Warn("metrics disabled, AWS configuration failed", "error", err)
		return nil
	}
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return metrics.NewEmitter(cwClient, cfg.Observability.MetricNamespace, logger)
}

// isLambdaEnvironment reports whether the process runs inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, ok := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	return ok
}
