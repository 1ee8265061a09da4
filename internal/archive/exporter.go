// Package archive exports telemetry older than the retention window to
// compressed JSON-lines files and trims the exported rows from the database.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"trizzaone/internal/config"
	"trizzaone/internal/types"
)

// SampleSource supplies the expired rows and removes them after export.
// Backed by the Postgres sample repository.
type SampleSource interface {
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]types.Sample, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MetricsCollector records how many samples each run archived. Satisfied by
// the CloudWatch emitter; a nil collector disables emission.
type MetricsCollector interface {
	Count(ctx context.Context, name string, value float64, dims map[string]string)
}

// Result summarizes one archiver run.
type Result struct {
	Cutoff   time.Time `json:"cutoff"`
	Exported int       `json:"exported"`
	Deleted  int64     `json:"deleted"`
	Path     string    `json:"path,omitempty"`
}

// Exporter runs the export-then-trim cycle. Rows are deleted only after the
// archive file is fully written and synced, so a failed export never loses
// data.
type Exporter struct {
	source    SampleSource
	retention time.Duration
	dir       string
	clock     types.Clock
	metrics   MetricsCollector // optional
	logger    *slog.Logger
}

// NewExporter creates an Exporter from the archive configuration.
func NewExporter(source SampleSource, cfg config.ArchiveConfig, clock types.Clock, metrics MetricsCollector, logger *slog.Logger) *Exporter {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = 168 * time.Hour
	}
	return &Exporter{
		source:    source,
		retention: retention,
		dir:       cfg.Directory,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run performs one archive cycle and reports what was exported and deleted.
// A run with no expired rows writes no file and deletes nothing.
func (e *Exporter) Run(ctx context.Context) (Result, error) {
	cutoff := e.clock.Now().Add(-e.retention)
	result := Result{Cutoff: cutoff}

	samples, err := e.source.ListOlderThan(ctx, cutoff)
	if err != nil {
		return result, err
	}
	if len(samples) == 0 {
		e.logger.InfoContext(ctx, "no samples past retention", "cutoff", cutoff)
		return result, nil
	}

	path, err := e.write(cutoff, samples)
	if err != nil {
		return result, err
	}
	result.Exported = len(samples)
	result.Path = path
	if e.metrics != nil {
		e.metrics.Count(ctx, types.MetricSamplesArchived, float64(result.Exported), nil)
	}

	deleted, err := e.source.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		// The export file is already on disk; surface the error so the next
		// run retries the trim.
		return result, err
	}
	result.Deleted = deleted

	e.logger.InfoContext(ctx, "archive cycle complete",
		"cutoff", cutoff,
		"exported", result.Exported,
		"deleted", result.Deleted,
		"path", path,
	)
	return result, nil
}

// write streams the samples as gzip-compressed JSON lines into a file named
// after the cutoff timestamp. The file is written to a temp name and renamed
// into place once complete.
func (e *Exporter) write(cutoff time.Time, samples []types.Sample) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: failed to create directory: %w", err)
	}

	name := fmt.Sprintf("samples-%s.jsonl.gz", cutoff.UTC().Format("20060102T150405Z"))
	path := filepath.Join(e.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("archive: failed to create file: %w", err)
	}

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			gz.Close()
			f.Close()
			os.Remove(tmp)
			return "", fmt.Errorf("archive: failed to encode sample: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("archive: failed to flush compressor: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("archive: failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("archive: failed to close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("archive: failed to finalize file: %w", err)
	}

	return path, nil
}
