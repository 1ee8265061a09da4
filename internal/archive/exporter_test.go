package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizzaone/internal/config"
	"trizzaone/internal/types"
)

type fakeSource struct {
	samples []types.Sample
	listErr error

	deleted   int64
	deleteErr error

	gotCutoff time.Time
}

func (f *fakeSource) ListOlderThan(_ context.Context, cutoff time.Time) ([]types.Sample, error) {
	f.gotCutoff = cutoff
	return f.samples, f.listErr
}

func (f *fakeSource) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.deleted, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func oldSamples(n int) []types.Sample {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Sample, n)
	for i := range out {
		out[i] = types.Sample{
			ID:          "s-" + string(rune('a'+i)),
			Zone:        types.ZoneStorage,
			Temperature: 20 + float64(i),
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestExporter_WritesGzipJSONLinesAndTrims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{samples: oldSamples(3), deleted: 3}
	exp := NewExporter(source, config.ArchiveConfig{
		Retention: 168 * time.Hour,
		Directory: t.TempDir(),
	}, fixedClock{now: now}, nil, quietLogger())

	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, now.Add(-168*time.Hour), result.Cutoff)
	assert.Equal(t, now.Add(-168*time.Hour), source.gotCutoff)
	assert.Equal(t, 3, result.Exported)
	assert.Equal(t, int64(3), result.Deleted)
	require.NotEmpty(t, result.Path)

	f, err := os.Open(result.Path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var restored []types.Sample
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		var s types.Sample
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s))
		restored = append(restored, s)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, restored, 3)
	assert.Equal(t, source.samples[0].ID, restored[0].ID)
	assert.Equal(t, source.samples[2].Temperature, restored[2].Temperature)
}

func TestExporter_NoExpiredRowsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	exp := NewExporter(&fakeSource{}, config.ArchiveConfig{
		Retention: time.Hour,
		Directory: dir,
	}, fixedClock{now: time.Now().UTC()}, nil, quietLogger())

	result, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Exported)
	assert.Empty(t, result.Path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExporter_ListFailurePropagates(t *testing.T) {
	exp := NewExporter(&fakeSource{listErr: errors.New("db down")}, config.ArchiveConfig{
		Directory: t.TempDir(),
	}, nil, nil, quietLogger())

	_, err := exp.Run(context.Background())
	assert.Error(t, err)
}

func TestExporter_DeleteFailureKeepsExportedFile(t *testing.T) {
	source := &fakeSource{samples: oldSamples(2), deleteErr: errors.New("db down")}
	exp := NewExporter(source, config.ArchiveConfig{
		Retention: time.Hour,
		Directory: t.TempDir(),
	}, fixedClock{now: time.Now().UTC()}, nil, quietLogger())

	result, err := exp.Run(context.Background())
	require.Error(t, err)

	// The export already happened; the file must survive so nothing is lost.
	assert.Equal(t, 2, result.Exported)
	assert.FileExists(t, result.Path)
}

type countingCollector struct {
	counts map[string]float64
}

func (c *countingCollector) Count(_ context.Context, name string, value float64, _ map[string]string) {
	if c.counts == nil {
		c.counts = map[string]float64{}
	}
	c.counts[name] += value
}

func TestExporter_RecordsArchivedCount(t *testing.T) {
	collector := &countingCollector{}
	exp := NewExporter(&fakeSource{samples: oldSamples(4), deleted: 4}, config.ArchiveConfig{
		Retention: time.Hour,
		Directory: t.TempDir(),
	}, fixedClock{now: time.Now().UTC()}, collector, quietLogger())

	_, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.0, collector.counts[types.MetricSamplesArchived])
}

func TestExporter_ZeroRetentionFallsBackToDefault(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	exp := NewExporter(source, config.ArchiveConfig{Directory: t.TempDir()},
		fixedClock{now: now}, nil, quietLogger())

	_, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.Add(-168*time.Hour), source.gotCutoff)
}
