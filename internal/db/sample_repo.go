package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"trizzaone/internal/types"
)

// SampleRepository provides data access for the sensor_samples table. The
// table is append-mostly: the simulator inserts one row per tick and the
// archiver trims rows older than the retention cutoff.
type SampleRepository struct {
	db DBTX
}

// NewSampleRepository creates a SampleRepository backed by the given database
// connection (pool or transaction).
func NewSampleRepository(db DBTX) *SampleRepository {
	return &SampleRepository{db: db}
}

const sampleColumns = `id, zone, floor, recorded_at,
	temperature, humidity, co2_level, light_level,
	occupancy_count, energy_consumed_kwh, battery_backup_level,
	motion_detected, power_status, air_purifier_status,
	cleaning_status, fire_alarm_triggered, gas_leak_detected`

func scanSample(row pgx.Row) (types.Sample, error) {
	var s types.Sample
	err := row.Scan(
		&s.ID,
		&s.Zone,
		&s.Floor,
		&s.Timestamp,
		&s.Temperature,
		&s.Humidity,
		&s.CO2Level,
		&s.LightLevel,
		&s.OccupancyCount,
		&s.EnergyConsumedKWh,
		&s.BatteryBackupLevel,
		&s.MotionDetected,
		&s.PowerStatus,
		&s.AirPurifierStatus,
		&s.CleaningStatus,
		&s.FireAlarmTriggered,
		&s.GasLeakDetected,
	)
	return s, err
}

// Insert persists one sample. Re-inserting an existing ID is a no-op so the
// poll path and the realtime path can safely overlap.
func (r *SampleRepository) Insert(ctx context.Context, s types.Sample) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sensor_samples (`+sampleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID,
		s.Zone,
		s.Floor,
		s.Timestamp,
		s.Temperature,
		s.Humidity,
		s.CO2Level,
		s.LightLevel,
		s.OccupancyCount,
		s.EnergyConsumedKWh,
		s.BatteryBackupLevel,
		s.MotionDetected,
		s.PowerStatus,
		s.AirPurifierStatus,
		s.CleaningStatus,
		s.FireAlarmTriggered,
		s.GasLeakDetected,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert sample", err)
	}
	return nil
}

// ListRecent returns the newest samples, newest first, bounded by limit.
func (r *SampleRepository) ListRecent(ctx context.Context, limit int) ([]types.Sample, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+sampleColumns+`
		 FROM sensor_samples
		 ORDER BY recorded_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list samples", err)
	}
	defer rows.Close()

	var results []types.Sample
	for rows.Next() {
		s, scanErr := scanSample(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan sample row", scanErr)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating sample rows", err)
	}

	return results, nil
}

// ListOlderThan returns samples recorded strictly before the cutoff, oldest
// first. Used by the archiver to export rows before trimming them.
func (r *SampleRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]types.Sample, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sampleColumns+`
		 FROM sensor_samples
		 WHERE recorded_at < $1
		 ORDER BY recorded_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list expired samples", err)
	}
	defer rows.Close()

	var results []types.Sample
	for rows.Next() {
		s, scanErr := scanSample(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan sample row", scanErr)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating sample rows", err)
	}

	return results, nil
}

// DeleteOlderThan removes samples recorded strictly before the cutoff and
// returns the number of rows removed.
func (r *SampleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sensor_samples WHERE recorded_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete expired samples", err)
	}
	return tag.RowsAffected(), nil
}
