package store

import (
	"database/sql"

	"acoustimon/internal/errors"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS feature_records (
	       id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	       timestamp_ms         INTEGER NOT NULL,
	       device_id            TEXT NOT NULL,
	       rms_energy           REAL NOT NULL,
	       spectral_centroid    REAL NOT NULL,
	       spectral_rolloff     REAL NOT NULL,
	       zero_crossing_rate   REAL NOT NULL,
	       compressor_on        INTEGER NOT NULL CHECK (compressor_on IN (0, 1)),
	       anomaly_score        REAL NOT NULL,
	       temperature_estimate REAL NOT NULL,
	       efficiency_score     REAL NOT NULL,
	       coeffs               TEXT NOT NULL
	   );`

	insertRecordSQL = `
    INSERT INTO feature_records (
        timestamp_ms, device_id,
        rms_energy, spectral_centroid, spectral_rolloff, zero_crossing_rate,
        compressor_on, anomaly_score, temperature_estimate, efficiency_score,
        coeffs
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// ensureSchema creates the tables on first open and rejects databases
// written by a different schema version.
func ensureSchema(db *sql.DB) error {
	errFactory := errors.New()

	if _, err := db.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_versions`).Scan(&version); err != nil {
		return errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	if !version.Valid {
		if _, err := db.Exec(
			`INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))`,
			SchemaVersion,
		); err != nil {
			return errFactory.Wrap(ErrSchemaInitFailed, err)
		}

		return nil
	}

	if version.Int64 != SchemaVersion {
		return errFactory.WithData(ErrSchemaValidationFailed, version.Int64)
	}

	return nil
}
