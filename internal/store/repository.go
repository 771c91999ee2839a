package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"acoustimon/internal/dsp"
	"acoustimon/internal/errors"
	"acoustimon/internal/logger"
	"acoustimon/internal/telemetry"
)

type sqliteRepository struct {
	db            *sql.DB
	cfg           Config
	deviceID      string
	mu            sync.Mutex
	buffer        []*telemetry.FeatureRecord
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func newRepository(cfg Config, deviceID string) (repository, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err).WithMessage("Failed to create store directory")
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()

		return nil, err
	}

	logger.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Msg("Record store initialized")

	repo := &sqliteRepository{
		db:            db,
		cfg:           cfg,
		deviceID:      deviceID,
		buffer:        make([]*telemetry.FeatureRecord, 0, cfg.BatchSize),
		flushTicker:   time.NewTicker(cfg.FlushInterval),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go repo.flusher()

	return repo, nil
}

func (r *sqliteRepository) Record(record *telemetry.FeatureRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, record)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	close(r.shutdownChan)
	r.flushTicker.Stop()
	<-r.flushDoneChan

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	logger.Debug().Msg("Record store closed")

	return nil
}

func (r *sqliteRepository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				logger.Warn().Err(err).Msg("Periodic flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				logger.Warn().Err(err).Msg("Final flush failed")
			}
			r.mu.Unlock()

			return
		}
	}
}

// flush writes the buffer in one transaction. Callers must hold the mutex.
func (r *sqliteRepository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(insertRecordSQL)
	if err != nil {
		rollback(tx)

		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, record := range r.buffer {
		if _, err := stmt.Exec(
			record.TimestampMs,
			r.deviceID,
			record.RMSEnergy,
			record.SpectralCentroid,
			record.SpectralRolloff,
			record.ZeroCrossingRate,
			boolToInt(record.CompressorOn),
			record.AnomalyScore,
			record.TemperatureEstimateC,
			record.EfficiencyScore,
			coeffsJSON(record.Coeffs),
		); err != nil {
			rollback(tx)

			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	logger.Debug().Int("records", len(r.buffer)).Msg("Flushed feature records")
	r.buffer = r.buffer[:0]

	return nil
}

// Helper functions

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Debug().Err(err).Msg("Rollback failed")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// json.Marshal cannot fail for a fixed float array.
func coeffsJSON(coeffs [dsp.CoefficientCount]float64) string {
	data, _ := json.Marshal(coeffs)

	return string(data)
}
