// Package store optionally persists each analysis cycle's feature record to
// a local sqlite database. It ships disabled; nothing in the agent ever
// reads the records back.
package store

import (
	"context"

	"acoustimon/internal/errors"
	"acoustimon/internal/logger"
	"acoustimon/internal/telemetry"
)

type service struct {
	repo repository
}

type noopRecorder struct{}

// NewService builds a Recorder for the configured device. A disabled store
// yields a no-op recorder.
func NewService(cfg Config, deviceID string) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Record store disabled, using no-op recorder")

		return &noopRecorder{}, nil
	}

	repo, err := newRepository(cfg, deviceID)
	if err != nil {
		return nil, err
	}

	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, record *telemetry.FeatureRecord) error {
	errFactory := errors.New()

	if record == nil {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrRecordFailed, ctx.Err())
	default:
		if err := s.repo.Record(record); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	return s.repo.Close()
}

func (*noopRecorder) Record(_ context.Context, _ *telemetry.FeatureRecord) error {
	return nil
}

func (*noopRecorder) Close() error {
	return nil
}
