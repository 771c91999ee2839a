package store

import (
	"context"

	"acoustimon/internal/telemetry"
)

// Recorder persists feature records locally. The store is write-only: the
// agent never reads records back, and a disabled store is a no-op the
// scheduler can still call safely.
type Recorder interface {
	Record(ctx context.Context, record *telemetry.FeatureRecord) error
	Close() error
}

// repository is the storage-facing half of the Recorder.
type repository interface {
	Record(record *telemetry.FeatureRecord) error
	Close() error
}
