package telemetry

import (
	"context"

	"acoustimon/internal/classify"
	"acoustimon/internal/dsp"
)

// Uploader delivers one encoded payload per call. Delivery is fire-and-forget
// at the agent level: a failed upload is logged and discarded, never queued.
type Uploader interface {
	Upload(ctx context.Context, payload []byte) error
	Close() error
}

// FeatureRecord is one cycle's complete feature and assessment snapshot,
// read-only after creation.
type FeatureRecord struct {
	TimestampMs          int64
	RMSEnergy            float64
	SpectralCentroid     float64
	SpectralRolloff      float64
	ZeroCrossingRate     float64
	Coeffs               [dsp.CoefficientCount]float64
	CompressorOn         bool
	AnomalyScore         float64
	TemperatureEstimateC float64
	EfficiencyScore      float64
}

// NewRecord assembles a record from one cycle's features and assessment.
func NewRecord(timestampMs int64, features dsp.Features, assessment classify.Assessment) FeatureRecord {
	return FeatureRecord{
		TimestampMs:          timestampMs,
		RMSEnergy:            features.RMSEnergy,
		SpectralCentroid:     features.CentroidProxy,
		SpectralRolloff:      features.RolloffProxy,
		ZeroCrossingRate:     features.ZeroCrossingRate,
		Coeffs:               features.Coeffs,
		CompressorOn:         assessment.CompressorOn,
		AnomalyScore:         assessment.AnomalyScore,
		TemperatureEstimateC: assessment.TemperatureEstimateC,
		EfficiencyScore:      assessment.EfficiencyScore,
	}
}
