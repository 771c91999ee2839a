package telemetry_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acoustimon/internal/classify"
	"acoustimon/internal/dsp"
	"acoustimon/internal/telemetry"
)

func TestEncodePayloadExactSchema(t *testing.T) {
	record := telemetry.FeatureRecord{
		TimestampMs:      123456,
		RMSEnergy:        1234.5,
		SpectralCentroid: 0.4,
		SpectralRolloff:  0.75,
		ZeroCrossingRate: 0.05,
		Coeffs: [dsp.CoefficientCount]float64{
			0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5, 6.0, 6.5,
		},
		CompressorOn:         true,
		AnomalyScore:         0.6,
		TemperatureEstimateC: 24.5,
		EfficiencyScore:      0.8,
	}

	payload := telemetry.EncodePayload(record, "compressor-ab12cd34")

	expected := `{"device_id":"compressor-ab12cd34","timestamp":123456,` +
		`"rms_energy":1234.50,"spectral_centroid":0.400,"spectral_rolloff":0.750,` +
		`"zero_crossing_rate":0.050,"compressor_state":1.0,"anomaly_score":0.600,` +
		`"temperature_estimate":24.5,"efficiency_score":0.800,` +
		`"mfcc":[0.500,1.000,1.500,2.000,2.500,3.000,3.500,4.000,4.500,5.000,5.500,6.000,6.500]}`
	assert.Equal(t, expected, string(payload))
}

func TestEncodePayloadPrecision(t *testing.T) {
	record := telemetry.FeatureRecord{
		RMSEnergy:       999.999,
		AnomalyScore:    0.6789,
		EfficiencyScore: 1,
	}

	payload := string(telemetry.EncodePayload(record, "compressor-0"))

	assert.Contains(t, payload, `"rms_energy":1000.00`)
	assert.Contains(t, payload, `"anomaly_score":0.679`)
	assert.Contains(t, payload, `"efficiency_score":1.000`)
	assert.Contains(t, payload, `"compressor_state":0.0`)
	assert.Contains(t, payload, `"temperature_estimate":0.0`)
}

func TestEncodePayloadIsValidJSON(t *testing.T) {
	record := telemetry.FeatureRecord{
		TimestampMs:          42,
		RMSEnergy:            1500,
		SpectralCentroid:     0.33,
		CompressorOn:         true,
		TemperatureEstimateC: 25,
	}

	payload := telemetry.EncodePayload(record, `weird"id\name`)
	require.True(t, json.Valid(payload), "payload: %s", payload)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, `weird"id\name`, decoded["device_id"])
	assert.Equal(t, float64(42), decoded["timestamp"])
	assert.Equal(t, 1.0, decoded["compressor_state"])
	assert.Len(t, decoded["mfcc"], dsp.CoefficientCount)
}

func TestNewRecord(t *testing.T) {
	features := dsp.Features{
		RMSEnergy:        1500,
		ZeroCrossingRate: 0.05,
		CentroidProxy:    0.4,
		RolloffProxy:     0.7,
		Coeffs:           dsp.CoefficientVector(1500),
	}
	assessment := classify.Assessment{
		CompressorOn:         true,
		AnomalyScore:         0.3,
		TemperatureEstimateC: 25,
		EfficiencyScore:      0.8,
	}

	record := telemetry.NewRecord(9000, features, assessment)

	assert.Equal(t, int64(9000), record.TimestampMs)
	assert.Equal(t, 1500.0, record.RMSEnergy)
	assert.Equal(t, 0.4, record.SpectralCentroid)
	assert.Equal(t, 0.7, record.SpectralRolloff)
	assert.Equal(t, 0.05, record.ZeroCrossingRate)
	assert.Equal(t, features.Coeffs, record.Coeffs)
	assert.True(t, record.CompressorOn)
	assert.Equal(t, 0.3, record.AnomalyScore)
	assert.Equal(t, 25.0, record.TemperatureEstimateC)
	assert.Equal(t, 0.8, record.EfficiencyScore)
}
