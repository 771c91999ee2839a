package dsp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"acoustimon/internal/dsp"
)

func TestExtractZeroWindow(t *testing.T) {
	window := make([]int16, 16)

	features := dsp.Extract(window)

	assert.Zero(t, features.RMSEnergy)
	assert.Zero(t, features.ZeroCrossingRate)
	assert.Zero(t, features.CentroidProxy)
	assert.Zero(t, features.RolloffProxy, "Expected threshold met at index 0 for a silent window")
	for i, c := range features.Coeffs {
		assert.Zerof(t, c, "coefficient %d", i)
	}
}

func TestExtractDeterministic(t *testing.T) {
	window := []int16{1000, -2000, 3000, -4000, 500, -600, 0, 32767, -32768, 7}

	first := dsp.Extract(window)
	second := dsp.Extract(window)

	assert.Equal(t, first, second, "Expected identical features for an identical window")
}

func TestRMSEnergy(t *testing.T) {
	assert.Equal(t, 1000.0, dsp.RMSEnergy([]int16{1000, -1000, 1000, -1000}))
	assert.Equal(t, 5.0, dsp.RMSEnergy([]int16{5, 5, 5, 5}))
	assert.Zero(t, dsp.RMSEnergy(nil))
}

func TestRMSEnergyFullScaleNoOverflow(t *testing.T) {
	window := make([]int16, 32000)
	for i := range window {
		window[i] = -32768
	}

	assert.InDelta(t, 32768.0, dsp.RMSEnergy(window), 1e-9)
}

func TestZeroCrossingRate(t *testing.T) {
	assert.Equal(t, 1.0, dsp.ZeroCrossingRate([]int16{1000, -1000, 1000, -1000}))
	assert.Equal(t, 1.0/3.0, dsp.ZeroCrossingRate([]int16{1, 1, -1, -1}))
	assert.Zero(t, dsp.ZeroCrossingRate([]int16{42}))
}

func TestZeroCrossingRateZeroIsNonNegative(t *testing.T) {
	// Zero sits on the non-negative side, so 0 -> -1 crosses but -1 -> 0 also
	// crosses back.
	assert.Equal(t, 1.0, dsp.ZeroCrossingRate([]int16{0, -1}))
	assert.Equal(t, 1.0, dsp.ZeroCrossingRate([]int16{-1, 0}))
	assert.Zero(t, dsp.ZeroCrossingRate([]int16{0, 1}))
}

func TestAmplitudeWeightedIndexCentroid(t *testing.T) {
	// All amplitude at index 2 of 4: mean index 2, fraction 0.5.
	assert.Equal(t, 0.5, dsp.AmplitudeWeightedIndexCentroid([]int16{0, 0, 10, 0}))
	// All amplitude at index 0: fraction 0.
	assert.Zero(t, dsp.AmplitudeWeightedIndexCentroid([]int16{10, 0, 0, 0}))
	// Split evenly across indices 0 and 1 of 2: mean index 0.5, fraction 0.25.
	assert.Equal(t, 0.25, dsp.AmplitudeWeightedIndexCentroid([]int16{5, -5}))
	assert.Zero(t, dsp.AmplitudeWeightedIndexCentroid(make([]int16, 8)))
}

func TestAmplitudeRolloffFraction(t *testing.T) {
	// Entire amplitude at index 0: threshold met immediately.
	assert.Zero(t, dsp.AmplitudeRolloffFraction([]int16{10, 0, 0, 0}))
	// Entire amplitude at the last index of 4.
	assert.Equal(t, 0.75, dsp.AmplitudeRolloffFraction([]int16{0, 0, 0, 10}))
	// Uniform amplitude: 85% of 4 needs the fourth sample.
	assert.Equal(t, 0.75, dsp.AmplitudeRolloffFraction([]int16{1, 1, 1, 1}))
	assert.Zero(t, dsp.AmplitudeRolloffFraction(make([]int16, 4)))
}

func TestCoefficientVector(t *testing.T) {
	coeffs := dsp.CoefficientVector(1000)

	assert.Len(t, coeffs, dsp.CoefficientCount)
	for i, c := range coeffs {
		assert.InDeltaf(t, 1000*float64(i+1)*0.1, c, 1e-9, "coefficient %d", i)
	}

	assert.Equal(t, [dsp.CoefficientCount]float64{}, dsp.CoefficientVector(0))
}
