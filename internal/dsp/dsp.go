// Package dsp derives signal features from a raw sample window. The
// "spectral" features are deliberate low-cost index-domain proxies, not
// frequency-domain measures, and the coefficient vector is a scaled-RMS
// fan-out rather than a cepstral transform. The operating-state and anomaly
// thresholds elsewhere were tuned against these exact formulas; do not swap
// in FFT-backed versions without retuning.
package dsp

import (
	"math"
)

const (
	// CoefficientCount is the fixed length of the coefficient-vector proxy.
	CoefficientCount = 13

	rolloffThreshold = 0.85
	coefficientScale = 0.1
)

// Features holds one window's worth of derived signal features.
type Features struct {
	RMSEnergy        float64
	ZeroCrossingRate float64
	CentroidProxy    float64
	RolloffProxy     float64
	Coeffs           [CoefficientCount]float64
}

// Extract computes all features for one window. It is pure and stateless;
// identical windows yield identical Features.
func Extract(window []int16) Features {
	rms := RMSEnergy(window)

	return Features{
		RMSEnergy:        rms,
		ZeroCrossingRate: ZeroCrossingRate(window),
		CentroidProxy:    AmplitudeWeightedIndexCentroid(window),
		RolloffProxy:     AmplitudeRolloffFraction(window),
		Coeffs:           CoefficientVector(rms),
	}
}

// RMSEnergy is the root of the mean squared sample amplitude. The
// accumulator is wide enough for tens of thousands of full-scale samples.
func RMSEnergy(window []int16) float64 {
	if len(window) == 0 {
		return 0
	}

	var sum int64
	for _, s := range window {
		v := int64(s)
		sum += v * v
	}

	return math.Sqrt(float64(sum) / float64(len(window)))
}

// ZeroCrossingRate is the fraction of adjacent-sample transitions between a
// sample >= 0 and a sample < 0, over W-1 pairs.
func ZeroCrossingRate(window []int16) float64 {
	if len(window) < 2 {
		return 0
	}

	crossings := 0
	for i := 1; i < len(window); i++ {
		if (window[i-1] >= 0) != (window[i] >= 0) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(window)-1)
}

// AmplitudeWeightedIndexCentroid is the amplitude-weighted mean sample index
// as a fraction of the window length, range [0,1). A silent window yields 0.
func AmplitudeWeightedIndexCentroid(window []int16) float64 {
	if len(window) == 0 {
		return 0
	}

	var weighted, total int64
	for i, s := range window {
		a := absSample(s)
		weighted += a * int64(i)
		total += a
	}

	if total == 0 {
		return 0
	}

	return float64(weighted) / float64(total) / float64(len(window))
}

// AmplitudeRolloffFraction is the smallest index fraction i/W at which the
// cumulative absolute amplitude reaches 85% of the window total. A silent
// window meets the threshold at index 0; if the threshold is never met the
// fraction is 1.0.
func AmplitudeRolloffFraction(window []int16) float64 {
	if len(window) == 0 {
		return 0
	}

	var total int64
	for _, s := range window {
		total += absSample(s)
	}
	if total == 0 {
		return 0
	}

	threshold := rolloffThreshold * float64(total)
	var cumulative int64
	for i, s := range window {
		cumulative += absSample(s)
		if float64(cumulative) >= threshold {
			return float64(i) / float64(len(window))
		}
	}

	return 1.0
}

// CoefficientVector fans the RMS out into the fixed 13-value proxy vector.
func CoefficientVector(rms float64) [CoefficientCount]float64 {
	var coeffs [CoefficientCount]float64
	for i := range coeffs {
		coeffs[i] = rms * float64(i+1) * coefficientScale
	}

	return coeffs
}

// Helper functions

func absSample(s int16) int64 {
	v := int64(s)
	if v < 0 {
		return -v
	}

	return v
}
