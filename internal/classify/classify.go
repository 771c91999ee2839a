// Package classify turns one cycle's signal features into an operating-state
// call and heuristic scores. All rules are combinational over the current
// cycle only; nothing here may keep cross-cycle memory. The threshold
// constants are tuned against the index-domain proxy features, not against
// calibrated physical quantities.
package classify

import (
	"acoustimon/internal/dsp"
)

const (
	stateRMSThreshold      = 1000.0
	stateCentroidThreshold = 0.3
	stateZCRThreshold      = 0.1

	anomalyLoudRMS       = 5000.0
	anomalyHighCentroid  = 0.8
	anomalyHighZCR       = 0.5
	anomalyQuietWhileOn  = 500.0
	anomalyLoudWhileOff  = 2000.0
	anomalyLoudIncrement = 0.3
	anomalyFreqIncrement = 0.2

	temperatureBaselineC   = 20.0
	temperatureLoudBumpC   = 5.0
	temperatureBrightBumpC = 3.0
	temperatureLoudRMS     = 2000.0
	temperatureBrightLine  = 0.5

	efficiencyLoudRMS     = 3000.0
	efficiencyLoudPenalty = 0.2
	efficiencyAnomalyLine = 0.5
	efficiencyAnomalyCost = 0.3
)

// Assessment is one cycle's classification of the monitored machine.
type Assessment struct {
	CompressorOn         bool
	AnomalyScore         float64
	TemperatureEstimateC float64
	EfficiencyScore      float64
}

// Assess derives the full assessment for one cycle's features.
func Assess(f dsp.Features) Assessment {
	on := OperatingState(f)
	anomaly := AnomalyScore(f, on)

	return Assessment{
		CompressorOn:         on,
		AnomalyScore:         anomaly,
		TemperatureEstimateC: TemperatureEstimate(f),
		EfficiencyScore:      EfficiencyScore(f, anomaly, on),
	}
}

// OperatingState decides whether the compressor is running from the current
// window alone. Conjunctive rule, no hysteresis; a single noisy window can
// flip it.
func OperatingState(f dsp.Features) bool {
	return f.RMSEnergy > stateRMSThreshold &&
		f.CentroidProxy > stateCentroidThreshold &&
		f.ZeroCrossingRate < stateZCRThreshold
}

// AnomalyScore accumulates independent evidence increments and clamps the
// sum into [0,1]. The state-mismatch increments take the operating state as
// given so mismatched combinations stay expressible.
func AnomalyScore(f dsp.Features, on bool) float64 {
	score := 0.0

	if f.RMSEnergy > anomalyLoudRMS {
		score += anomalyLoudIncrement
	}
	if f.CentroidProxy > anomalyHighCentroid {
		score += anomalyFreqIncrement
	}
	if f.ZeroCrossingRate > anomalyHighZCR {
		score += anomalyFreqIncrement
	}
	if on && f.RMSEnergy < anomalyQuietWhileOn {
		score += anomalyLoudIncrement
	}
	if !on && f.RMSEnergy > anomalyLoudWhileOff {
		score += anomalyLoudIncrement
	}

	return clamp(score, 0.0, 1.0)
}

// TemperatureEstimate is a rough thermal guess from loudness and brightness,
// not a calibrated sensor reading.
func TemperatureEstimate(f dsp.Features) float64 {
	estimate := temperatureBaselineC

	if f.RMSEnergy > temperatureLoudRMS {
		estimate += temperatureLoudBumpC
	}
	if f.CentroidProxy > temperatureBrightLine {
		estimate += temperatureBrightBumpC
	}

	return estimate
}

// EfficiencyScore is 1.0 for an idle machine; a running machine loses fixed
// penalties for excessive loudness and elevated anomaly, clamped into [0,1].
func EfficiencyScore(f dsp.Features, anomaly float64, on bool) float64 {
	if !on {
		return 1.0
	}

	score := 1.0
	if f.RMSEnergy > efficiencyLoudRMS {
		score -= efficiencyLoudPenalty
	}
	if anomaly > efficiencyAnomalyLine {
		score -= efficiencyAnomalyCost
	}

	return clamp(score, 0.0, 1.0)
}

// Helper functions

func clamp(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
