// Package diag exposes the agent's diagnostics over HTTP: a liveness probe,
// a status snapshot, and prometheus metrics. The server is optional and off
// unless a listen address is configured; the agent's behavior never depends
// on it.
package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"acoustimon/internal/telemetry"
)

// Upload outcome labels.
const (
	UploadDelivered = "delivered"
	UploadFailed    = "failed"
	UploadSkipped   = "skipped"
)

var (
	capturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acoustimon_captures_total",
		Help: "Total number of completed sample window captures",
	})

	captureFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acoustimon_capture_failures_total",
		Help: "Total number of failed captures (cycle skipped)",
	})

	analysesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acoustimon_analyses_total",
		Help: "Total number of analysis cycles",
	})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acoustimon_uploads_total",
		Help: "Total number of upload cycles by outcome",
	}, []string{"result"})

	reconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acoustimon_reconnects_total",
		Help: "Total number of reconnect cycles",
	})

	anomalyScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acoustimon_anomaly_score",
		Help: "Anomaly score of the most recent analysis",
	})

	compressorState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acoustimon_compressor_state",
		Help: "Operating state of the most recent analysis (1 running, 0 idle)",
	})

	rmsEnergy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acoustimon_rms_energy",
		Help: "RMS energy of the most recent analysis window",
	})

	temperatureEstimate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acoustimon_temperature_estimate_celsius",
		Help: "Temperature estimate of the most recent analysis",
	})
)

func CountCapture()        { capturesTotal.Inc() }
func CountCaptureFailure() { captureFailuresTotal.Inc() }
func CountAnalysis()       { analysesTotal.Inc() }
func CountReconnect()      { reconnectsTotal.Inc() }

func CountUpload(result string) {
	uploadsTotal.WithLabelValues(result).Inc()
}

// ObserveRecord mirrors the latest analysis into the gauges.
func ObserveRecord(record telemetry.FeatureRecord) {
	anomalyScore.Set(record.AnomalyScore)
	rmsEnergy.Set(record.RMSEnergy)
	temperatureEstimate.Set(record.TemperatureEstimateC)

	if record.CompressorOn {
		compressorState.Set(1)
	} else {
		compressorState.Set(0)
	}
}
