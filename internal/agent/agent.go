// Package agent runs the cooperative main loop: one logical thread that
// sequences button handling, connectivity, capture, analysis, upload and
// status outputs. Capture is the only long blocking point; every timer is a
// plain monotonic comparison owned by this loop.
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"acoustimon/internal/audio"
	"acoustimon/internal/classify"
	"acoustimon/internal/control"
	"acoustimon/internal/diag"
	"acoustimon/internal/dsp"
	"acoustimon/internal/errors"
	"acoustimon/internal/identity"
	"acoustimon/internal/logger"
	"acoustimon/internal/store"
	"acoustimon/internal/telemetry"
)

// Config carries the loop cadences. Analysis and upload are independently
// timed; neither is a multiple of the other by contract.
type Config struct {
	WindowSamples    int
	AnalysisInterval time.Duration
	UploadInterval   time.Duration
	UploadTimeout    time.Duration
	TickYield        time.Duration
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.WindowSamples <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "window samples must be positive")
	}
	if c.AnalysisInterval <= 0 || c.UploadInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "cadence intervals must be positive")
	}
	if c.UploadTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "upload timeout must be positive")
	}
	if c.TickYield < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "tick yield must not be negative")
	}

	return nil
}

// Connectivity is the scheduler's view of the network manager.
type Connectivity interface {
	Ensure(ctx context.Context) bool
	ForceReconnect(ctx context.Context) bool
}

// ControlSurface is the scheduler's view of the button and status lights.
type ControlSurface interface {
	Poll() control.Intent
	UploadEnabled() bool
	RefreshLights(connected bool)
}

// Deps are the collaborators the loop drives. Uploader may be nil when
// telemetry is disabled; Recorder and Clock default when nil.
type Deps struct {
	Source   audio.Source
	Network  Connectivity
	Panel    ControlSurface
	Uploader telemetry.Uploader
	Recorder store.Recorder
	Identity identity.Identity
	Clock    clock.Clock
}

// Agent owns the sample window and all loop state. Nothing outside the loop
// mutates it; the published status snapshot is the one read-side exception.
type Agent struct {
	cfg      Config
	clock    clock.Clock
	source   audio.Source
	network  Connectivity
	panel    ControlSurface
	uploader telemetry.Uploader
	recorder store.Recorder
	id       identity.Identity

	window         audio.SampleWindow
	startedAt      time.Time
	lastAnalysis   time.Time
	lastUpload     time.Time
	connected      bool
	skipNoted      bool
	lastAssessment classify.Assessment

	statusMu sync.RWMutex
	status   diag.Status
}

func New(cfg Config, deps Deps) (*Agent, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Source == nil || deps.Network == nil || deps.Panel == nil {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "source, network and panel are required")
	}

	if deps.Recorder == nil {
		recorder, err := store.NewService(store.DefaultConfig(), deps.Identity.ID)
		if err != nil {
			return nil, err
		}
		deps.Recorder = recorder
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	return &Agent{
		cfg:      cfg,
		clock:    deps.Clock,
		source:   deps.Source,
		network:  deps.Network,
		panel:    deps.Panel,
		uploader: deps.Uploader,
		recorder: deps.Recorder,
		id:       deps.Identity,
		window:   audio.NewSampleWindow(cfg.WindowSamples),
	}, nil
}

// Run drives the loop until the context is canceled.
func (a *Agent) Run(ctx context.Context) error {
	a.initTimers()

	logger.Info().
		Str("device_id", a.id.ID).
		Str("category", a.id.Category).
		Int("window_samples", a.cfg.WindowSamples).
		Dur("analysis_interval", a.cfg.AnalysisInterval).
		Dur("upload_interval", a.cfg.UploadInterval).
		Msg("Agent started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Agent stopping")

			return nil
		default:
		}

		a.tick(ctx)

		if !a.yield(ctx) {
			logger.Info().Msg("Agent stopping")

			return nil
		}
	}
}

func (a *Agent) initTimers() {
	now := a.clock.Now()
	a.startedAt = now
	a.lastAnalysis = now
	a.lastUpload = now
}

// tick runs one full scheduler pass: button, connectivity, capture, then the
// independently timed analysis and upload cycles, then status outputs.
func (a *Agent) tick(ctx context.Context) {
	if intent := a.panel.Poll(); intent == control.IntentForceReconnect {
		diag.CountReconnect()
		a.network.ForceReconnect(ctx)
	}

	a.connected = a.network.Ensure(ctx)

	captured := a.capture()

	now := a.clock.Now()
	if captured && now.Sub(a.lastAnalysis) >= a.cfg.AnalysisInterval {
		a.runAnalysis(ctx, now)
	}

	now = a.clock.Now()
	if captured && now.Sub(a.lastUpload) >= a.cfg.UploadInterval {
		a.maybeUpload(ctx, now)
	}

	a.panel.RefreshLights(a.connected)
	a.publishStatus()
}

func (a *Agent) capture() bool {
	if err := a.source.Capture(a.window); err != nil {
		logger.Warn().Err(err).Msg("Capture failed, skipping cycle")
		diag.CountCaptureFailure()

		return false
	}

	diag.CountCapture()

	return true
}

func (a *Agent) runAnalysis(ctx context.Context, now time.Time) {
	features := dsp.Extract(a.window)
	assessment := classify.Assess(features)
	record := telemetry.NewRecord(a.uptimeMs(now), features, assessment)

	a.lastAssessment = assessment
	a.lastAnalysis = now

	diag.CountAnalysis()
	diag.ObserveRecord(record)
	a.logStatus(record)

	if err := a.recorder.Record(ctx, &record); err != nil {
		logger.Warn().Err(err).Msg("Record store write failed")
	}
}

// maybeUpload runs when an upload is due. The gates are checked before any
// work: a disabled switch or a down link skips the cycle outright and leaves
// the timer alone, so the next allowed tick uploads immediately.
func (a *Agent) maybeUpload(ctx context.Context, now time.Time) {
	if a.uploader == nil || !a.panel.UploadEnabled() || !a.connected {
		if !a.skipNoted {
			logger.Debug().
				Bool("upload_enabled", a.panel.UploadEnabled()).
				Bool("connected", a.connected).
				Msg("Upload due but gated")
			diag.CountUpload(diag.UploadSkipped)
			a.skipNoted = true
		}

		return
	}
	a.skipNoted = false

	// A second, independent feature computation; the analysis cycle's
	// result is never reused.
	features := dsp.Extract(a.window)
	assessment := classify.Assess(features)
	record := telemetry.NewRecord(a.uptimeMs(now), features, assessment)
	payload := telemetry.EncodePayload(record, a.id.ID)

	uploadCtx, cancel := context.WithTimeout(ctx, a.cfg.UploadTimeout)
	defer cancel()

	a.lastUpload = now

	if err := a.uploader.Upload(uploadCtx, payload); err != nil {
		logger.Warn().Err(err).Msg("Upload failed")
		diag.CountUpload(diag.UploadFailed)

		return
	}

	logger.Debug().Int("bytes", len(payload)).Msg("Telemetry uploaded")
	diag.CountUpload(diag.UploadDelivered)
}

func (a *Agent) logStatus(record telemetry.FeatureRecord) {
	logger.Info().
		Float64("rms", record.RMSEnergy).
		Float64("centroid", record.SpectralCentroid).
		Float64("rolloff", record.SpectralRolloff).
		Float64("zcr", record.ZeroCrossingRate).
		Bool("compressor_on", record.CompressorOn).
		Float64("anomaly", record.AnomalyScore).
		Float64("temperature", record.TemperatureEstimateC).
		Float64("efficiency", record.EfficiencyScore).
		Msg("")
}

func (a *Agent) yield(ctx context.Context) bool {
	if a.cfg.TickYield == 0 {
		return ctx.Err() == nil
	}

	timer := a.clock.Timer(a.cfg.TickYield)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (a *Agent) publishStatus() {
	status := diag.Status{
		DeviceID:      a.id.ID,
		Category:      a.id.Category,
		UptimeMs:      a.uptimeMs(a.clock.Now()),
		Connected:     a.connected,
		UploadEnabled: a.panel.UploadEnabled(),
		CompressorOn:  a.lastAssessment.CompressorOn,
		AnomalyScore:  a.lastAssessment.AnomalyScore,
	}

	a.statusMu.Lock()
	a.status = status
	a.statusMu.Unlock()
}

// Status returns the latest published snapshot; safe for the diagnostics
// server's goroutine.
func (a *Agent) Status() diag.Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()

	return a.status
}

// Helper functions

func (a *Agent) uptimeMs(now time.Time) int64 {
	return now.Sub(a.startedAt).Milliseconds()
}
