package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"

	"acoustimon/internal/agent"
	"acoustimon/internal/audio"
	"acoustimon/internal/config"
	"acoustimon/internal/control"
	"acoustimon/internal/diag"
	"acoustimon/internal/identity"
	"acoustimon/internal/logger"
	"acoustimon/internal/pid"
	"acoustimon/internal/store"
	"acoustimon/internal/telemetry"
	"acoustimon/internal/wifi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to acquire PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	id := identity.New(cfg.Device.IDPrefix, cfg.Device.Category)
	clk := clock.New()

	// Peripheral initialization failure is the one fatal path: the agent
	// must not enter the loop with an unusable capture device.
	device, err := audio.New(cfg.SampleRate, cfg.WindowSamples())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize capture device")
	}
	defer closeQuietly("capture device", device.Close)

	if err := device.SelfCheck(); err != nil {
		logger.Fatal().Err(err).Msg("Capture self-check failed")
	}

	network, err := wifi.New(wifi.Config{
		Interface:     cfg.Network.Interface,
		SSID:          cfg.Network.SSID,
		PSK:           cfg.Network.PSK,
		ConnectCmd:    cfg.Network.ConnectCmd,
		ProbeAttempts: cfg.Network.ProbeAttempts,
		ProbeDelay:    cfg.ProbeDelay(),
	}, clk)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize network manager")
	}

	panel, err := control.OpenPanel(cfg.Control.ButtonPin, cfg.Control.UploadLEDPin, cfg.Control.LinkLEDPin, clk)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize control surface")
	}

	uploader, err := newUploader(ctx, cfg, id)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry uploader")
	}
	if uploader != nil {
		defer closeQuietly("uploader", uploader.Close)
	}

	storeCfg := store.DefaultConfig()
	storeCfg.Enabled = cfg.Store.Enabled
	if cfg.Store.DBPath != "" {
		storeCfg.DBPath = cfg.Store.DBPath
	}
	recorder, err := store.NewService(storeCfg, id.ID)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize record store")
	}
	defer closeQuietly("record store", recorder.Close)

	ag, err := agent.New(agent.Config{
		WindowSamples:    cfg.WindowSamples(),
		AnalysisInterval: cfg.AnalysisInterval(),
		UploadInterval:   cfg.UploadInterval(),
		UploadTimeout:    cfg.UploadTimeout(),
		TickYield:        cfg.TickYield(),
	}, agent.Deps{
		Source:   device,
		Network:  network,
		Panel:    panel,
		Uploader: uploader,
		Recorder: recorder,
		Identity: id,
		Clock:    clk,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize agent")
	}

	if cfg.Diag.Listen != "" {
		server := diag.NewServer(cfg.Diag.Listen, ag.Status)
		server.Start()
		defer closeQuietly("diagnostics server", server.Close)
	}

	if err := ag.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

// newUploader builds the configured transport, or nil when telemetry is
// disabled; the scheduler treats a nil uploader as a gated upload.
func newUploader(ctx context.Context, cfg *config.Config, id identity.Identity) (telemetry.Uploader, error) {
	if !cfg.Telemetry.Enabled {
		logger.Info().Msg("Telemetry disabled, uploads will be skipped")

		return nil, nil
	}

	if cfg.Telemetry.Transport == "mqtt" {
		return telemetry.NewMQTTUploader(ctx, cfg.Telemetry.MQTTBroker, cfg.Telemetry.MQTTTopic, id)
	}

	return telemetry.NewHTTPUploader(cfg.Telemetry.Endpoint, id, cfg.UploadTimeout())
}

// Helper functions

func closeQuietly(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn().Err(err).Msgf("Failed to close %s", name)
	}
}
