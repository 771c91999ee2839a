// Package config loads agent configuration from /etc/acoustimon.toml (or the
// file named by ACOUSTIMON_CONFIG), environment variables prefixed with
// ACOUSTIMON, and command-line flags, in increasing order of precedence.
// Configuration is read once at boot; there is no live reload.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"acoustimon/internal/errors"
)

const (
	DefaultLogLevel = "info"

	defaultSampleRate         = 16000
	defaultWindowMs           = 1000
	defaultAnalysisIntervalMs = 5000
	defaultUploadIntervalMs   = 10000
	defaultTickYieldMs        = 10
	defaultUploadTimeoutMs    = 5000
	defaultProbeAttempts      = 20
	defaultProbeDelayMs       = 500
)

type Config struct {
	LogLevel           string `mapstructure:"log_level"`
	SampleRate         int    `mapstructure:"sample_rate"`
	WindowMs           int    `mapstructure:"window_ms"`
	AnalysisIntervalMs int    `mapstructure:"analysis_interval_ms"`
	UploadIntervalMs   int    `mapstructure:"upload_interval_ms"`
	TickYieldMs        int    `mapstructure:"tick_yield_ms"`

	Telemetry Telemetry `mapstructure:"telemetry"`
	Device    Device    `mapstructure:"device"`
	Network   Network   `mapstructure:"network"`
	Control   Control   `mapstructure:"control"`
	Store     Store     `mapstructure:"store"`
	Diag      Diag      `mapstructure:"diag"`
}

type Telemetry struct {
	Enabled    bool   `mapstructure:"enabled"`
	Transport  string `mapstructure:"transport"`
	Endpoint   string `mapstructure:"endpoint"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
	MQTTBroker string `mapstructure:"mqtt_broker"`
	MQTTTopic  string `mapstructure:"mqtt_topic"`
}

type Device struct {
	IDPrefix string `mapstructure:"id_prefix"`
	Category string `mapstructure:"category"`
}

type Network struct {
	Interface     string `mapstructure:"interface"`
	SSID          string `mapstructure:"ssid"`
	PSK           string `mapstructure:"psk"`
	ConnectCmd    string `mapstructure:"connect_cmd"`
	ProbeAttempts int    `mapstructure:"probe_attempts"`
	ProbeDelayMs  int    `mapstructure:"probe_delay_ms"`
}

type Control struct {
	ButtonPin    string `mapstructure:"button_pin"`
	UploadLEDPin string `mapstructure:"upload_led_pin"`
	LinkLEDPin   string `mapstructure:"link_led_pin"`
}

type Store struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

type Diag struct {
	Listen string `mapstructure:"listen"`
}

// Load reads all configuration sources and validates the result.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("acoustimon", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Int("sample-rate", defaultSampleRate, "Capture sample rate in Hz")
	flags.Int("window-ms", defaultWindowMs, "Analysis window duration in milliseconds")
	flags.Int("analysis-interval-ms", defaultAnalysisIntervalMs, "Interval between feature analyses")
	flags.Int("upload-interval-ms", defaultUploadIntervalMs, "Interval between telemetry uploads")
	flags.String("endpoint", "", "Telemetry ingestion endpoint URL")
	flags.String("interface", "", "Network interface to monitor")
	flags.String("diag-listen", "", "Diagnostics HTTP listen address (empty disables)")
	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ACOUSTIMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("ACOUSTIMON_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("acoustimon")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).WithMessage("Failed to read config file")
		}
	}

	// Flags changed on the command line override file and environment.
	flags.Visit(func(f *pflag.Flag) {
		v.Set(flagKey(f.Name), f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func flagKey(name string) string {
	switch name {
	case "endpoint":
		return "telemetry.endpoint"
	case "interface":
		return "network.interface"
	case "diag-listen":
		return "diag.listen"
	default:
		return strings.ReplaceAll(name, "-", "_")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("sample_rate", defaultSampleRate)
	v.SetDefault("window_ms", defaultWindowMs)
	v.SetDefault("analysis_interval_ms", defaultAnalysisIntervalMs)
	v.SetDefault("upload_interval_ms", defaultUploadIntervalMs)
	v.SetDefault("tick_yield_ms", defaultTickYieldMs)

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.transport", "http")
	v.SetDefault("telemetry.endpoint", "http://ingest.local:8080/api/telemetry")
	v.SetDefault("telemetry.timeout_ms", defaultUploadTimeoutMs)
	v.SetDefault("telemetry.mqtt_broker", "")
	v.SetDefault("telemetry.mqtt_topic", "acoustimon/features")

	v.SetDefault("device.id_prefix", "compressor-")
	v.SetDefault("device.category", "compressor-monitor")

	v.SetDefault("network.interface", "wlan0")
	v.SetDefault("network.ssid", "")
	v.SetDefault("network.psk", "")
	v.SetDefault("network.connect_cmd", "")
	v.SetDefault("network.probe_attempts", defaultProbeAttempts)
	v.SetDefault("network.probe_delay_ms", defaultProbeDelayMs)

	v.SetDefault("control.button_pin", "GPIO17")
	v.SetDefault("control.upload_led_pin", "GPIO22")
	v.SetDefault("control.link_led_pin", "GPIO23")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.db_path", "/var/lib/acoustimon/records.db")

	v.SetDefault("diag.listen", "")
}

// Validate rejects configurations the agent cannot run with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.SampleRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "sample_rate must be positive")
	}
	if c.WindowMs <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "window_ms must be positive")
	}
	if c.AnalysisIntervalMs <= 0 || c.UploadIntervalMs <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "analysis and upload intervals must be positive")
	}
	if c.TickYieldMs < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "tick_yield_ms must not be negative")
	}

	if c.Telemetry.Enabled {
		switch c.Telemetry.Transport {
		case "http":
			if c.Telemetry.Endpoint == "" {
				return errFactory.WithData(errors.ErrInvalidConfig, "telemetry.endpoint required for http transport")
			}
		case "mqtt":
			if c.Telemetry.MQTTBroker == "" {
				return errFactory.WithData(errors.ErrInvalidConfig, "telemetry.mqtt_broker required for mqtt transport")
			}
		default:
			return errFactory.WithData(errors.ErrInvalidConfig, "telemetry.transport must be http or mqtt")
		}
	}

	if c.Network.ProbeAttempts <= 0 || c.Network.ProbeDelayMs <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "network probe attempts and delay must be positive")
	}

	if c.Store.Enabled && c.Store.DBPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "store.db_path required when store is enabled")
	}

	return nil
}

// WindowSamples returns the fixed analysis window length in samples.
func (c *Config) WindowSamples() int {
	return c.SampleRate * c.WindowMs / 1000
}

func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

func (c *Config) AnalysisInterval() time.Duration {
	return time.Duration(c.AnalysisIntervalMs) * time.Millisecond
}

func (c *Config) UploadInterval() time.Duration {
	return time.Duration(c.UploadIntervalMs) * time.Millisecond
}

func (c *Config) TickYield() time.Duration {
	return time.Duration(c.TickYieldMs) * time.Millisecond
}

func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Telemetry.TimeoutMs) * time.Millisecond
}

func (c *Config) ProbeDelay() time.Duration {
	return time.Duration(c.Network.ProbeDelayMs) * time.Millisecond
}
