package wifi

import (
	"time"

	"acoustimon/internal/errors"
)

// Config binds the manager to one wireless interface and bounds the inline
// reconnect loop.
type Config struct {
	Interface     string
	SSID          string
	PSK           string
	ConnectCmd    string
	ProbeAttempts int
	ProbeDelay    time.Duration
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Interface == "" {
		return errFactory.WithData(ErrInvalidConfig, "interface must be set")
	}
	if c.ProbeAttempts <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "probe attempts must be positive")
	}
	if c.ProbeDelay <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "probe delay must be positive")
	}

	return nil
}
