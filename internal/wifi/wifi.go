// Package wifi keeps the agent's network link usable. The manager trusts the
// kernel's live link status ahead of any internal state, re-evaluates it once
// per scheduler tick, and restores a lost link inline with a bounded number
// of connect polls rather than blocking indefinitely.
package wifi

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"acoustimon/internal/logger"
)

// link abstracts the OS view of the wireless interface so the manager can be
// tested without hardware.
type link interface {
	Status() (bool, error)
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Manager is the single owner of connectivity state. Only the scheduler
// calls into it; status is queried live and never cached across ticks.
type Manager struct {
	link     link
	clock    clock.Clock
	attempts int
	delay    time.Duration
	wasUp    bool
}

func New(cfg Config, clk clock.Clock) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Manager{
		link:     newSysfsLink(cfg),
		clock:    clk,
		attempts: cfg.ProbeAttempts,
		delay:    cfg.ProbeDelay,
	}, nil
}

// Connected reports the live link status. A status read failure counts as
// disconnected.
func (m *Manager) Connected() bool {
	up, err := m.link.Status()
	if err != nil {
		logger.Debug().Err(err).Msg("Link status query failed")

		return false
	}

	return up
}

// Ensure re-evaluates the link and, when it is down, runs one bounded
// reconnect cycle before returning. The return value is the link state at
// the end of the call and is only valid for the current tick.
func (m *Manager) Ensure(ctx context.Context) bool {
	if m.Connected() {
		if !m.wasUp {
			logger.Info().Msg("Network link up")
		}
		m.wasUp = true

		return true
	}

	if m.wasUp {
		logger.Warn().Msg("Network link lost")
	}
	m.wasUp = false

	return m.reconnect(ctx)
}

// ForceReconnect tears the link down and runs a full reconnect cycle,
// regardless of the current status.
func (m *Manager) ForceReconnect(ctx context.Context) bool {
	logger.Info().Msg("Forcing network reconnect")

	if err := m.link.Disconnect(ctx); err != nil {
		logger.Warn().Err(err).Msg("Disconnect failed")
	}
	m.wasUp = false

	return m.reconnect(ctx)
}

func (m *Manager) reconnect(ctx context.Context) bool {
	logger.Info().Int("max_attempts", m.attempts).Msg("Reconnecting network")

	if err := m.link.Connect(ctx); err != nil {
		logger.Warn().Err(err).Msg("Connect attempt failed")
	}

	for i := 0; i < m.attempts; i++ {
		if !m.sleep(ctx) {
			return false
		}

		if m.Connected() {
			m.wasUp = true
			logger.Info().Int("attempts", i+1).Msg("Network reconnected")

			return true
		}
	}

	logger.Warn().Msg("Reconnect attempts exhausted")

	return false
}

func (m *Manager) sleep(ctx context.Context) bool {
	timer := m.clock.Timer(m.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
