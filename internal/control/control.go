// Package control decodes the agent's one push-button into user intents and
// drives the two status lights. A press is measured from falling edge to
// rising edge; the held duration selects the intent. The 2000 to 3000 ms
// band is a dead zone and decodes to no action.
package control

import (
	"time"

	"github.com/benbjohnson/clock"

	"acoustimon/internal/logger"
)

const (
	shortPressMax = 2000 * time.Millisecond
	longPressMin  = 3000 * time.Millisecond
)

// Intent is the user action decoded from one button release.
type Intent int

const (
	IntentNone Intent = iota
	IntentToggleUpload
	IntentForceReconnect
)

// Button reports whether the physical button is currently pressed.
type Button interface {
	Pressed() bool
}

// StatusLight drives one level output.
type StatusLight interface {
	Set(on bool) error
}

// Debouncer turns a sampled button level into at most one intent per
// release. It keeps only the last observed level and the press timestamp.
type Debouncer struct {
	clock     clock.Clock
	pressed   bool
	pressedAt time.Time
}

func NewDebouncer(clk clock.Clock) *Debouncer {
	return &Debouncer{clock: clk}
}

// Observe feeds one tick's button level and returns the intent decoded from
// a release observed this tick, if any.
func (d *Debouncer) Observe(pressed bool) Intent {
	switch {
	case pressed && !d.pressed:
		d.pressed = true
		d.pressedAt = d.clock.Now()
	case !pressed && d.pressed:
		d.pressed = false

		return intentFor(d.clock.Since(d.pressedAt))
	}

	return IntentNone
}

// Panel owns the control surface state: the debouncer, the uploadEnabled
// flag, and the two lights. Only the scheduler calls into it.
type Panel struct {
	button        Button
	uploadLight   StatusLight
	linkLight     StatusLight
	debounce      *Debouncer
	uploadEnabled bool
}

func NewPanel(button Button, uploadLight, linkLight StatusLight, clk clock.Clock) *Panel {
	return &Panel{
		button:        button,
		uploadLight:   uploadLight,
		linkLight:     linkLight,
		debounce:      NewDebouncer(clk),
		uploadEnabled: true,
	}
}

// Poll samples the button once. A short-press toggle is applied locally; any
// other intent is returned for the scheduler to carry out.
func (p *Panel) Poll() Intent {
	intent := p.debounce.Observe(p.button.Pressed())
	if intent == IntentToggleUpload {
		p.uploadEnabled = !p.uploadEnabled
		logger.Info().Bool("upload_enabled", p.uploadEnabled).Msg("Upload toggled by button")
	}

	return intent
}

// UploadEnabled reports the user-facing upload switch.
func (p *Panel) UploadEnabled() bool {
	return p.uploadEnabled
}

// RefreshLights re-asserts both level outputs for the current tick.
func (p *Panel) RefreshLights(connected bool) {
	if err := p.uploadLight.Set(p.uploadEnabled); err != nil {
		logger.Debug().Err(err).Msg("Upload light update failed")
	}
	if err := p.linkLight.Set(connected); err != nil {
		logger.Debug().Err(err).Msg("Link light update failed")
	}
}

// Helper functions

func intentFor(held time.Duration) Intent {
	switch {
	case held < shortPressMax:
		return IntentToggleUpload
	case held >= longPressMin:
		return IntentForceReconnect
	default:
		return IntentNone
	}
}
