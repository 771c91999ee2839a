package control

import (
	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"acoustimon/internal/errors"
	"acoustimon/internal/logger"
)

// gpioButton is an active-low momentary button with the internal pull-up
// enabled; the line reads low while pressed.
type gpioButton struct {
	pin gpio.PinIO
}

func (b *gpioButton) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

type gpioLight struct {
	pin gpio.PinIO
}

func (l *gpioLight) Set(on bool) error {
	return l.pin.Out(gpio.Level(on))
}

// OpenPanel initializes the GPIO host and binds the button and both lights
// to the named pins.
func OpenPanel(buttonPin, uploadLEDPin, linkLEDPin string, clk clock.Clock) (*Panel, error) {
	errFactory := errors.New()

	if _, err := host.Init(); err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	button, err := openInput(buttonPin)
	if err != nil {
		return nil, err
	}

	uploadLight, err := openOutput(uploadLEDPin)
	if err != nil {
		return nil, err
	}

	linkLight, err := openOutput(linkLEDPin)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("button", buttonPin).
		Str("upload_led", uploadLEDPin).
		Str("link_led", linkLEDPin).
		Msg("Control surface bound")

	return NewPanel(&gpioButton{pin: button}, &gpioLight{pin: uploadLight}, &gpioLight{pin: linkLight}, clk), nil
}

func openInput(name string) (gpio.PinIO, error) {
	errFactory := errors.New()

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errFactory.WithData(ErrPinNotFound, name)
	}

	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, errFactory.Wrap(ErrPinConfigFailed, err).WithData(name)
	}

	return pin, nil
}

func openOutput(name string) (gpio.PinIO, error) {
	errFactory := errors.New()

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errFactory.WithData(ErrPinNotFound, name)
	}

	if err := pin.Out(gpio.Low); err != nil {
		return nil, errFactory.Wrap(ErrPinConfigFailed, err).WithData(name)
	}

	return pin, nil
}
