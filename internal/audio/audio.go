// Package audio binds the sample-window capture contract to a PortAudio
// input stream. The device delivers exactly one full window per Capture call
// and blocks the caller for up to one window duration while filling it.
package audio

import (
	"github.com/gordonklaus/portaudio"

	"acoustimon/internal/errors"
	"acoustimon/internal/logger"
)

// stream abstracts the PortAudio stream operations used by the device.
type stream interface {
	Start() error
	Read() error
	Stop() error
	Close() error
}

// Device is a PortAudio-backed capture source. The stream is bound to the
// device's own buffer at open time; Capture copies into the caller's window
// only after a fully successful read.
type Device struct {
	stream     stream
	buf        []int16
	sampleRate int
}

// New opens the default input device for one channel of int16 at the given
// sample rate. Failure here is unrecoverable and should halt startup.
func New(sampleRate, windowSamples int) (*Device, error) {
	errFactory := errors.New()

	if err := portaudio.Initialize(); err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	d := &Device{
		buf:        make([]int16, windowSamples),
		sampleRate: sampleRate,
	}

	if err := d.initialize(); err != nil {
		if termErr := portaudio.Terminate(); termErr != nil {
			logger.Warn().Err(termErr).Msg("Failed to terminate audio host after init failure")
		}

		return nil, err
	}

	return d, nil
}

func (d *Device) initialize() error {
	errFactory := errors.New()

	if info, err := portaudio.DefaultInputDevice(); err == nil {
		logger.Info().Msgf("Detected capture device: %v", info.Name)
	} else {
		logger.Warn().Msgf("Failed to query capture device: %v", err)
	}

	s, err := portaudio.OpenDefaultStream(1, 0, float64(d.sampleRate), len(d.buf), d.buf)
	if err != nil {
		return errFactory.Wrap(ErrStreamOpenFailed, err)
	}
	d.stream = s

	if err := s.Start(); err != nil {
		if closeErr := s.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close audio stream after start failure")
		}

		return errFactory.Wrap(ErrStreamStartFailed, err)
	}

	return nil
}

// Capture blocks until one full window has been read, then copies it into
// window. On error the window is left untouched and must be treated as
// unavailable for this cycle.
func (d *Device) Capture(window SampleWindow) error {
	errFactory := errors.New()

	if len(window) != len(d.buf) {
		return errFactory.WithData(ErrWindowSizeMismatch, len(window))
	}

	if err := d.stream.Read(); err != nil {
		return errFactory.Wrap(ErrCaptureFailed, err)
	}

	copy(window, d.buf)

	return nil
}

// SelfCheck performs one throwaway capture to prove the path delivers
// samples. Intended for boot, before entering the main loop.
func (d *Device) SelfCheck() error {
	errFactory := errors.New()

	if err := d.stream.Read(); err != nil {
		return errFactory.Wrap(ErrCaptureFailed, err).WithMessage("Capture self-check failed")
	}

	return nil
}

// Close stops the stream and releases the audio host.
func (d *Device) Close() error {
	errFactory := errors.New()

	if d.stream != nil {
		if err := d.stream.Stop(); err != nil {
			logger.Warn().Err(err).Msg("Failed to stop audio stream")
		}
		if err := d.stream.Close(); err != nil {
			return errFactory.Wrap(ErrShutdownFailed, err)
		}
		d.stream = nil
	}

	if err := portaudio.Terminate(); err != nil {
		return errFactory.Wrap(ErrShutdownFailed, err)
	}

	return nil
}
