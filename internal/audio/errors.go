package audio

import (
	"acoustimon/internal/errors"
)

const (
	// Initialization and Lifecycle Errors
	ErrInitFailed        = errors.ErrorCode("audio_init_failed")
	ErrStreamOpenFailed  = errors.ErrorCode("audio_stream_open_failed")
	ErrStreamStartFailed = errors.ErrorCode("audio_stream_start_failed")
	ErrShutdownFailed    = errors.ErrorCode("audio_shutdown_failed")

	// Capture Errors
	ErrCaptureFailed      = errors.ErrorCode("audio_capture_failed")
	ErrWindowSizeMismatch = errors.ErrorCode("audio_window_size_mismatch")
)
