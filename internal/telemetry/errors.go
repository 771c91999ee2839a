package telemetry

import (
	"acoustimon/internal/errors"
)

const (
	ErrInvalidEndpoint = errors.ErrorCode("telemetry_invalid_endpoint")
	ErrUploadFailed    = errors.ErrorCode("telemetry_upload_failed")
	ErrBadStatus       = errors.ErrorCode("telemetry_bad_status")
	ErrConnectFailed   = errors.ErrorCode("telemetry_connect_failed")
	ErrShutdownFailed  = errors.ErrorCode("telemetry_shutdown_failed")
)
