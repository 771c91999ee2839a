package wifi

import (
	"acoustimon/internal/errors"
)

const (
	ErrInvalidConfig    = errors.ErrorCode("wifi_invalid_config")
	ErrStatusFailed     = errors.ErrorCode("wifi_status_failed")
	ErrConnectFailed    = errors.ErrorCode("wifi_connect_failed")
	ErrDisconnectFailed = errors.ErrorCode("wifi_disconnect_failed")
)
