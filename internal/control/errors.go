package control

import (
	"acoustimon/internal/errors"
)

const (
	ErrInitFailed      = errors.ErrorCode("control_gpio_init_failed")
	ErrPinNotFound     = errors.ErrorCode("control_pin_not_found")
	ErrPinConfigFailed = errors.ErrorCode("control_pin_config_failed")
)
