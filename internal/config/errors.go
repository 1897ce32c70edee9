package config

import (
	"errors"
	"fmt"

	"github.com/dshills/textnav/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownSetting indicates a section or setting textnav does not know.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a value outside its allowed range or set.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError is returned when a configuration file is not valid TOML.
type ParseError = loader.ParseError

// ValidationError describes a rejected setting.
type ValidationError struct {
	// Path is the setting path, e.g. "units.page_lines".
	Path string
	// Message describes the problem.
	Message string
	// Value is the rejected value.
	Value any
	// Code categorizes the failure.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Unwrap maps the code to the matching sentinel error.
func (e *ValidationError) Unwrap() error {
	switch e.Code {
	case ErrCodeUnknownSetting:
		return ErrUnknownSetting
	case ErrCodeTypeMismatch:
		return ErrTypeMismatch
	default:
		return ErrValidationFailed
	}
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeUnknownSetting indicates an unrecognized setting path.
	ErrCodeUnknownSetting ValidationErrorCode = iota
	// ErrCodeTypeMismatch indicates the value type is wrong.
	ErrCodeTypeMismatch
	// ErrCodeOutOfRange indicates a numeric value is out of range.
	ErrCodeOutOfRange
	// ErrCodeInvalidEnum indicates the value is not one of the allowed names.
	ErrCodeInvalidEnum
)

// String returns a human-readable name for the error code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeUnknownSetting:
		return "unknown_setting"
	case ErrCodeTypeMismatch:
		return "type_mismatch"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	default:
		return "unknown"
	}
}
