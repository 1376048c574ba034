package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInsufficientData is matched by every InsufficientDataError
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoUniverse means the symbol universe could not be listed.
	// This is the only batch-level failure.
	ErrNoUniverse = errors.New("symbol universe unavailable")
)

// DataSourceError covers transport failures, timeouts, non-success statuses
// and provider-reported errors.
type DataSourceError struct {
	Op      string // endpoint path, e.g. "ratios"
	Symbol  string
	Message string
	Err     error
}

func (e *DataSourceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Symbol != "" {
		return fmt.Sprintf("data source %s [%s]: %s", e.Op, e.Symbol, msg)
	}
	return fmt.Sprintf("data source %s: %s", e.Op, msg)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// InsufficientDataError is returned when a series has fewer periods than required
type InsufficientDataError struct {
	Series string
	Need   int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s has %d periods, need %d", e.Series, e.Got, e.Need)
}

// Is makes errors.Is(err, ErrInsufficientData) true
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// ValidationError marks a required numeric field as missing or out of range
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DropReason classifies why a symbol left a batch pool
func DropReason(err error) string {
	var dsErr *DataSourceError
	var valErr *ValidationError
	switch {
	case errors.As(err, &dsErr):
		return "data_source"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.As(err, &valErr):
		return "validation"
	default:
		return "other"
	}
}
