package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData marks an indicator that has fewer bars than its window needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateInput marks inputs that make a formula undefined, such as zero total volume.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrAdapterFailure marks an error raised by a bar or sentiment data source.
	ErrAdapterFailure = errors.New("adapter failure")
)

// IndicatorError carries the indicator and window context of a soft failure.
type IndicatorError struct {
	Indicator IndicatorName
	Symbol    string
	Required  int
	Available int
	Err       error
}

func (e *IndicatorError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: %v (need %d, have %d)", e.Indicator, e.Err, e.Required, e.Available)
	}
	return fmt.Sprintf("%s %s: %v (need %d, have %d)", e.Symbol, e.Indicator, e.Err, e.Required, e.Available)
}

func (e *IndicatorError) Unwrap() error { return e.Err }

// AdapterError wraps a data source error so callers can match ErrAdapterFailure.
func AdapterError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrAdapterFailure, err)
}
