package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrUnknownResult = errors.New("metrics: unknown result label")
)

// ValidateResult reports whether result is one of the resolved counter labels.
func ValidateResult(result string) error {
	switch result {
	case ResultSuccess, ResultWrongInput, ResultTimeout:
		return nil
	default:
		return ErrUnknownResult
	}
}
