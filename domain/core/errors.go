package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Numeric domain errors
	ErrDivisionByZero    = errors.New("division by zero total weight")
	ErrNegativeWeight    = errors.New("negative or non-finite survey weight")
	ErrInvalidRiskDomain = errors.New("invalid risk domain")

	// Reference data errors
	ErrMissingReferenceData = errors.New("missing reference data")
	ErrRateUnavailable      = errors.New("exchange rate unavailable")
	ErrCPIUnavailable       = fmt.Errorf("%w: cpi", ErrMissingReferenceData)

	// Code table errors
	ErrUnknownCode = errors.New("unknown demographic code")
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// NewDivisionByZeroError names the aggregate that could not be computed.
func NewDivisionByZeroError(what string) error {
	return fmt.Errorf("%w: %s", ErrDivisionByZero, what)
}

// NewRiskDomainError describes which input broke the risk identity.
func NewRiskDomainError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRiskDomain, fmt.Sprintf(format, args...))
}

// NewMissingReferenceError reports an exhausted lookup on a reference table.
func NewMissingReferenceError(table, key string) error {
	return fmt.Errorf("%w: %s has no row for %s", ErrMissingReferenceData, table, key)
}

// NewUnknownCodeError reports a survey code with no label in its dimension.
func NewUnknownCodeError(dimension string, code int) error {
	return fmt.Errorf("%w: %s code %d", ErrUnknownCode, dimension, code)
}

// Error checking helpers
func IsDivisionByZero(err error) bool {
	return errors.Is(err, ErrDivisionByZero)
}

func IsInvalidRiskDomain(err error) bool {
	return errors.Is(err, ErrInvalidRiskDomain)
}

func IsMissingReferenceData(err error) bool {
	return errors.Is(err, ErrMissingReferenceData)
}

func IsRateUnavailable(err error) bool {
	return errors.Is(err, ErrRateUnavailable)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
