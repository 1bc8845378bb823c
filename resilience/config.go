package resilience

import (
	"fmt"
	"time"
)

// DefaultCircuitName is the circuit shared by every transsaction store access.
const DefaultCircuitName = "transsactionCircuit"

// Config describes a named circuit and the time budget of its guarded calls.
type Config struct {
	// Name identifies the circuit. Guards built with the same name share state.
	Name string

	// FailureRateThreshold is the failure percentage (0-100] at which a closed
	// circuit opens.
	FailureRateThreshold float64

	// SlidingWindowSize is the number of most recent outcomes the failure rate
	// is computed over.
	SlidingWindowSize int

	// MinimumNumberOfCalls is how many outcomes must be recorded before the
	// failure rate is evaluated. Must not exceed SlidingWindowSize.
	MinimumNumberOfCalls int

	// WaitDurationInOpenState is the cooldown before an open circuit admits
	// half-open trial calls.
	WaitDurationInOpenState time.Duration

	// PermittedCallsInHalfOpen is the number of trial calls admitted while
	// half-open.
	PermittedCallsInHalfOpen int

	// HalfOpenSuccessRatio is the share (0-1] of trial calls that must succeed
	// for the circuit to close again.
	HalfOpenSuccessRatio float64

	// MaxCallDuration bounds every guarded call.
	MaxCallDuration time.Duration
}

// DefaultConfig returns the circuit settings used by the transsaction service.
func DefaultConfig() Config {
	return Config{
		Name:                     DefaultCircuitName,
		FailureRateThreshold:     50,
		SlidingWindowSize:        10,
		MinimumNumberOfCalls:     10,
		WaitDurationInOpenState:  10 * time.Second,
		PermittedCallsInHalfOpen: 3,
		HalfOpenSuccessRatio:     1,
		MaxCallDuration:          2 * time.Second,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.Name == "" {
		return &ConfigError{Field: "Name", Message: "must not be empty"}
	}
	if c.FailureRateThreshold <= 0 || c.FailureRateThreshold > 100 {
		return &ConfigError{Field: "FailureRateThreshold", Message: "must be in (0, 100]"}
	}
	if c.SlidingWindowSize <= 0 {
		return &ConfigError{Field: "SlidingWindowSize", Message: "must be greater than 0"}
	}
	if c.MinimumNumberOfCalls <= 0 || c.MinimumNumberOfCalls > c.SlidingWindowSize {
		return &ConfigError{Field: "MinimumNumberOfCalls", Message: "must be in [1, SlidingWindowSize]"}
	}
	if c.WaitDurationInOpenState <= 0 {
		return &ConfigError{Field: "WaitDurationInOpenState", Message: "must be greater than 0"}
	}
	if c.PermittedCallsInHalfOpen <= 0 {
		return &ConfigError{Field: "PermittedCallsInHalfOpen", Message: "must be greater than 0"}
	}
	if c.HalfOpenSuccessRatio <= 0 || c.HalfOpenSuccessRatio > 1 {
		return &ConfigError{Field: "HalfOpenSuccessRatio", Message: "must be in (0, 1]"}
	}
	if c.MaxCallDuration <= 0 {
		return &ConfigError{Field: "MaxCallDuration", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("resilience config error in field %s: %s", e.Field, e.Message)
}
