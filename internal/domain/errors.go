package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSelection means a required selector (customer, brand,
	// supplier, location, SKUs) was not supplied. It is never defaulted.
	ErrMissingSelection = errors.New("missing required selection")

	// ErrUpstreamUnavailable means an external system (warehouse, order
	// history, object storage) failed or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrForecastUnavailable means an upstream system the forecast depends on
	// failed, so no trustworthy suggestion can be produced.
	ErrForecastUnavailable = fmt.Errorf("forecast unavailable: %w", ErrUpstreamUnavailable)

	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)
