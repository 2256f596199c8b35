package domain

import "errors"

var (
	ErrFormat              = errors.New("malformed record")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidFlightNumber = errors.New("flight number must be in ABC-123 format")
	ErrInvalidDuration     = errors.New("duration must be a positive number")
	ErrIncompatibleRoute   = errors.New("flights cannot be combined")
	ErrNotFound            = errors.New("airport not found")
	ErrUnknownAirport      = errors.New("unknown airport")
	ErrNoRouteFound        = errors.New("no direct or single-hop connecting flights")
	ErrNoReturnFlight      = errors.New("no return flight")
)
