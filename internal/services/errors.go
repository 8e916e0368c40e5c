// Package services defines the business logic for weather lookups. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer; upstream failures keep their upstream.ErrUpstream /
// upstream.ErrLocationNotFound identity through the service.
package services

import "errors"

var (
	// ErrEmptyLocation is returned when a lookup is requested without a
	// location string.
	ErrEmptyLocation = errors.New("location is empty")
)
