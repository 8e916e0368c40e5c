// Package upstream contains the HTTP clients for the third-party services
// this application depends on: the Nominatim place-search API and the
// Open-Meteo forecast API. This file centralizes the error values callers
// branch on, so the service and handler layers can translate them into
// HTTP results consistently.
package upstream

import "errors"

var (
	// ErrUpstream indicates that an external API was unreachable, timed out,
	// or returned a malformed or unexpected payload. No retry is attempted
	// anywhere in this application.
	ErrUpstream = errors.New("upstream service error")

	// ErrLocationNotFound indicates that the place-search API returned no
	// candidates for the requested location string.
	ErrLocationNotFound = errors.New("location not found")
)
