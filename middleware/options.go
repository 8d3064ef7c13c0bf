package middleware

import (
	"net/http"
)

// Reporter receives every request to an undocumented operation.
type Reporter func(r *http.Request, m *Mismatch)

// Options configures middleware behavior.
type Options struct {
	// Enforce answers undocumented operations with 404 instead of passing them on.
	Enforce bool
	// Reporter is called for every mismatch. Mismatches are logged either way.
	Reporter Reporter
	// Skip excludes requests from checking, e.g. health checks.
	Skip func(r *http.Request) bool
}

// DefaultOptions reports mismatches without rejecting requests.
func DefaultOptions() *Options {
	return &Options{}
}
