// Package service implements the registration and check-in business rules,
// orchestrating the repository layer on behalf of the HTTP handlers.
// Request contracts are validated before they reach this package.
package service

import "time"

// Clock returns the current time.
type Clock func() time.Time

// now normalises clock readings to UTC at microsecond precision, the
// resolution every store keeps.
func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Microsecond)
	}
	return c().UTC().Truncate(time.Microsecond)
}
