package booking

import (
	"time"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Policy holds the tunable rules of the booking lifecycle. Values come
// from configuration; the zero value is unusable, use NewPolicy.
type Policy struct {
	duration      time.Duration
	renewalFactor float64
}

// DefaultDuration is the parking window applied when configuration does
// not override it.
const DefaultDuration = 10 * time.Minute

// DefaultRenewalFactor is the fraction of the original price charged
// when a booking is renewed.
const DefaultRenewalFactor = 0.5

// NewPolicy validates and builds a booking policy.
func NewPolicy(duration time.Duration, renewalFactor float64) (*Policy, error) {
	if duration <= 0 {
		return nil, apperr.NewValidationError("booking duration must be positive")
	}
	if renewalFactor <= 0 || renewalFactor > 1 {
		return nil, apperr.NewValidationError("renewal factor must be in (0, 1]")
	}
	return &Policy{duration: duration, renewalFactor: renewalFactor}, nil
}

// DefaultPolicy returns the policy with built-in defaults.
func DefaultPolicy() *Policy {
	return &Policy{duration: DefaultDuration, renewalFactor: DefaultRenewalFactor}
}

// Duration returns the length of a parking window.
func (p *Policy) Duration() time.Duration { return p.duration }

// RenewalFactor returns the renewal price fraction.
func (p *Policy) RenewalFactor() float64 { return p.renewalFactor }

// RenewalPriceCents computes the discounted price of a renewed booking,
// rounded to the nearest cent.
func (p *Policy) RenewalPriceCents(originalPriceCents int64) int64 {
	return int64(float64(originalPriceCents)*p.renewalFactor + 0.5)
}
