package carwash

import (
	"fmt"
	"time"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Scheduling defaults, overridable through configuration.
const (
	DefaultMinLeadTime       = 30 * time.Minute
	DefaultMaxAdvanceWindow  = 7 * 24 * time.Hour
	DefaultBucketCapacity    = 2
	DefaultAutoCompleteDelay = 5 * time.Minute
)

// SchedulePolicy bounds when standalone washes may be booked and how many
// fit into one hourly bucket per lot.
type SchedulePolicy struct {
	minLeadTime       time.Duration
	maxAdvanceWindow  time.Duration
	bucketCapacity    int
	autoCompleteDelay time.Duration
}

// NewSchedulePolicy validates and builds a scheduling policy.
func NewSchedulePolicy(minLeadTime, maxAdvanceWindow time.Duration, bucketCapacity int, autoCompleteDelay time.Duration) (*SchedulePolicy, error) {
	if minLeadTime < 0 {
		return nil, apperr.NewValidationError("minimum lead time cannot be negative")
	}
	if maxAdvanceWindow <= minLeadTime {
		return nil, apperr.NewValidationError("advance window must exceed the lead time")
	}
	if bucketCapacity <= 0 {
		return nil, apperr.NewValidationError("bucket capacity must be positive")
	}
	if autoCompleteDelay <= 0 {
		return nil, apperr.NewValidationError("auto-complete delay must be positive")
	}
	return &SchedulePolicy{
		minLeadTime:       minLeadTime,
		maxAdvanceWindow:  maxAdvanceWindow,
		bucketCapacity:    bucketCapacity,
		autoCompleteDelay: autoCompleteDelay,
	}, nil
}

// DefaultSchedulePolicy returns the policy with built-in defaults.
func DefaultSchedulePolicy() *SchedulePolicy {
	return &SchedulePolicy{
		minLeadTime:       DefaultMinLeadTime,
		maxAdvanceWindow:  DefaultMaxAdvanceWindow,
		bucketCapacity:    DefaultBucketCapacity,
		autoCompleteDelay: DefaultAutoCompleteDelay,
	}
}

func (p *SchedulePolicy) MinLeadTime() time.Duration       { return p.minLeadTime }
func (p *SchedulePolicy) MaxAdvanceWindow() time.Duration  { return p.maxAdvanceWindow }
func (p *SchedulePolicy) BucketCapacity() int              { return p.bucketCapacity }
func (p *SchedulePolicy) AutoCompleteDelay() time.Duration { return p.autoCompleteDelay }

// ValidateWindow checks that the requested time falls inside the
// bookable window relative to now.
func (p *SchedulePolicy) ValidateWindow(now, scheduledAt time.Time) error {
	if scheduledAt.Before(now.Add(p.minLeadTime)) {
		return apperr.NewValidationError(fmt.Sprintf("wash must be scheduled at least %s in advance", p.minLeadTime))
	}
	if scheduledAt.After(now.Add(p.maxAdvanceWindow)) {
		return apperr.NewValidationError(fmt.Sprintf("wash cannot be scheduled more than %s ahead", p.maxAdvanceWindow))
	}
	return nil
}

// BucketStart returns the hourly capacity bucket the given time falls in.
func BucketStart(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// HasCapacity reports whether another wash fits into a bucket with the
// given existing occupancy.
func (p *SchedulePolicy) HasCapacity(occupied int64) bool {
	return occupied < int64(p.bucketCapacity)
}

// ConflictError builds the scheduling conflict carrying the next free
// bucket hint surfaced to clients.
func (p *SchedulePolicy) ConflictError(nextFree time.Time) error {
	return apperr.NewConflictError(fmt.Sprintf(
		"selected hour is fully booked, next free slot starts at %s",
		nextFree.UTC().Format(time.RFC3339),
	))
}
