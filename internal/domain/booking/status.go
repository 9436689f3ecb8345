package booking

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a parking reservation.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// validTransitions defines the booking state machine. Completed and
// cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusBooked:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// legacyAliases maps status spellings written by earlier releases to
// their canonical lowercase form. They are normalized on read and
// never written back.
var legacyAliases = map[string]Status{
	"active":             StatusBooked,
	"scheduled":          StatusBooked,
	"cancelled_by_admin": StatusCancelled,
}

// IsValid returns true if the status is a recognized canonical status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if the transition to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0 && s.IsValid()
}

// String returns the string representation of the status.
func (s Status) String() string { return string(s) }

// ParseStatus normalizes a stored status string to its canonical form.
// Legacy uppercase and alternate spellings are accepted case-insensitively.
func ParseStatus(raw string) (Status, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := legacyAliases[lowered]; ok {
		return alias, nil
	}
	status := Status(lowered)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", raw)
	}
	return status, nil
}
