package auth

import "github.com/google/uuid"

// Actor is the resolved identity passed explicitly into every core
// operation, instead of threading the request user ambiently.
type Actor struct {
	AccountID uuid.UUID
	Role      Role
}

// IsAdmin returns true for administrator actors.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsOwner returns true for lot-owner actors.
func (a Actor) IsOwner() bool { return a.Role == RoleOwner }

// IsUser returns true for regular end-user actors.
func (a Actor) IsUser() bool { return a.Role == RoleUser }
