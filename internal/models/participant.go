package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a participant's authority on a trip.
// Roles are totally ordered: ORGANIZER > MEMBER > GUEST.
type Role string

const (
	RoleOrganizer Role = "ORGANIZER"
	RoleMember    Role = "MEMBER"
	RoleGuest     Role = "GUEST"
)

// Rank returns the position of the role in the total order.
// Unknown roles rank below GUEST.
func (r Role) Rank() int {
	switch r {
	case RoleOrganizer:
		return 3
	case RoleMember:
		return 2
	case RoleGuest:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is min or higher.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// ParseRole converts a label such as "member" to a Role.
func ParseRole(label string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(label)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role: %q", label)
	}
	return role, nil
}

// InvitationStatus is the lifecycle state of a participant record.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "PENDING"
	StatusAccepted InvitationStatus = "ACCEPTED"
	StatusDeclined InvitationStatus = "DECLINED"
)

// Valid reports whether s is one of the known statuses.
func (s InvitationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// ParseInvitationStatus converts a label such as "accepted" to an InvitationStatus.
func ParseInvitationStatus(label string) (InvitationStatus, error) {
	status := InvitationStatus(strings.ToUpper(strings.TrimSpace(label)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown invitation status: %q", label)
	}
	return status, nil
}

// Participant represents a user's membership of a trip.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// TripID is the trip this participant belongs to.
	TripID string

	// UserID references the invited user.
	// Empty when the invitation was addressed to an email only.
	UserID string

	// Email is the address the invitation was sent to.
	// It is only used to resolve identity; display data comes from the user directory.
	Email string

	// Role controls what the participant may do on the trip.
	Role Role

	// Status is the invitation lifecycle state.
	Status InvitationStatus

	// CreatedAt is when the participant was first invited.
	CreatedAt time.Time

	// JoinedAt is set when the invitation is accepted.
	JoinedAt *time.Time

	// UpdatedAt is maintained by the store on every save.
	UpdatedAt time.Time
}

// IsAccepted reports whether the participant has joined the trip.
func (p *Participant) IsAccepted() bool {
	return p.Status == StatusAccepted
}
