package entity

import "time"

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// IsDecision reports whether s is a valid answer to an invitation.
func (s InvitationStatus) IsDecision() bool {
	return s == InvitationStatusAccepted || s == InvitationStatusDeclined
}

type InvitationKind string

const (
	// InvitationKindActionable is the one invitation per member that takes part in consensus.
	InvitationKindActionable InvitationKind = "actionable"
	// InvitationKindInformational records are activity history, created already resolved.
	InvitationKindInformational InvitationKind = "informational"
)

type Invitation struct {
	ID          string           `json:"id"`
	BookingID   string           `json:"booking_id"`
	RecipientID string           `json:"recipient_id"`
	Kind        InvitationKind   `json:"kind"`
	Status      InvitationStatus `json:"status"`
	Message     string           `json:"message"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (i Invitation) IsActionable() bool {
	return i.Kind == InvitationKindActionable
}

func (i Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

func (i Invitation) Clone() Invitation {
	out := i
	if i.RespondedAt != nil {
		t := *i.RespondedAt
		out.RespondedAt = &t
	}
	return out
}
