// Package consensus holds the pure rules that derive a booking's status
// from its members and their actionable invitations.
package consensus

import (
	"quorum-booking/core/constants"
	"quorum-booking/modules/booking/entity"
)

// Qualifying returns the actionable invitations addressed to current members.
// Informational records and invitations of members who already left are skipped.
func Qualifying(b entity.Booking, invitations []entity.Invitation) []entity.Invitation {
	out := make([]entity.Invitation, 0, len(b.Members))
	for _, inv := range invitations {
		if inv.BookingID != b.ID || !inv.IsActionable() {
			continue
		}
		if b.HasMember(inv.RecipientID) {
			out = append(out, inv)
		}
	}
	return out
}

// QuorumReached reports whether every current member holds an accepted invitation.
func QuorumReached(b entity.Booking, invitations []entity.Invitation) bool {
	if len(b.Members) == 0 {
		return false
	}
	qualifying := Qualifying(b, invitations)
	if len(qualifying) != len(b.Members) {
		return false
	}
	for _, inv := range qualifying {
		if inv.Status != entity.InvitationStatusAccepted {
			return false
		}
	}
	return true
}

// BelowMinimum reports whether the group has shrunk under the minimum size.
func BelowMinimum(b entity.Booking) bool {
	return len(b.Members) < constants.MinBookingMembers
}

// Evaluate derives the status a booking should have given its invitations.
// Cancelled is terminal and confirmed never reverts to pending.
func Evaluate(b entity.Booking, invitations []entity.Invitation) entity.BookingStatus {
	switch {
	case b.IsCancelled():
		return entity.BookingStatusCancelled
	case BelowMinimum(b):
		return entity.BookingStatusCancelled
	case QuorumReached(b, invitations):
		return entity.BookingStatusConfirmed
	}
	return b.Status
}

// AfterRemoval is the status once a member has been taken out of b.Members.
// Only the size rule applies; a removal never confirms a booking.
func AfterRemoval(b entity.Booking) entity.BookingStatus {
	if b.IsCancelled() || BelowMinimum(b) {
		return entity.BookingStatusCancelled
	}
	return b.Status
}
