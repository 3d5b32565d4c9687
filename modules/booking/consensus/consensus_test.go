package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quorum-booking/modules/booking/entity"
)

func booking(status entity.BookingStatus, members ...string) entity.Booking {
	return entity.Booking{ID: "b-1", OrganizerID: "o", Members: members, Status: status}
}

func actionable(recipient string, status entity.InvitationStatus) entity.Invitation {
	return entity.Invitation{
		ID:          "inv-" + recipient,
		BookingID:   "b-1",
		RecipientID: recipient,
		Kind:        entity.InvitationKindActionable,
		Status:      status,
	}
}

func notice(recipient string, status entity.InvitationStatus) entity.Invitation {
	inv := actionable(recipient, status)
	inv.ID = "notice-" + recipient
	inv.Kind = entity.InvitationKindInformational
	return inv
}

func TestEvaluate(t *testing.T) {
	accepted := entity.InvitationStatusAccepted
	pending := entity.InvitationStatusPending
	declined := entity.InvitationStatusDeclined

	tests := []struct {
		name        string
		booking     entity.Booking
		invitations []entity.Invitation
		want        entity.BookingStatus
	}{
		{
			name:        "all members accepted confirms",
			booking:     booking(entity.BookingStatusPending, "a", "b", "c"),
			invitations: []entity.Invitation{actionable("a", accepted), actionable("b", accepted), actionable("c", accepted)},
			want:        entity.BookingStatusConfirmed,
		},
		{
			name:        "one pending keeps pending",
			booking:     booking(entity.BookingStatusPending, "a", "b", "c"),
			invitations: []entity.Invitation{actionable("a", accepted), actionable("b", accepted), actionable("c", pending)},
			want:        entity.BookingStatusPending,
		},
		{
			name:        "missing invitation record keeps pending",
			booking:     booking(entity.BookingStatusPending, "a", "b", "c"),
			invitations: []entity.Invitation{actionable("a", accepted), actionable("b", accepted)},
			want:        entity.BookingStatusPending,
		},
		{
			name:    "informational records do not count toward quorum",
			booking: booking(entity.BookingStatusPending, "a", "b", "c"),
			invitations: []entity.Invitation{
				actionable("a", accepted), actionable("b", accepted), actionable("c", pending),
				notice("c", accepted),
			},
			want: entity.BookingStatusPending,
		},
		{
			name:    "invitation of a departed member is ignored",
			booking: booking(entity.BookingStatusPending, "a", "b", "c"),
			invitations: []entity.Invitation{
				actionable("a", accepted), actionable("b", accepted), actionable("c", accepted),
				actionable("d", pending),
			},
			want: entity.BookingStatusConfirmed,
		},
		{
			name:        "fewer than three members cancels",
			booking:     booking(entity.BookingStatusPending, "a", "c"),
			invitations: []entity.Invitation{actionable("a", accepted), actionable("b", declined), actionable("c", pending)},
			want:        entity.BookingStatusCancelled,
		},
		{
			name:        "cancelled is terminal",
			booking:     booking(entity.BookingStatusCancelled, "a", "b", "c"),
			invitations: []entity.Invitation{actionable("a", accepted), actionable("b", accepted), actionable("c", accepted)},
			want:        entity.BookingStatusCancelled,
		},
		{
			name:        "confirmed never reverts",
			booking:     booking(entity.BookingStatusConfirmed, "a", "b", "c"),
			invitations: []entity.Invitation{actionable("a", accepted), actionable("b", pending), actionable("c", accepted)},
			want:        entity.BookingStatusConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.booking, tt.invitations))
		})
	}
}

func TestQualifying_SkipsOtherBookings(t *testing.T) {
	b := booking(entity.BookingStatusPending, "a", "b", "c")
	other := actionable("a", entity.InvitationStatusAccepted)
	other.BookingID = "b-2"

	got := Qualifying(b, []entity.Invitation{other, actionable("b", entity.InvitationStatusPending)})
	assert.Len(t, got, 1)
	assert.Equal(t, "b", got[0].RecipientID)
}

func TestAfterRemoval(t *testing.T) {
	assert.Equal(t, entity.BookingStatusPending, AfterRemoval(booking(entity.BookingStatusPending, "a", "b", "c")))
	assert.Equal(t, entity.BookingStatusConfirmed, AfterRemoval(booking(entity.BookingStatusConfirmed, "a", "b", "c")))
	assert.Equal(t, entity.BookingStatusCancelled, AfterRemoval(booking(entity.BookingStatusConfirmed, "a", "b")))
	assert.Equal(t, entity.BookingStatusCancelled, AfterRemoval(booking(entity.BookingStatusPending)))
}
