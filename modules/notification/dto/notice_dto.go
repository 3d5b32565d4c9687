package dto

import (
	"time"

	"quorum-booking/modules/booking/entity"
)

// NoticePayload is the queued form of one invitation or activity record.
type NoticePayload struct {
	InvitationID string    `json:"invitation_id"`
	BookingID    string    `json:"booking_id"`
	RecipientID  string    `json:"recipient_id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewNoticePayload(inv entity.Invitation) NoticePayload {
	return NoticePayload{
		InvitationID: inv.ID,
		BookingID:    inv.BookingID,
		RecipientID:  inv.RecipientID,
		Kind:         string(inv.Kind),
		Status:       string(inv.Status),
		Message:      inv.Message,
		CreatedAt:    inv.CreatedAt,
	}
}
