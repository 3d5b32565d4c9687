package dto

import "quorum-booking/modules/booking/entity"

// Outcome is the committed result of a resolution: the booking after the
// transaction and the activity records it appended.
type Outcome struct {
	Booking entity.Booking      `json:"booking"`
	Records []entity.Invitation `json:"records"`
}

type ListInvitationsQuery struct {
	Status string `query:"status"`
}

type PendingCountResponse struct {
	Count int `json:"count"`
}
