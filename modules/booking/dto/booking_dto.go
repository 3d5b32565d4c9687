package dto

import (
	"quorum-booking/modules/booking/entity"
	catalogEntity "quorum-booking/modules/catalog/entity"
)

type CreateBookingRequest struct {
	ResourceID string   `json:"resource_id"`
	Date       string   `json:"date"`
	TimeSlot   string   `json:"time_slot"`
	Members    []string `json:"members"`
}

// CreateBookingInput is a creation request with the organizer resolved.
type CreateBookingInput struct {
	OrganizerID string
	ResourceID  string
	Date        string
	TimeSlot    string
	Members     []string
}

type BookingResponse struct {
	Booking     entity.Booking      `json:"booking"`
	Invitations []entity.Invitation `json:"invitations,omitempty"`
}

// ListBookingsQuery is bound from the query string of GET /bookings.
type ListBookingsQuery struct {
	Participant string `query:"participant"`
	Organizer   string `query:"organizer"`
	ResourceID  string `query:"resource_id"`
	Date        string `query:"date"`
	TimeSlot    string `query:"time_slot"`
	Status      string `query:"status"`
	Timeline    string `query:"timeline"`
}

type MemberStatus struct {
	ParticipantID string                  `json:"participant_id"`
	DisplayName   string                  `json:"display_name"`
	Status        entity.InvitationStatus `json:"status"`
}

type SlotCell struct {
	TimeSlot  string               `json:"time_slot"`
	BookingID string               `json:"booking_id,omitempty"`
	Status    entity.BookingStatus `json:"status,omitempty"`
}

type RoomDay struct {
	Resource catalogEntity.Resource `json:"resource"`
	Slots    []SlotCell             `json:"slots"`
}

type DayStats struct {
	TotalBookings      int `json:"total_bookings"`
	BookingsOnDate     int `json:"bookings_on_date"`
	RoomsInUse         int `json:"rooms_in_use"`
	ActiveParticipants int `json:"active_participants"`
}

// DayOverview is the public occupancy board for one date.
type DayOverview struct {
	Date     string           `json:"date"`
	TimeSlot string           `json:"time_slot,omitempty"`
	Rooms    []RoomDay        `json:"rooms"`
	Bookings []entity.Booking `json:"bookings"`
	Stats    DayStats         `json:"stats"`
}
