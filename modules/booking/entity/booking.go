package entity

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is a reservation of one resource for one slot on one day.
// Members never include the organizer.
type Booking struct {
	ID           string        `json:"id"`
	ResourceID   string        `json:"resource_id"`
	ResourceName string        `json:"resource_name"`
	Date         string        `json:"date"`
	TimeSlot     string        `json:"time_slot"`
	OrganizerID  string        `json:"organizer_id"`
	Members      []string      `json:"members"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (b Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

func (b Booking) HasMember(id string) bool {
	return slices.Contains(b.Members, id)
}

// Participants returns the organizer followed by the members.
func (b Booking) Participants() []string {
	out := make([]string, 0, len(b.Members)+1)
	out = append(out, b.OrganizerID)
	return append(out, b.Members...)
}

func (b Booking) Involves(id string) bool {
	return b.OrganizerID == id || b.HasMember(id)
}

// WithoutMember returns a copy of the booking with id removed from members.
func (b Booking) WithoutMember(id string) Booking {
	out := b.Clone()
	out.Members = slices.DeleteFunc(out.Members, func(m string) bool { return m == id })
	return out
}

func (b Booking) Clone() Booking {
	out := b
	out.Members = slices.Clone(b.Members)
	return out
}

// Aggregate is a booking with every invitation record that belongs to it.
// It is the unit a store transaction reads and replaces.
type Aggregate struct {
	Booking     Booking      `json:"booking"`
	Invitations []Invitation `json:"invitations"`
}

func (a Aggregate) Clone() Aggregate {
	out := Aggregate{Booking: a.Booking.Clone()}
	out.Invitations = make([]Invitation, len(a.Invitations))
	for i, inv := range a.Invitations {
		out.Invitations[i] = inv.Clone()
	}
	return out
}

func (a Aggregate) FindInvitation(id string) (int, bool) {
	for i, inv := range a.Invitations {
		if inv.ID == id {
			return i, true
		}
	}
	return -1, false
}

// ActionableFor returns the actionable invitation addressed to recipient, if any.
func (a Aggregate) ActionableFor(recipient string) (Invitation, bool) {
	for _, inv := range a.Invitations {
		if inv.IsActionable() && inv.RecipientID == recipient {
			return inv, true
		}
	}
	return Invitation{}, false
}

const (
	TimelineUpcoming = "upcoming"
	TimelinePast     = "past"
)

// BookingFilter selects bookings for listing. Zero fields match everything.
type BookingFilter struct {
	Participant string
	Organizer   string
	ResourceID  string
	Date        string
	TimeSlot    string
	Statuses    []BookingStatus
	// Timeline splits around Today: upcoming is today or later and not
	// cancelled, past is before today or cancelled.
	Timeline string
	Today    string
}

func (f BookingFilter) Matches(b Booking) bool {
	if f.Participant != "" && !b.Involves(f.Participant) {
		return false
	}
	if f.Organizer != "" && b.OrganizerID != f.Organizer {
		return false
	}
	if f.ResourceID != "" && b.ResourceID != f.ResourceID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.TimeSlot != "" && b.TimeSlot != f.TimeSlot {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
		return false
	}
	switch f.Timeline {
	case TimelineUpcoming:
		return b.Date >= f.Today && !b.IsCancelled()
	case TimelinePast:
		return b.Date < f.Today || b.IsCancelled()
	}
	return true
}
