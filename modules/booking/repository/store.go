package repository

import (
	"context"
	"fmt"

	"quorum-booking/core/errors"
	"quorum-booking/modules/booking/entity"
)

// CreateFunc builds a new aggregate from the non-cancelled bookings already
// held for the same date. It runs while creation for that date is serialized.
type CreateFunc func(sameDay []entity.Booking) (entity.Aggregate, error)

// MutateFunc receives a private copy of the current aggregate and returns the
// next one. Returning an error aborts the transaction without any write.
type MutateFunc func(current entity.Aggregate) (entity.Aggregate, error)

// ConsensusStore owns every booking and invitation record. All writes go
// through Create or Mutate, each applied as one transaction.
type ConsensusStore interface {
	Create(ctx context.Context, date string, fn CreateFunc) (*entity.Aggregate, error)
	Mutate(ctx context.Context, bookingID string, fn MutateFunc) (*entity.Aggregate, error)

	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
	GetAggregate(ctx context.Context, id string) (*entity.Aggregate, error)
	GetInvitation(ctx context.Context, id string) (*entity.Invitation, error)
	ListBookings(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error)
	ListInvitations(ctx context.Context, recipient string) ([]entity.Invitation, error)
	CountBookings(ctx context.Context) (int, error)
	// CountPending counts pending actionable invitations of recipient on
	// non-cancelled bookings the recipient is still a member of, read from
	// one snapshot.
	CountPending(ctx context.Context, recipient string) (int, error)
}

func bookingNotFound(id string) *errors.AppError {
	return errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("booking %s not found", id), nil)
}

func invitationNotFound(id string) *errors.AppError {
	return errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("invitation %s not found", id), nil)
}

// checkInvariants rejects aggregates that break the record-level rules.
func checkInvariants(agg entity.Aggregate) error {
	b := agg.Booking
	if b.ID == "" {
		return fmt.Errorf("booking without id")
	}
	if !b.Status.Valid() {
		return fmt.Errorf("booking %s: invalid status %q", b.ID, b.Status)
	}

	seen := make(map[string]struct{}, len(b.Members))
	for _, m := range b.Members {
		if m == b.OrganizerID {
			return fmt.Errorf("booking %s: organizer listed as member", b.ID)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("booking %s: duplicate member %s", b.ID, m)
		}
		seen[m] = struct{}{}
	}

	ids := make(map[string]struct{}, len(agg.Invitations))
	actionable := make(map[string]struct{}, len(agg.Invitations))
	for _, inv := range agg.Invitations {
		if inv.BookingID != b.ID {
			return fmt.Errorf("invitation %s does not belong to booking %s", inv.ID, b.ID)
		}
		if _, dup := ids[inv.ID]; dup {
			return fmt.Errorf("booking %s: duplicate invitation id %s", b.ID, inv.ID)
		}
		ids[inv.ID] = struct{}{}

		if inv.IsActionable() {
			if _, dup := actionable[inv.RecipientID]; dup {
				return fmt.Errorf("booking %s: second actionable invitation for %s", b.ID, inv.RecipientID)
			}
			actionable[inv.RecipientID] = struct{}{}
		} else if inv.IsPending() {
			return fmt.Errorf("informational record %s created unresolved", inv.ID)
		}
	}
	return nil
}

// checkTransition rejects a next state that rewrites history: informational
// records may be appended and pending invitations resolved, nothing else.
func checkTransition(cur, next entity.Aggregate) error {
	if cur.Booking.IsCancelled() {
		return fmt.Errorf("booking %s is cancelled", cur.Booking.ID)
	}
	if next.Booking.ID != cur.Booking.ID ||
		next.Booking.OrganizerID != cur.Booking.OrganizerID ||
		next.Booking.ResourceID != cur.Booking.ResourceID ||
		next.Booking.Date != cur.Booking.Date ||
		next.Booking.TimeSlot != cur.Booking.TimeSlot {
		return fmt.Errorf("booking %s: identity fields are immutable", cur.Booking.ID)
	}
	if cur.Booking.Status == entity.BookingStatusConfirmed && next.Booking.Status == entity.BookingStatusPending {
		return fmt.Errorf("booking %s: confirmed cannot return to pending", cur.Booking.ID)
	}
	if len(next.Invitations) < len(cur.Invitations) {
		return fmt.Errorf("booking %s: invitation records cannot be removed", cur.Booking.ID)
	}
	for i, old := range cur.Invitations {
		nu := next.Invitations[i]
		if nu.ID != old.ID || nu.RecipientID != old.RecipientID || nu.Kind != old.Kind {
			return fmt.Errorf("booking %s: invitation %s rewritten", cur.Booking.ID, old.ID)
		}
		if nu.Status != old.Status && !old.IsPending() {
			return fmt.Errorf("invitation %s already resolved", old.ID)
		}
	}
	for _, inv := range next.Invitations[len(cur.Invitations):] {
		if inv.IsActionable() {
			return fmt.Errorf("booking %s: actionable invitation %s appended after creation", cur.Booking.ID, inv.ID)
		}
	}
	return nil
}

func internal(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.FromError(err, message)
}
