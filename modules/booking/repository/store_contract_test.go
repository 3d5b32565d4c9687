package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorum-booking/core/errors"
	"quorum-booking/modules/booking/entity"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newAggregate(id, date, slot, organizer string, members ...string) entity.Aggregate {
	b := entity.Booking{
		ID:           id,
		ResourceID:   "discussion-room-a",
		ResourceName: "Discussion Room A",
		Date:         date,
		TimeSlot:     slot,
		OrganizerID:  organizer,
		Members:      members,
		Status:       entity.BookingStatusPending,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	agg := entity.Aggregate{Booking: b}
	for _, m := range members {
		agg.Invitations = append(agg.Invitations, entity.Invitation{
			ID:          id + "-" + m,
			BookingID:   id,
			RecipientID: m,
			Kind:        entity.InvitationKindActionable,
			Status:      entity.InvitationStatusPending,
			Message:     organizer + " has invited you to a discussion room booking",
			CreatedAt:   baseTime,
		})
	}
	return agg
}

func create(t *testing.T, s ConsensusStore, agg entity.Aggregate) *entity.Aggregate {
	t.Helper()
	out, err := s.Create(context.Background(), agg.Booking.Date, func([]entity.Booking) (entity.Aggregate, error) {
		return agg, nil
	})
	require.NoError(t, err)
	return out
}

func cancel(current entity.Aggregate) (entity.Aggregate, error) {
	current.Booking.Status = entity.BookingStatusCancelled
	return current, nil
}

// runStoreContract exercises behaviour every ConsensusStore must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) ConsensusStore) {
	ctx := context.Background()

	t.Run("create then read back", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "m2", "m3"))

		agg, err := s.GetAggregate(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2", "m3"}, agg.Booking.Members)
		assert.Equal(t, entity.BookingStatusPending, agg.Booking.Status)
		require.Len(t, agg.Invitations, 3)
		assert.Equal(t, "b1-m1", agg.Invitations[0].ID)

		inv, err := s.GetInvitation(ctx, "b1-m2")
		require.NoError(t, err)
		assert.Equal(t, "m2", inv.RecipientID)
		assert.True(t, inv.IsActionable())

		count, err := s.CountBookings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("missing records are not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetBooking(ctx, "nope")
		assert.True(t, errors.HasCode(err, errors.ErrNotFound))
		_, err = s.GetInvitation(ctx, "nope")
		assert.True(t, errors.HasCode(err, errors.ErrNotFound))
		_, err = s.Mutate(ctx, "nope", cancel)
		assert.True(t, errors.HasCode(err, errors.ErrNotFound))
	})

	t.Run("create sees only active bookings of the same date", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "o1", "a", "b", "c"))
		create(t, s, newAggregate("b2", "2025-03-12", "10:00-12:00", "o2", "d", "e", "f"))
		create(t, s, newAggregate("b3", "2025-03-13", "08:00-10:00", "o3", "g", "h", "i"))
		_, err := s.Mutate(ctx, "b2", cancel)
		require.NoError(t, err)

		var seen []string
		_, err = s.Create(ctx, "2025-03-12", func(sameDay []entity.Booking) (entity.Aggregate, error) {
			for _, b := range sameDay {
				seen = append(seen, b.ID)
			}
			return newAggregate("b4", "2025-03-12", "12:00-14:00", "o4", "j", "k", "l"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, seen)
	})

	t.Run("failed create writes nothing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, "2025-03-12", func([]entity.Booking) (entity.Aggregate, error) {
			return entity.Aggregate{}, errors.NewAppError(errors.ErrGroupAlreadyBooked, "busy", nil)
		})
		assert.True(t, errors.HasCode(err, errors.ErrGroupAlreadyBooked))

		count, err := s.CountBookings(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("create rejects broken aggregates", func(t *testing.T) {
		s := newStore(t)
		agg := newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "org", "m3")
		_, err := s.Create(ctx, "2025-03-12", func([]entity.Booking) (entity.Aggregate, error) { return agg, nil })
		assert.True(t, errors.HasCode(err, errors.ErrInternalServer))

		_, err = s.GetBooking(ctx, "b1")
		assert.True(t, errors.HasCode(err, errors.ErrNotFound))
	})

	t.Run("mutate resolves and appends in one step", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "m2", "m3"))

		at := baseTime.Add(time.Hour)
		out, err := s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			idx, ok := cur.FindInvitation("b1-m1")
			require.True(t, ok)
			cur.Invitations[idx].Status = entity.InvitationStatusAccepted
			cur.Invitations[idx].RespondedAt = &at
			cur.Invitations = append(cur.Invitations, entity.Invitation{
				ID: "n1", BookingID: "b1", RecipientID: "org",
				Kind: entity.InvitationKindInformational, Status: entity.InvitationStatusAccepted,
				Message: "m1 has accepted", CreatedAt: at,
			})
			cur.Booking.UpdatedAt = at
			return cur, nil
		})
		require.NoError(t, err)
		assert.Len(t, out.Invitations, 4)

		inv, err := s.GetInvitation(ctx, "b1-m1")
		require.NoError(t, err)
		assert.Equal(t, entity.InvitationStatusAccepted, inv.Status)
		require.NotNil(t, inv.RespondedAt)
		assert.True(t, at.Equal(*inv.RespondedAt))

		records, err := s.ListInvitations(ctx, "org")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "n1", records[0].ID)
	})

	t.Run("failed mutate leaves state untouched", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "m2", "m3"))

		_, err := s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			cur.Booking.Members = cur.Booking.Members[1:]
			return cur, errors.NewAppError(errors.ErrNotAMember, "no", nil)
		})
		assert.True(t, errors.HasCode(err, errors.ErrNotAMember))

		b, err := s.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2", "m3"}, b.Members)
	})

	t.Run("mutate cannot rewrite history", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "m2", "m3"))
		_, err := s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			cur.Invitations[0].Status = entity.InvitationStatusDeclined
			return cur, nil
		})
		require.NoError(t, err)

		_, err = s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			cur.Invitations[0].Status = entity.InvitationStatusAccepted
			return cur, nil
		})
		assert.True(t, errors.HasCode(err, errors.ErrInternalServer))

		_, err = s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			cur.Invitations = cur.Invitations[1:]
			return cur, nil
		})
		assert.True(t, errors.HasCode(err, errors.ErrInternalServer))

		inv, err := s.GetInvitation(ctx, "b1-m1")
		require.NoError(t, err)
		assert.Equal(t, entity.InvitationStatusDeclined, inv.Status)
	})

	t.Run("mutate cannot append actionable invitations", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "m2", "m3"))

		_, err := s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			cur.Booking.Members = append(cur.Booking.Members, "m4")
			cur.Invitations = append(cur.Invitations, entity.Invitation{
				ID: "b1-m4", BookingID: "b1", RecipientID: "m4",
				Kind: entity.InvitationKindActionable, Status: entity.InvitationStatusPending,
				Message: "late invite", CreatedAt: baseTime,
			})
			return cur, nil
		})
		assert.True(t, errors.HasCode(err, errors.ErrInternalServer))

		_, err = s.GetInvitation(ctx, "b1-m4")
		assert.True(t, errors.HasCode(err, errors.ErrNotFound))
		b, err := s.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2", "m3"}, b.Members)
	})

	t.Run("cancelled booking is frozen", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "org", "m1", "m2", "m3"))
		_, err := s.Mutate(ctx, "b1", cancel)
		require.NoError(t, err)

		_, err = s.Mutate(ctx, "b1", func(cur entity.Aggregate) (entity.Aggregate, error) {
			cur.Booking.Status = entity.BookingStatusPending
			return cur, nil
		})
		assert.Error(t, err)

		b, err := s.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, b.IsCancelled())
	})

	t.Run("list bookings applies the filter in creation order", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "o1", "a", "b", "c"))
		create(t, s, newAggregate("b2", "2025-03-14", "10:00-12:00", "o2", "a2", "b2", "o1"))
		create(t, s, newAggregate("b3", "2025-03-09", "08:00-10:00", "o3", "x", "y", "z"))
		_, err := s.Mutate(ctx, "b3", cancel)
		require.NoError(t, err)

		ids := func(f entity.BookingFilter) []string {
			list, err := s.ListBookings(ctx, f)
			require.NoError(t, err)
			out := make([]string, 0, len(list))
			for _, b := range list {
				out = append(out, b.ID)
			}
			return out
		}

		assert.Equal(t, []string{"b1", "b2", "b3"}, ids(entity.BookingFilter{}))
		assert.Equal(t, []string{"b1", "b2"}, ids(entity.BookingFilter{Participant: "o1"}))
		assert.Equal(t, []string{"b1"}, ids(entity.BookingFilter{Organizer: "o1"}))
		assert.Equal(t, []string{"b2"}, ids(entity.BookingFilter{Date: "2025-03-14"}))
		assert.Equal(t, []string{"b1", "b3"}, ids(entity.BookingFilter{TimeSlot: "08:00-10:00"}))
		assert.Equal(t, []string{"b3"}, ids(entity.BookingFilter{Statuses: []entity.BookingStatus{entity.BookingStatusCancelled}}))
		assert.Equal(t, []string{"b1", "b2"}, ids(entity.BookingFilter{Timeline: entity.TimelineUpcoming, Today: "2025-03-12"}))
		assert.Equal(t, []string{"b3"}, ids(entity.BookingFilter{Timeline: entity.TimelinePast, Today: "2025-03-12"}))
	})

	t.Run("invitations are listed newest first", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "o1", "a", "b", "c"))
		create(t, s, newAggregate("b2", "2025-03-13", "08:00-10:00", "o2", "a", "d", "e"))

		list, err := s.ListInvitations(ctx, "a")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b2-a", list[0].ID)
		assert.Equal(t, "b1-a", list[1].ID)

		empty, err := s.ListInvitations(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("count pending skips answered, cancelled and departed", func(t *testing.T) {
		s := newStore(t)
		create(t, s, newAggregate("b1", "2025-03-12", "08:00-10:00", "o1", "a", "b", "c", "d"))
		create(t, s, newAggregate("b2", "2025-03-13", "08:00-10:00", "o2", "a", "e", "f"))
		create(t, s, newAggregate("b3", "2025-03-14", "08:00-10:00", "o3", "a", "g", "h", "i"))
		create(t, s, newAggregate("b4", "2025-03-15", "08:00-10:00", "o4", "a", "j", "k"))

		_, err := s.Mutate(ctx, "b2", cancel)
		require.NoError(t, err)
		_, err = s.Mutate(ctx, "b3", func(cur entity.Aggregate) (entity.Aggregate, error) {
			idx, _ := cur.FindInvitation("b3-a")
			cur.Invitations[idx].Status = entity.InvitationStatusDeclined
			cur.Booking.Members = []string{"g", "h", "i"}
			return cur, nil
		})
		require.NoError(t, err)
		_, err = s.Mutate(ctx, "b4", func(cur entity.Aggregate) (entity.Aggregate, error) {
			idx, _ := cur.FindInvitation("b4-a")
			cur.Invitations[idx].Status = entity.InvitationStatusAccepted
			return cur, nil
		})
		require.NoError(t, err)

		count, err := s.CountPending(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = s.CountPending(ctx, "g")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = s.CountPending(ctx, "o1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func memberIDs(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}
