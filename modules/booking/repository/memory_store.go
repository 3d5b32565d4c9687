package repository

import (
	"context"
	"fmt"
	"sync"

	"quorum-booking/core/logger"
	"quorum-booking/modules/booking/entity"
)

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// MemoryStore keeps aggregates as immutable snapshots. A transaction holds
// its booking's lock while it computes the next snapshot and then swaps it in
// under the short store-wide write lock, so readers see whole transactions only.
type MemoryStore struct {
	mu          sync.RWMutex
	aggregates  map[string]*entity.Aggregate
	order       []string
	invitations map[string]string // invitation id -> booking id
	invOrder    []string

	bookingLocks keyedMutex
	dayLocks     keyedMutex
}

var _ ConsensusStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		aggregates:  make(map[string]*entity.Aggregate),
		invitations: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, date string, fn CreateFunc) (*entity.Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := s.dayLocks.Lock(date)
	defer unlock()

	agg, err := fn(s.activeOn(date))
	if err != nil {
		return nil, err
	}
	if agg.Booking.Date != date {
		return nil, internal(fmt.Errorf("booking dated %s created under %s", agg.Booking.Date, date), "invalid booking")
	}
	if err := checkInvariants(agg); err != nil {
		return nil, internal(err, "invalid booking")
	}

	snapshot := agg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.aggregates[snapshot.Booking.ID]; exists {
		return nil, internal(fmt.Errorf("booking id %s already used", snapshot.Booking.ID), "invalid booking")
	}
	for _, inv := range snapshot.Invitations {
		if _, exists := s.invitations[inv.ID]; exists {
			return nil, internal(fmt.Errorf("invitation id %s already used", inv.ID), "invalid booking")
		}
	}
	s.install(&snapshot, 0)
	s.order = append(s.order, snapshot.Booking.ID)

	logger.Debug("MemoryStore:Create", "booking_id", snapshot.Booking.ID, "invitations", len(snapshot.Invitations))
	out := snapshot.Clone()
	return &out, nil
}

func (s *MemoryStore) Mutate(ctx context.Context, bookingID string, fn MutateFunc) (*entity.Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := s.bookingLocks.Lock(bookingID)
	defer unlock()

	s.mu.RLock()
	cur, ok := s.aggregates[bookingID]
	s.mu.RUnlock()
	if !ok {
		return nil, bookingNotFound(bookingID)
	}

	next, err := fn(cur.Clone())
	if err != nil {
		return nil, err
	}
	if err := checkTransition(*cur, next); err != nil {
		return nil, internal(err, "invalid booking transition")
	}
	if err := checkInvariants(next); err != nil {
		return nil, internal(err, "invalid booking transition")
	}

	snapshot := next.Clone()

	s.mu.Lock()
	for _, inv := range snapshot.Invitations[len(cur.Invitations):] {
		if _, exists := s.invitations[inv.ID]; exists {
			s.mu.Unlock()
			return nil, internal(fmt.Errorf("invitation id %s already used", inv.ID), "invalid booking transition")
		}
	}
	s.install(&snapshot, len(cur.Invitations))
	s.mu.Unlock()

	logger.Debug("MemoryStore:Mutate", "booking_id", bookingID, "status", snapshot.Booking.Status,
		"appended", len(snapshot.Invitations)-len(cur.Invitations))
	out := snapshot.Clone()
	return &out, nil
}

// install must be called with s.mu held for writing. Invitations from index
// `from` on are new and get indexed.
func (s *MemoryStore) install(agg *entity.Aggregate, from int) {
	s.aggregates[agg.Booking.ID] = agg
	for _, inv := range agg.Invitations[from:] {
		s.invitations[inv.ID] = agg.Booking.ID
		s.invOrder = append(s.invOrder, inv.ID)
	}
}

func (s *MemoryStore) activeOn(date string) []entity.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Booking
	for _, id := range s.order {
		b := s.aggregates[id].Booking
		if b.Date == date && !b.IsCancelled() {
			out = append(out, b.Clone())
		}
	}
	return out
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.aggregates[id]
	if !ok {
		return nil, bookingNotFound(id)
	}
	b := agg.Booking.Clone()
	return &b, nil
}

func (s *MemoryStore) GetAggregate(ctx context.Context, id string) (*entity.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.aggregates[id]
	if !ok {
		return nil, bookingNotFound(id)
	}
	out := agg.Clone()
	return &out, nil
}

func (s *MemoryStore) GetInvitation(ctx context.Context, id string) (*entity.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookingID, ok := s.invitations[id]
	if !ok {
		return nil, invitationNotFound(id)
	}
	agg := s.aggregates[bookingID]
	i, found := agg.FindInvitation(id)
	if !found {
		return nil, invitationNotFound(id)
	}
	inv := agg.Invitations[i].Clone()
	return &inv, nil
}

// ListBookings returns matches in creation order.
func (s *MemoryStore) ListBookings(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Booking, 0)
	for _, id := range s.order {
		b := s.aggregates[id].Booking
		if filter.Matches(b) {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

// ListInvitations returns every record addressed to recipient, newest first.
func (s *MemoryStore) ListInvitations(ctx context.Context, recipient string) ([]entity.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Invitation, 0)
	for i := len(s.invOrder) - 1; i >= 0; i-- {
		id := s.invOrder[i]
		agg := s.aggregates[s.invitations[id]]
		idx, ok := agg.FindInvitation(id)
		if !ok {
			continue
		}
		if inv := agg.Invitations[idx]; inv.RecipientID == recipient {
			out = append(out, inv.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) CountBookings(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

func (s *MemoryStore) CountPending(ctx context.Context, recipient string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.order {
		agg := s.aggregates[id]
		if agg.Booking.IsCancelled() || !agg.Booking.HasMember(recipient) {
			continue
		}
		for _, inv := range agg.Invitations {
			if inv.RecipientID == recipient && inv.IsActionable() && inv.IsPending() {
				count++
			}
		}
	}
	return count, nil
}
