package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"quorum-booking/core/constants"
	"quorum-booking/core/errors"
	"quorum-booking/core/logger"
	"quorum-booking/core/params"
	"quorum-booking/modules/booking/dto"
	"quorum-booking/modules/booking/entity"
	"quorum-booking/modules/booking/notice"
	"quorum-booking/modules/booking/repository"
	catalogService "quorum-booking/modules/catalog/service"
	directoryService "quorum-booking/modules/directory/service"
	notificationService "quorum-booking/modules/notification/service"

	"github.com/google/uuid"
)

var activeStatuses = []entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusConfirmed}

type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, in dto.CreateBookingInput) (*entity.Aggregate, *errors.AppError)
	GetBooking(ctx context.Context, id string) (*entity.Booking, *errors.AppError)
	ListBookings(ctx context.Context, filter entity.BookingFilter, page params.QueryParams) (*params.Pagination[entity.Booking], *errors.AppError)
	AvailableSlots(ctx context.Context, resourceID, date string) ([]string, *errors.AppError)
	MemberStatuses(ctx context.Context, bookingID string) ([]dto.MemberStatus, *errors.AppError)
	DayOverview(ctx context.Context, date, timeSlot string) (*dto.DayOverview, *errors.AppError)
}

type Option func(*BookingService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

type BookingService struct {
	store      repository.ConsensusStore
	catalog    catalogService.CatalogServiceInterface
	directory  directoryService.DirectoryServiceInterface
	dispatcher notificationService.Dispatcher
	now        func() time.Time
}

func NewBookingService(
	store repository.ConsensusStore,
	catalog catalogService.CatalogServiceInterface,
	directory directoryService.DirectoryServiceInterface,
	dispatcher notificationService.Dispatcher,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		store:      store,
		catalog:    catalog,
		directory:  directory,
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking validates the request and records a pending booking with one
// pending invitation per member. The first failing check decides the error.
func (s *BookingService) CreateBooking(ctx context.Context, in dto.CreateBookingInput) (*entity.Aggregate, *errors.AppError) {
	if !s.catalog.ValidSlot(in.TimeSlot) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid time slot %q", in.TimeSlot), nil)
	}
	resource, appErr := s.catalog.GetResource(in.ResourceID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := validateDate(in.Date); appErr != nil {
		return nil, appErr
	}

	organizer := strings.TrimSpace(in.OrganizerID)
	members, appErr := normalizeMembers(organizer, in.Members)
	if appErr != nil {
		return nil, appErr
	}

	message := notice.Invite(s.directory.ResolveDisplayName(ctx, organizer))

	agg, err := s.store.Create(ctx, in.Date, func(sameDay []entity.Booking) (entity.Aggregate, error) {
		participants := append([]string{organizer}, members...)
		for _, b := range sameDay {
			for _, p := range participants {
				if b.Involves(p) {
					return entity.Aggregate{}, errors.NewAppError(errors.ErrGroupAlreadyBooked,
						fmt.Sprintf("%s already has a booking on %s", p, in.Date), nil)
				}
			}
		}
		for _, b := range sameDay {
			if b.ResourceID == resource.ID && b.TimeSlot == in.TimeSlot {
				return entity.Aggregate{}, errors.NewAppError(errors.ErrSlotUnavailable,
					"time slot is already booked for this room", nil)
			}
		}

		now := s.now().UTC()
		booking := entity.Booking{
			ID:           uuid.NewString(),
			ResourceID:   resource.ID,
			ResourceName: resource.Name,
			Date:         in.Date,
			TimeSlot:     in.TimeSlot,
			OrganizerID:  organizer,
			Members:      members,
			Status:       entity.BookingStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		invitations := make([]entity.Invitation, 0, len(members))
		for _, m := range members {
			invitations = append(invitations, entity.Invitation{
				ID:          uuid.NewString(),
				BookingID:   booking.ID,
				RecipientID: m,
				Kind:        entity.InvitationKindActionable,
				Status:      entity.InvitationStatusPending,
				Message:     message,
				CreatedAt:   now,
			})
		}
		return entity.Aggregate{Booking: booking, Invitations: invitations}, nil
	})
	if err != nil {
		logger.Info("BookingService:CreateBooking:Rejected", "organizer", organizer, "resource_id", in.ResourceID,
			"date", in.Date, "time_slot", in.TimeSlot, "error", err)
		return nil, errors.FromError(err, "failed to create booking")
	}

	logger.Info("BookingService:CreateBooking:Created", "booking_id", agg.Booking.ID, "organizer", organizer,
		"members", len(agg.Booking.Members))
	s.dispatcher.Dispatch(ctx, agg.Invitations)
	return agg, nil
}

func validateDate(date string) *errors.AppError {
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
	}
	return nil
}

// normalizeMembers trims candidates, drops blanks and enforces the group rules.
func normalizeMembers(organizer string, candidates []string) ([]string, *errors.AppError) {
	if organizer == "" {
		return nil, errors.NewAppError(errors.ErrInvalidParticipants, "organizer is required", nil)
	}

	members := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			members = append(members, c)
		}
	}

	if len(members) < constants.MinBookingMembers || len(members) > constants.MaxBookingMembers {
		return nil, errors.NewAppError(errors.ErrInvalidParticipants,
			fmt.Sprintf("a booking needs between %d and %d members besides the organizer, got %d",
				constants.MinBookingMembers, constants.MaxBookingMembers, len(members)), nil)
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == organizer {
			return nil, errors.NewAppError(errors.ErrInvalidParticipants, "the organizer cannot be invited as a member", nil)
		}
		if _, dup := seen[m]; dup {
			return nil, errors.NewAppError(errors.ErrInvalidParticipants, fmt.Sprintf("member %s is listed twice", m), nil)
		}
		seen[m] = struct{}{}
	}
	return members, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*entity.Booking, *errors.AppError) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, errors.FromError(err, "failed to get booking")
	}
	return b, nil
}

// ListBookings returns matching bookings ordered by date and slot. Past
// listings run newest first.
func (s *BookingService) ListBookings(ctx context.Context, filter entity.BookingFilter, page params.QueryParams) (*params.Pagination[entity.Booking], *errors.AppError) {
	if filter.Timeline != "" && filter.Today == "" {
		filter.Today = s.now().UTC().Format(constants.DateLayout)
	}
	list, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		return nil, errors.FromError(err, "failed to list bookings")
	}

	slots := s.catalog.Slots()
	slices.SortStableFunc(list, func(a, b entity.Booking) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return slices.Index(slots, a.TimeSlot) - slices.Index(slots, b.TimeSlot)
	})
	if filter.Timeline == entity.TimelinePast {
		slices.Reverse(list)
	}

	result := params.Paginate(list, page)
	return &result, nil
}

// AvailableSlots lists the slots of a resource with no active booking on date.
func (s *BookingService) AvailableSlots(ctx context.Context, resourceID, date string) ([]string, *errors.AppError) {
	if _, appErr := s.catalog.GetResource(resourceID); appErr != nil {
		return nil, appErr
	}
	if appErr := validateDate(date); appErr != nil {
		return nil, appErr
	}

	taken, err := s.store.ListBookings(ctx, entity.BookingFilter{ResourceID: resourceID, Date: date, Statuses: activeStatuses})
	if err != nil {
		return nil, errors.FromError(err, "failed to list bookings")
	}

	free := make([]string, 0)
	for _, slot := range s.catalog.Slots() {
		if !slices.ContainsFunc(taken, func(b entity.Booking) bool { return b.TimeSlot == slot }) {
			free = append(free, slot)
		}
	}
	return free, nil
}

// MemberStatuses reports each current member's answer to their invitation.
func (s *BookingService) MemberStatuses(ctx context.Context, bookingID string) ([]dto.MemberStatus, *errors.AppError) {
	agg, err := s.store.GetAggregate(ctx, bookingID)
	if err != nil {
		return nil, errors.FromError(err, "failed to get booking")
	}

	out := make([]dto.MemberStatus, 0, len(agg.Booking.Members))
	for _, m := range agg.Booking.Members {
		status := entity.InvitationStatusPending
		if inv, ok := agg.ActionableFor(m); ok {
			status = inv.Status
		}
		out = append(out, dto.MemberStatus{
			ParticipantID: m,
			DisplayName:   s.directory.ResolveDisplayName(ctx, m),
			Status:        status,
		})
	}
	return out, nil
}

// DayOverview builds the occupancy board of a date, optionally narrowed to one slot.
func (s *BookingService) DayOverview(ctx context.Context, date, timeSlot string) (*dto.DayOverview, *errors.AppError) {
	if appErr := validateDate(date); appErr != nil {
		return nil, appErr
	}
	if timeSlot != "" && !s.catalog.ValidSlot(timeSlot) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid time slot %q", timeSlot), nil)
	}

	total, err := s.store.CountBookings(ctx)
	if err != nil {
		return nil, errors.FromError(err, "failed to count bookings")
	}
	all, err := s.store.ListBookings(ctx, entity.BookingFilter{Date: date, Statuses: activeStatuses})
	if err != nil {
		return nil, errors.FromError(err, "failed to list bookings")
	}
	onDate := slices.DeleteFunc(slices.Clone(all), func(b entity.Booking) bool {
		return b.Date != date || (timeSlot != "" && b.TimeSlot != timeSlot)
	})

	slots := s.catalog.Slots()
	if timeSlot != "" {
		slots = []string{timeSlot}
	}

	rooms := make(map[string]struct{})
	people := make(map[string]struct{})
	for _, b := range onDate {
		rooms[b.ResourceID] = struct{}{}
		for _, p := range b.Participants() {
			people[p] = struct{}{}
		}
	}

	board := make([]dto.RoomDay, 0)
	for _, r := range s.catalog.ListResources() {
		day := dto.RoomDay{Resource: r, Slots: make([]dto.SlotCell, 0, len(slots))}
		for _, slot := range slots {
			cell := dto.SlotCell{TimeSlot: slot}
			for _, b := range onDate {
				if b.ResourceID == r.ID && b.TimeSlot == slot {
					cell.BookingID = b.ID
					cell.Status = b.Status
				}
			}
			day.Slots = append(day.Slots, cell)
		}
		board = append(board, day)
	}

	return &dto.DayOverview{
		Date:     date,
		TimeSlot: timeSlot,
		Rooms:    board,
		Bookings: onDate,
		Stats: dto.DayStats{
			TotalBookings:      total,
			BookingsOnDate:     len(onDate),
			RoomsInUse:         len(rooms),
			ActiveParticipants: len(people),
		},
	}, nil
}
