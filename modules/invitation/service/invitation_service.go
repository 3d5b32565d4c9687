package service

import (
	"context"
	"fmt"
	"time"

	"quorum-booking/core/errors"
	"quorum-booking/core/logger"
	"quorum-booking/core/params"
	"quorum-booking/modules/booking/consensus"
	"quorum-booking/modules/booking/entity"
	"quorum-booking/modules/booking/notice"
	"quorum-booking/modules/booking/repository"
	directoryService "quorum-booking/modules/directory/service"
	"quorum-booking/modules/invitation/dto"
	notificationService "quorum-booking/modules/notification/service"

	"github.com/google/uuid"
)

type InvitationServiceInterface interface {
	Respond(ctx context.Context, invitationID string, decision entity.InvitationStatus, actor string) (*dto.Outcome, *errors.AppError)
	CancelBooking(ctx context.Context, bookingID, actor string) (*dto.Outcome, *errors.AppError)
	LeaveBooking(ctx context.Context, bookingID, actor string) (*dto.Outcome, *errors.AppError)
	ListInvitations(ctx context.Context, recipient string, status entity.InvitationStatus, page params.QueryParams) (*params.Pagination[entity.Invitation], *errors.AppError)
	CountPending(ctx context.Context, recipient string) (int, *errors.AppError)
}

type Option func(*InvitationService)

func WithClock(now func() time.Time) Option {
	return func(s *InvitationService) { s.now = now }
}

// InvitationService resolves invitations and applies organizer and member
// withdrawals. Each operation is one store transaction on the booking.
type InvitationService struct {
	store      repository.ConsensusStore
	directory  directoryService.DirectoryServiceInterface
	dispatcher notificationService.Dispatcher
	now        func() time.Time
}

func NewInvitationService(
	store repository.ConsensusStore,
	directory directoryService.DirectoryServiceInterface,
	dispatcher notificationService.Dispatcher,
	opts ...Option,
) *InvitationService {
	s := &InvitationService{
		store:      store,
		directory:  directory,
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func alreadyResolved(id string) *errors.AppError {
	return errors.NewAppError(errors.ErrAlreadyResolved, fmt.Sprintf("invitation %s has already been answered", id), nil)
}

func terminal(id string) *errors.AppError {
	return errors.NewAppError(errors.ErrTerminalState, fmt.Sprintf("booking %s is cancelled", id), nil)
}

func notAMember(actor string) *errors.AppError {
	return errors.NewAppError(errors.ErrNotAMember, fmt.Sprintf("%s is not a member of this booking", actor), nil)
}

func (s *InvitationService) record(bookingID, recipient string, status entity.InvitationStatus, message string, at time.Time) entity.Invitation {
	return entity.Invitation{
		ID:          uuid.NewString(),
		BookingID:   bookingID,
		RecipientID: recipient,
		Kind:        entity.InvitationKindInformational,
		Status:      status,
		Message:     message,
		CreatedAt:   at,
	}
}

// Respond answers an actionable invitation on behalf of its recipient and
// re-evaluates the booking in the same transaction.
func (s *InvitationService) Respond(ctx context.Context, invitationID string, decision entity.InvitationStatus, actor string) (*dto.Outcome, *errors.AppError) {
	if !decision.IsDecision() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid decision %q", decision), nil)
	}

	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, errors.FromError(err, "failed to get invitation")
	}
	if !inv.IsActionable() || !inv.IsPending() {
		return nil, alreadyResolved(invitationID)
	}
	booking, err := s.store.GetBooking(ctx, inv.BookingID)
	if err != nil {
		return nil, errors.FromError(err, "failed to get booking")
	}

	actorName := s.directory.ResolveDisplayName(ctx, actor)
	organizerName := s.directory.ResolveDisplayName(ctx, booking.OrganizerID)

	var appended int
	next, err := s.store.Mutate(ctx, inv.BookingID, func(cur entity.Aggregate) (entity.Aggregate, error) {
		idx, ok := cur.FindInvitation(invitationID)
		if !ok {
			return cur, errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("invitation %s not found", invitationID), nil)
		}
		target := cur.Invitations[idx]
		if !target.IsPending() {
			return cur, alreadyResolved(invitationID)
		}
		if cur.Booking.IsCancelled() {
			return cur, terminal(cur.Booking.ID)
		}
		if actor != target.RecipientID || !cur.Booking.HasMember(actor) {
			return cur, notAMember(actor)
		}

		now := s.now().UTC()
		cur.Invitations[idx].Status = decision
		cur.Invitations[idx].RespondedAt = &now

		if decision == entity.InvitationStatusAccepted {
			cur.Booking.Status = consensus.Evaluate(cur.Booking, cur.Invitations)
		} else {
			cur.Booking = cur.Booking.WithoutMember(actor)
			cur.Booking.Status = consensus.AfterRemoval(cur.Booking)
		}
		cur.Booking.UpdatedAt = now

		c := notice.ContextOf(cur.Booking)
		records := []entity.Invitation{
			s.record(cur.Booking.ID, cur.Booking.OrganizerID, decision, notice.ResponseToOrganizer(actorName, decision, c), now),
			s.record(cur.Booking.ID, actor, decision, notice.ResponseToSelf(decision, c, organizerName), now),
		}
		cur.Invitations = append(cur.Invitations, records...)
		appended = len(records)
		return cur, nil
	})
	if err != nil {
		logger.Info("InvitationService:Respond:Rejected", "invitation_id", invitationID, "actor", actor, "error", err)
		return nil, errors.FromError(err, "failed to respond to invitation")
	}

	out := outcome(next, appended)
	logger.Info("InvitationService:Respond:Done", "invitation_id", invitationID, "booking_id", out.Booking.ID,
		"decision", decision, "status", out.Booking.Status, "members", len(out.Booking.Members))
	s.dispatcher.Dispatch(ctx, out.Records)
	return out, nil
}

// CancelBooking lets the organizer cancel; every current member is told.
func (s *InvitationService) CancelBooking(ctx context.Context, bookingID, actor string) (*dto.Outcome, *errors.AppError) {
	actorName := s.directory.ResolveDisplayName(ctx, actor)

	var appended int
	next, err := s.store.Mutate(ctx, bookingID, func(cur entity.Aggregate) (entity.Aggregate, error) {
		if cur.Booking.IsCancelled() {
			return cur, terminal(bookingID)
		}
		if actor != cur.Booking.OrganizerID {
			return cur, errors.NewAppError(errors.ErrNotOrganizer, "only the organizer can cancel this booking", nil)
		}

		now := s.now().UTC()
		cur.Booking.Status = entity.BookingStatusCancelled
		cur.Booking.UpdatedAt = now

		message := notice.Cancelled(actorName, notice.ContextOf(cur.Booking))
		for _, m := range cur.Booking.Members {
			cur.Invitations = append(cur.Invitations, s.record(bookingID, m, entity.InvitationStatusDeclined, message, now))
		}
		appended = len(cur.Booking.Members)
		return cur, nil
	})
	if err != nil {
		logger.Info("InvitationService:CancelBooking:Rejected", "booking_id", bookingID, "actor", actor, "error", err)
		return nil, errors.FromError(err, "failed to cancel booking")
	}

	out := outcome(next, appended)
	logger.Info("InvitationService:CancelBooking:Done", "booking_id", bookingID, "notified", len(out.Records))
	s.dispatcher.Dispatch(ctx, out.Records)
	return out, nil
}

// LeaveBooking removes a member; the organizer is told. The organizer
// cannot leave their own booking and has to cancel it instead.
func (s *InvitationService) LeaveBooking(ctx context.Context, bookingID, actor string) (*dto.Outcome, *errors.AppError) {
	actorName := s.directory.ResolveDisplayName(ctx, actor)

	var appended int
	next, err := s.store.Mutate(ctx, bookingID, func(cur entity.Aggregate) (entity.Aggregate, error) {
		if cur.Booking.IsCancelled() {
			return cur, terminal(bookingID)
		}
		if !cur.Booking.HasMember(actor) {
			return cur, notAMember(actor)
		}

		now := s.now().UTC()
		cur.Booking = cur.Booking.WithoutMember(actor)
		cur.Booking.Status = consensus.AfterRemoval(cur.Booking)
		cur.Booking.UpdatedAt = now

		message := notice.Left(actorName, notice.ContextOf(cur.Booking))
		cur.Invitations = append(cur.Invitations,
			s.record(bookingID, cur.Booking.OrganizerID, entity.InvitationStatusDeclined, message, now))
		appended = 1
		return cur, nil
	})
	if err != nil {
		logger.Info("InvitationService:LeaveBooking:Rejected", "booking_id", bookingID, "actor", actor, "error", err)
		return nil, errors.FromError(err, "failed to leave booking")
	}

	out := outcome(next, appended)
	logger.Info("InvitationService:LeaveBooking:Done", "booking_id", bookingID, "actor", actor,
		"status", out.Booking.Status, "members", len(out.Booking.Members))
	s.dispatcher.Dispatch(ctx, out.Records)
	return out, nil
}

func outcome(agg *entity.Aggregate, appended int) *dto.Outcome {
	records := agg.Invitations[len(agg.Invitations)-appended:]
	return &dto.Outcome{Booking: agg.Booking, Records: records}
}

// ListInvitations returns every record addressed to recipient, newest first,
// optionally narrowed to one status.
func (s *InvitationService) ListInvitations(ctx context.Context, recipient string, status entity.InvitationStatus, page params.QueryParams) (*params.Pagination[entity.Invitation], *errors.AppError) {
	if recipient == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "recipient is required", nil)
	}
	list, err := s.store.ListInvitations(ctx, recipient)
	if err != nil {
		return nil, errors.FromError(err, "failed to list invitations")
	}

	if status != "" {
		filtered := list[:0]
		for _, inv := range list {
			if inv.Status == status {
				filtered = append(filtered, inv)
			}
		}
		list = filtered
	}
	result := params.Paginate(list, page)
	return &result, nil
}

// CountPending counts invitations the recipient can still answer.
func (s *InvitationService) CountPending(ctx context.Context, recipient string) (int, *errors.AppError) {
	count, err := s.store.CountPending(ctx, recipient)
	if err != nil {
		return 0, errors.FromError(err, "failed to count pending invitations")
	}
	return count, nil
}
