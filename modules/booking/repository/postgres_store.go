package repository

import (
	"context"
	"database/sql"
	_ "embed"
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"quorum-booking/core/database"
	"quorum-booking/core/errors"
	"quorum-booking/core/logger"
	"quorum-booking/modules/booking/entity"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const pqUniqueViolation = "23505"

type bookingRow struct {
	ID           string         `db:"id"`
	ResourceID   string         `db:"resource_id"`
	ResourceName string         `db:"resource_name"`
	Date         string         `db:"booking_date"`
	TimeSlot     string         `db:"time_slot"`
	OrganizerID  string         `db:"organizer_id"`
	Members      pq.StringArray `db:"members"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r bookingRow) toEntity() entity.Booking {
	members := []string(r.Members)
	if members == nil {
		members = []string{}
	}
	return entity.Booking{
		ID:           r.ID,
		ResourceID:   r.ResourceID,
		ResourceName: r.ResourceName,
		Date:         r.Date,
		TimeSlot:     r.TimeSlot,
		OrganizerID:  r.OrganizerID,
		Members:      members,
		Status:       entity.BookingStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromBooking(b entity.Booking) bookingRow {
	return bookingRow{
		ID:           b.ID,
		ResourceID:   b.ResourceID,
		ResourceName: b.ResourceName,
		Date:         b.Date,
		TimeSlot:     b.TimeSlot,
		OrganizerID:  b.OrganizerID,
		Members:      pq.StringArray(b.Members),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

type invitationRow struct {
	ID          string       `db:"id"`
	BookingID   string       `db:"booking_id"`
	RecipientID string       `db:"recipient_id"`
	Kind        string       `db:"kind"`
	Status      string       `db:"status"`
	Message     string       `db:"message"`
	RespondedAt sql.NullTime `db:"responded_at"`
	CreatedAt   time.Time    `db:"created_at"`
}

func (r invitationRow) toEntity() entity.Invitation {
	inv := entity.Invitation{
		ID:          r.ID,
		BookingID:   r.BookingID,
		RecipientID: r.RecipientID,
		Kind:        entity.InvitationKind(r.Kind),
		Status:      entity.InvitationStatus(r.Status),
		Message:     r.Message,
		CreatedAt:   r.CreatedAt,
	}
	if r.RespondedAt.Valid {
		t := r.RespondedAt.Time
		inv.RespondedAt = &t
	}
	return inv
}

func fromInvitation(inv entity.Invitation) invitationRow {
	row := invitationRow{
		ID:          inv.ID,
		BookingID:   inv.BookingID,
		RecipientID: inv.RecipientID,
		Kind:        string(inv.Kind),
		Status:      string(inv.Status),
		Message:     inv.Message,
		CreatedAt:   inv.CreatedAt,
	}
	if inv.RespondedAt != nil {
		row.RespondedAt = sql.NullTime{Time: *inv.RespondedAt, Valid: true}
	}
	return row
}

const bookingColumns = `id, resource_id, resource_name, booking_date, time_slot, organizer_id, members, status, created_at, updated_at`
const invitationColumns = `id, booking_id, recipient_id, kind, status, message, responded_at, created_at`

// PostgresStore keeps aggregates in PostgreSQL. Mutations lock the booking
// row; creation takes a transaction-scoped advisory lock on the date.
type PostgresStore struct {
	db database.IDatabase
}

var _ ConsensusStore = (*PostgresStore)(nil)

func NewPostgresStore(db database.IDatabase) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if err := s.db.ExecContext(ctx, schema); err != nil {
		logger.Error("PostgresStore:Migrate:Error", "error", err)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("PostgresStore:Migrate:Done")
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, date string, fn CreateFunc) (*entity.Aggregate, error) {
	var created entity.Aggregate

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, date); err != nil {
			return err
		}

		var rows []bookingRow
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_date = $1 AND status <> 'cancelled' ORDER BY seq`
		if err := tx.SelectContext(ctx, &rows, query, date); err != nil {
			return err
		}
		sameDay := make([]entity.Booking, 0, len(rows))
		for _, r := range rows {
			sameDay = append(sameDay, r.toEntity())
		}

		agg, err := fn(sameDay)
		if err != nil {
			return err
		}
		if agg.Booking.Date != date {
			return internal(fmt.Errorf("booking dated %s created under %s", agg.Booking.Date, date), "invalid booking")
		}
		if err := checkInvariants(agg); err != nil {
			return internal(err, "invalid booking")
		}

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES (:id, :resource_id, :resource_name, :booking_date, :time_slot, :organizer_id, :members, :status, :created_at, :updated_at)
		`, fromBooking(agg.Booking)); err != nil {
			return err
		}
		if err := insertInvitations(ctx, tx, agg.Invitations); err != nil {
			return err
		}

		created = agg
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "PostgresStore:Create:Error")
	}
	return &created, nil
}

func (s *PostgresStore) Mutate(ctx context.Context, bookingID string, fn MutateFunc) (*entity.Aggregate, error) {
	var updated entity.Aggregate

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := loadAggregate(ctx, tx, bookingID, true)
		if err != nil {
			return err
		}

		next, err := fn(cur.Clone())
		if err != nil {
			return err
		}
		if err := checkTransition(*cur, next); err != nil {
			return internal(err, "invalid booking transition")
		}
		if err := checkInvariants(next); err != nil {
			return internal(err, "invalid booking transition")
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET members = $2, status = $3, updated_at = $4 WHERE id = $1`,
			bookingID, pq.StringArray(next.Booking.Members), string(next.Booking.Status), next.Booking.UpdatedAt,
		); err != nil {
			return err
		}

		for i, old := range cur.Invitations {
			nu := next.Invitations[i]
			if nu.Status == old.Status && nu.Message == old.Message && sameTime(nu.RespondedAt, old.RespondedAt) {
				continue
			}
			row := fromInvitation(nu)
			if _, err := tx.ExecContext(ctx,
				`UPDATE invitations SET status = $2, message = $3, responded_at = $4 WHERE id = $1`,
				row.ID, row.Status, row.Message, row.RespondedAt,
			); err != nil {
				return err
			}
		}
		if err := insertInvitations(ctx, tx, next.Invitations[len(cur.Invitations):]); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "PostgresStore:Mutate:Error")
	}
	return &updated, nil
}

func insertInvitations(ctx context.Context, tx *sqlx.Tx, invitations []entity.Invitation) error {
	// One statement per record keeps seq in slice order.
	for _, inv := range invitations {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO invitations (`+invitationColumns+`)
			VALUES (:id, :booking_id, :recipient_id, :kind, :status, :message, :responded_at, :created_at)
		`, fromInvitation(inv)); err != nil {
			return err
		}
	}
	return nil
}

type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func loadAggregate(ctx context.Context, q queryer, id string, forUpdate bool) (*entity.Aggregate, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var row bookingRow
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, bookingNotFound(id)
		}
		return nil, err
	}

	var invRows []invitationRow
	if err := q.SelectContext(ctx, &invRows,
		`SELECT `+invitationColumns+` FROM invitations WHERE booking_id = $1 ORDER BY seq`, id); err != nil {
		return nil, err
	}

	agg := &entity.Aggregate{Booking: row.toEntity(), Invitations: make([]entity.Invitation, 0, len(invRows))}
	for _, r := range invRows {
		agg.Invitations = append(agg.Invitations, r.toEntity())
	}
	return agg, nil
}

func (s *PostgresStore) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	var row bookingRow
	err := s.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, bookingNotFound(id)
		}
		return nil, s.translate(err, "PostgresStore:GetBooking:Error")
	}
	b := row.toEntity()
	return &b, nil
}

func (s *PostgresStore) GetAggregate(ctx context.Context, id string) (*entity.Aggregate, error) {
	var agg *entity.Aggregate
	// A read-only transaction gives the booking and its records one snapshot.
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY`); err != nil {
			return err
		}
		var err error
		agg, err = loadAggregate(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "PostgresStore:GetAggregate:Error")
	}
	return agg, nil
}

func (s *PostgresStore) GetInvitation(ctx context.Context, id string) (*entity.Invitation, error) {
	var row invitationRow
	err := s.db.GetContext(ctx, &row, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, invitationNotFound(id)
		}
		return nil, s.translate(err, "PostgresStore:GetInvitation:Error")
	}
	inv := row.toEntity()
	return &inv, nil
}

func (s *PostgresStore) ListBookings(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Participant != "" {
		p := arg(filter.Participant)
		conds = append(conds, fmt.Sprintf("(organizer_id = %s OR %s = ANY(members))", p, p))
	}
	if filter.Organizer != "" {
		conds = append(conds, "organizer_id = "+arg(filter.Organizer))
	}
	if filter.ResourceID != "" {
		conds = append(conds, "resource_id = "+arg(filter.ResourceID))
	}
	if filter.Date != "" {
		conds = append(conds, "booking_date = "+arg(filter.Date))
	}
	if filter.TimeSlot != "" {
		conds = append(conds, "time_slot = "+arg(filter.TimeSlot))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		conds = append(conds, "status = ANY("+arg(pq.StringArray(statuses))+")")
	}
	switch filter.Timeline {
	case entity.TimelineUpcoming:
		conds = append(conds, "booking_date >= "+arg(filter.Today)+" AND status <> 'cancelled'")
	case entity.TimelinePast:
		conds = append(conds, "(booking_date < "+arg(filter.Today)+" OR status = 'cancelled')")
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY seq`

	var rows []bookingRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, s.translate(err, "PostgresStore:ListBookings:Error")
	}
	out := make([]entity.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

func (s *PostgresStore) ListInvitations(ctx context.Context, recipient string) ([]entity.Invitation, error) {
	var rows []invitationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+invitationColumns+` FROM invitations WHERE recipient_id = $1 ORDER BY seq DESC`, recipient)
	if err != nil {
		return nil, s.translate(err, "PostgresStore:ListInvitations:Error")
	}
	out := make([]entity.Invitation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

func (s *PostgresStore) CountBookings(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings`); err != nil {
		return 0, s.translate(err, "PostgresStore:CountBookings:Error")
	}
	return count, nil
}

func (s *PostgresStore) CountPending(ctx context.Context, recipient string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM invitations i
		JOIN bookings b ON b.id = i.booking_id
		WHERE i.recipient_id = $1
		  AND i.kind = $2
		  AND i.status = $3
		  AND b.status <> $4
		  AND $1 = ANY(b.members)`,
		recipient, entity.InvitationKindActionable, entity.InvitationStatusPending, entity.BookingStatusCancelled)
	if err != nil {
		return 0, s.translate(err, "PostgresStore:CountPending:Error")
	}
	return count, nil
}

// translate keeps AppErrors, maps the active-slot index violation and
// classifies everything else as internal.
func (s *PostgresStore) translate(err error, step string) error {
	var pqErr *pq.Error
	if goerrors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "bookings_active_slot_idx" {
		return errors.NewAppError(errors.ErrSlotUnavailable, "time slot is already booked for this room", err)
	}
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return appErr
	}
	logger.Error(step, "error", err)
	return errors.NewAppError(errors.ErrInternalServer, "booking store failure", err)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
