package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/appointments"
)

// DB is the subset of pgxpool.Pool the repository needs. Begin backs
// the transactional claim.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository provides persistence for proposed meetings.
type Repository struct {
	db DB
}

// NewRepository creates a proposed meeting repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("meetings: db required")
	}
	return &Repository{db: db}
}

const meetingColumns = `id, station_id, service_type, start_time, end_time, status,
	title, summary, notes, code,
	reschedule_appointment_id, reschedule_customer_id, original_start_time, original_end_time,
	created_at, updated_at`

// GetWithRelations loads a meeting together with its invite list and
// category restrictions.
func (r *Repository) GetWithRelations(ctx context.Context, id string) (*ProposedMeeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM proposed_meetings WHERE id = $1`
	var m ProposedMeeting
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.StationID, &m.ServiceType, &m.StartTime, &m.EndTime, &m.Status,
		&m.Title, &m.Summary, &m.Notes, &m.Code,
		&m.RescheduleAppointmentID, &m.RescheduleCustomerID, &m.OriginalStartTime, &m.OriginalEndTime,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("meetings: load failed: %w", err)
	}

	invites, err := r.db.Query(ctx, `
		SELECT customer_id, source FROM proposed_meeting_invites
		WHERE meeting_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("meetings: load invites failed: %w", err)
	}
	defer invites.Close()
	for invites.Next() {
		var inv Invite
		if err := invites.Scan(&inv.CustomerID, &inv.Source); err != nil {
			return nil, fmt.Errorf("meetings: scan invite failed: %w", err)
		}
		m.Invites = append(m.Invites, inv)
	}
	if err := invites.Err(); err != nil {
		return nil, fmt.Errorf("meetings: load invites failed: %w", err)
	}

	categories, err := r.db.Query(ctx, `
		SELECT customer_type_id FROM proposed_meeting_categories
		WHERE meeting_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("meetings: load categories failed: %w", err)
	}
	defer categories.Close()
	for categories.Next() {
		var typeID string
		if err := categories.Scan(&typeID); err != nil {
			return nil, fmt.Errorf("meetings: scan category failed: %w", err)
		}
		m.Categories = append(m.Categories, typeID)
	}
	if err := categories.Err(); err != nil {
		return nil, fmt.Errorf("meetings: load categories failed: %w", err)
	}

	return &m, nil
}

// ClaimParams carries the values the booking transaction writes.
type ClaimParams struct {
	MeetingID  string
	CustomerID string
	StationID  *string
	StartTime  time.Time
	EndTime    time.Time
	Name       *string
	Notes      *string

	// RescheduleAppointmentID, when set, identifies the appointment
	// row to repoint instead of inserting a new one.
	RescheduleAppointmentID *string
}

// Claim books the meeting in a single transaction. The status flip is
// a conditional update so only one of two simultaneous claims can win;
// the loser sees zero rows and gets ErrMeetingUnavailable. The
// appointment upsert and the meeting linkage ride the same
// transaction, so a losing claim leaves no appointment behind.
func (r *Repository) Claim(ctx context.Context, params ClaimParams) (string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("meetings: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE proposed_meetings SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, params.MeetingID, StatusBooked, StatusProposed)
	if err != nil {
		return "", fmt.Errorf("meetings: claim status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrMeetingUnavailable
	}

	appointmentID, err := upsertAppointment(ctx, tx, params)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE proposed_meetings
		SET reschedule_appointment_id = $2, reschedule_customer_id = $3, updated_at = now()
		WHERE id = $1
	`, params.MeetingID, appointmentID, params.CustomerID); err != nil {
		return "", fmt.Errorf("meetings: link appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("meetings: commit claim: %w", err)
	}
	return appointmentID, nil
}

func upsertAppointment(ctx context.Context, tx pgx.Tx, params ClaimParams) (string, error) {
	if params.RescheduleAppointmentID != nil {
		tag, err := tx.Exec(ctx, `
			UPDATE appointments
			SET customer_id = $2, station_id = $3, start_time = $4, end_time = $5,
			    status = $6, payment_status = $7, appointment_kind = $8,
			    appointment_name = $9, customer_notes = $10, updated_at = now()
			WHERE id = $1
		`, *params.RescheduleAppointmentID, params.CustomerID, params.StationID,
			params.StartTime, params.EndTime,
			appointments.StatusScheduled, appointments.PaymentUnpaid, appointments.KindBusiness,
			params.Name, params.Notes)
		if err != nil {
			return "", fmt.Errorf("meetings: reschedule appointment: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return *params.RescheduleAppointmentID, nil
		}
		// The referenced appointment is gone; fall through to insert.
	}

	appointmentID := uuid.New().String()
	if _, err := tx.Exec(ctx, `
		INSERT INTO appointments
			(id, customer_id, station_id, start_time, end_time,
			 status, payment_status, appointment_kind, appointment_name, customer_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, appointmentID, params.CustomerID, params.StationID, params.StartTime, params.EndTime,
		appointments.StatusScheduled, appointments.PaymentUnpaid, appointments.KindBusiness,
		params.Name, params.Notes); err != nil {
		return "", fmt.Errorf("meetings: create appointment: %w", err)
	}
	return appointmentID, nil
}
