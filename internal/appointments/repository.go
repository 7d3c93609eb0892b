package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointments.
type Repository struct {
	db DB
}

// NewRepository creates an appointment repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &Repository{db: db}
}

const appointmentColumns = `id, customer_id, service_id, station_id, start_time, end_time,
	status, payment_status, appointment_kind, appointment_name, customer_notes, internal_notes,
	garden_appointment_type, garden_is_trial, garden_trim_nails, garden_brush, garden_bath,
	late_pickup_requested, late_pickup_notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(
		&a.ID, &a.CustomerID, &a.ServiceID, &a.StationID, &a.StartTime, &a.EndTime,
		&a.Status, &a.PaymentStatus, &a.Kind, &a.Name, &a.CustomerNotes, &a.InternalNotes,
		&a.GardenAppointmentType, &a.GardenIsTrial, &a.GardenTrimNails, &a.GardenBrush, &a.GardenBath,
		&a.LatePickupRequested, &a.LatePickupNotes, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: scan failed: %w", err)
	}
	return &a, nil
}

// Insert creates a new appointment row, assigning an id when the
// caller left it empty.
func (r *Repository) Insert(ctx context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO appointments
			(id, customer_id, service_id, station_id, start_time, end_time,
			 status, payment_status, appointment_kind, appointment_name, customer_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		a.ID, a.CustomerID, a.ServiceID, a.StationID, a.StartTime, a.EndTime,
		a.Status, a.PaymentStatus, a.Kind, a.Name, a.CustomerNotes,
	).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an appointment by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

// HasOverlap reports whether the station already has a non-cancelled
// appointment intersecting [start, end). excludeID skips the row being
// moved so relocation stays idempotent.
func (r *Repository) HasOverlap(ctx context.Context, stationID string, start, end time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE station_id = $1
			  AND status <> 'cancelled'
			  AND start_time < $3
			  AND end_time > $2
			  AND id <> $4
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, stationID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("appointments: overlap check failed: %w", err)
	}
	return exists, nil
}

// PlacementUpdate carries the fields Slot Relocation may change.
// Station and window are always written; nil optional fields are left
// untouched (partial update).
type PlacementUpdate struct {
	StationID *string
	StartTime time.Time
	EndTime   time.Time

	GardenAppointmentType *string
	GardenIsTrial         *bool
	GardenTrimNails       *bool
	GardenBrush           *bool
	GardenBath            *bool
	LatePickupRequested   *bool
	LatePickupNotes       *string
	InternalNotes         *string
}

// UpdatePlacement applies a relocation to the appointment row and
// returns the updated record.
func (r *Repository) UpdatePlacement(ctx context.Context, id string, upd PlacementUpdate) (*Appointment, error) {
	sets := []string{"station_id = $1", "start_time = $2", "end_time = $3", "updated_at = now()"}
	args := []any{upd.StationID, upd.StartTime, upd.EndTime}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.GardenAppointmentType != nil {
		add("garden_appointment_type", *upd.GardenAppointmentType)
	}
	if upd.GardenIsTrial != nil {
		add("garden_is_trial", *upd.GardenIsTrial)
	}
	if upd.GardenTrimNails != nil {
		add("garden_trim_nails", *upd.GardenTrimNails)
	}
	if upd.GardenBrush != nil {
		add("garden_brush", *upd.GardenBrush)
	}
	if upd.GardenBath != nil {
		add("garden_bath", *upd.GardenBath)
	}
	if upd.LatePickupRequested != nil {
		add("late_pickup_requested", *upd.LatePickupRequested)
	}
	if upd.LatePickupNotes != nil {
		add("late_pickup_notes", *upd.LatePickupNotes)
	}
	if upd.InternalNotes != nil {
		add("internal_notes", *upd.InternalNotes)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE appointments SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), appointmentColumns,
	)
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: update failed: %w", err)
	}
	return appt, nil
}

// ListRange returns appointments whose start falls in [from, to),
// ordered by start time.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.CustomerID, &a.ServiceID, &a.StationID, &a.StartTime, &a.EndTime,
			&a.Status, &a.PaymentStatus, &a.Kind, &a.Name, &a.CustomerNotes, &a.InternalNotes,
			&a.GardenAppointmentType, &a.GardenIsTrial, &a.GardenTrimNails, &a.GardenBrush, &a.GardenBath,
			&a.LatePickupRequested, &a.LatePickupNotes, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
