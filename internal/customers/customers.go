package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrCustomerNotFound is returned when no customer row matches.
	ErrCustomerNotFound = errors.New("customer not found")
)

// Customer is a salon customer. AuthUserID links the row to the
// authentication principal for self-service booking.
type Customer struct {
	ID             string    `json:"id"`
	AuthUserID     *string   `json:"auth_user_id,omitempty"`
	CustomerTypeID *string   `json:"customer_type_id,omitempty"`
	FullName       string    `json:"full_name"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads customer rows. Creation and mutation happen in the
// admin surfaces, outside this service.
type Repository struct {
	db DB
}

// NewRepository creates a customer repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("customers: db required")
	}
	return &Repository{db: db}
}

const customerColumns = `id, auth_user_id, customer_type_id, full_name, email, phone, created_at`

// GetByID fetches a customer by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByAuthUser resolves the customer row linked to an authenticated
// principal.
func (r *Repository) GetByAuthUser(ctx context.Context, authUserID string) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE auth_user_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, authUserID))
}

func (r *Repository) scanOne(row pgx.Row) (*Customer, error) {
	var c Customer
	if err := row.Scan(
		&c.ID,
		&c.AuthUserID,
		&c.CustomerTypeID,
		&c.FullName,
		&c.Email,
		&c.Phone,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customers: select failed: %w", err)
	}
	return &c, nil
}
