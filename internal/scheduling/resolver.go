package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// DefaultDurationMinutes is the treatment duration assumed when no
// service/station policy row exists.
const DefaultDurationMinutes = 60

// Policy is the resolved placement policy for a service/station pair.
type Policy struct {
	DurationMinutes  int
	RequiresApproval bool
}

// PolicyDB is the subset of pgxpool.Pool the resolver needs.
type PolicyDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver translates a service/station pair into a duration and an
// approval requirement by consulting the service_station_matrix table.
type Resolver struct {
	db     PolicyDB
	logger *logging.Logger
}

// NewResolver creates a policy resolver.
func NewResolver(db PolicyDB, logger *logging.Logger) *Resolver {
	if db == nil {
		panic("scheduling: policy db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{db: db, logger: logger}
}

const policyQuery = `
	SELECT base_time_minutes, requires_staff_approval, remote_booking_allowed
	FROM service_station_matrix
	WHERE service_id = $1 AND station_id = $2 AND is_active
`

// Resolve returns the placement policy for the pair. A missing policy
// row or a failed lookup falls back to the default duration with no
// approval requirement; the fallback is logged, never silent. A policy
// row that forbids remote booking aborts with
// ErrStationNotBookableRemotely.
func (r *Resolver) Resolve(ctx context.Context, serviceID string, stationID *string) (Policy, error) {
	fallback := Policy{DurationMinutes: DefaultDurationMinutes, RequiresApproval: false}
	if stationID == nil || *stationID == "" {
		return fallback, nil
	}

	var (
		baseMinutes      *int
		requiresApproval *bool
		remoteAllowed    *bool
	)
	err := r.db.QueryRow(ctx, policyQuery, serviceID, *stationID).
		Scan(&baseMinutes, &requiresApproval, &remoteAllowed)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Warn("no active policy for service/station, using default duration",
			"service_id", serviceID, "station_id", *stationID,
			"duration_minutes", DefaultDurationMinutes)
		return fallback, nil
	}
	if err != nil {
		// Deliberate fail-open: a transient lookup failure must not
		// block bookings.
		r.logger.Warn("policy lookup failed, falling back to default duration",
			"service_id", serviceID, "station_id", *stationID, "error", err)
		return fallback, nil
	}

	if remoteAllowed != nil && !*remoteAllowed {
		return Policy{}, fmt.Errorf("%w (service %s, station %s)",
			ErrStationNotBookableRemotely, serviceID, *stationID)
	}

	policy := fallback
	if baseMinutes != nil && *baseMinutes > 0 {
		policy.DurationMinutes = *baseMinutes
	}
	if requiresApproval != nil {
		policy.RequiresApproval = *requiresApproval
	}
	return policy, nil
}
