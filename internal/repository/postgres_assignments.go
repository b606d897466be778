package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

type PostgresAssignmentsRepo struct {
	db *sql.DB
}

func NewPostgresAssignmentsRepo(db *sql.DB) *PostgresAssignmentsRepo {
	return &PostgresAssignmentsRepo{db: db}
}

func (r *PostgresAssignmentsRepo) CreateIfUnassigned(ctx context.Context, a *domain.Assignment) (bool, error) {
	if a.AssignmentID == "" {
		a.AssignmentID = uuid.New().String()
	}

	// Guarded insert: the vehicle must still be Approved and unassigned at
	// write time. A delete racing this create cannot slip a second row in,
	// because the NOT EXISTS check and the insert are one statement.
	// organization_id is denormalized from the vehicle row here.
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO vehicle_assignments
		     (assignment_id, vehicle_id, driver_id, destination, purpose, notes, organization_id, generated_by)
		 SELECT $1, v.vehicle_id, $3, $4, $5, $6, v.organization_id, $7
		 FROM vehicles v
		 WHERE v.vehicle_id = $2
		   AND v.status = $8
		   AND NOT EXISTS (
		       SELECT 1 FROM vehicle_assignments a WHERE a.vehicle_id = v.vehicle_id
		   )
		 RETURNING organization_id::text, created_at`,
		a.AssignmentID,
		a.VehicleID,
		a.DriverID,
		a.Destination,
		a.Purpose,
		a.Notes,
		a.GeneratedBy,
		domain.StatusApproved,
	).Scan(&a.OrganizationID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert assignment: %w", err)
	}
	return true, nil
}

func (r *PostgresAssignmentsRepo) LatestForVehicle(ctx context.Context, vehicleID string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.db.QueryRowContext(ctx,
		`SELECT assignment_id::text, vehicle_id::text, driver_id::text,
		        destination, purpose, notes, organization_id::text,
		        generated_by::text, created_at
		 FROM vehicle_assignments
		 WHERE vehicle_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		vehicleID,
	).Scan(
		&a.AssignmentID,
		&a.VehicleID,
		&a.DriverID,
		&a.Destination,
		&a.Purpose,
		&a.Notes,
		&a.OrganizationID,
		&a.GeneratedBy,
		&a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

func (r *PostgresAssignmentsRepo) DeleteByID(ctx context.Context, assignmentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vehicle_assignments WHERE assignment_id = $1`,
		assignmentID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
