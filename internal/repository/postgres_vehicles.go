package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

type PostgresVehiclesRepo struct {
	db *sql.DB
}

func NewPostgresVehiclesRepo(db *sql.DB) *PostgresVehiclesRepo {
	return &PostgresVehiclesRepo{db: db}
}

const vehicleColumns = `
	vehicle_id::text,
	case_number,
	plate_number,
	vehicle_type,
	organization_id::text,
	status,
	insurance_document,
	notes,
	created_by::text,
	created_at`

func scanVehicle(row interface{ Scan(...any) error }) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(
		&v.VehicleID,
		&v.CaseNumber,
		&v.PlateNumber,
		&v.VehicleType,
		&v.OrganizationID,
		&v.Status,
		&v.InsuranceDocument,
		&v.Notes,
		&v.CreatedBy,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresVehiclesRepo) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	if v.VehicleID == "" {
		v.VehicleID = uuid.New().String()
	}
	// Status is forced at the store level: every vehicle starts Pending.
	v.Status = domain.StatusPending

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO vehicles (vehicle_id, case_number, plate_number, vehicle_type,
		                       organization_id, status, insurance_document, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		v.VehicleID,
		v.CaseNumber,
		v.PlateNumber,
		v.VehicleType,
		v.OrganizationID,
		v.Status,
		v.InsuranceDocument,
		v.Notes,
		v.CreatedBy,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

func (r *PostgresVehiclesRepo) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+`
		 FROM vehicles
		 WHERE vehicle_id = $1`,
		vehicleID,
	)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

func (r *PostgresVehiclesRepo) ListVehicles(ctx context.Context, orgID string, page, size int) ([]domain.Vehicle, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if orgID != "" {
		where = append(where, fmt.Sprintf("organization_id = $%d", argN))
		args = append(args, orgID)
		argN++
	}

	queryCount := `SELECT COUNT(*) FROM vehicles WHERE ` + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size
	args = append(args, size, offset)

	q := `SELECT ` + vehicleColumns + `
	      FROM vehicles
	      WHERE ` + strings.Join(where, " AND ") + `
	      ORDER BY created_at DESC
	      LIMIT $` + fmt.Sprintf("%d", argN) + ` OFFSET $` + fmt.Sprintf("%d", argN+1)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	out := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresVehiclesRepo) UpdateStatusFromPending(ctx context.Context, vehicleID string, target domain.VehicleStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles
		 SET status = $1
		 WHERE vehicle_id = $2 AND status = $3`,
		target, vehicleID, domain.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update vehicle status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
