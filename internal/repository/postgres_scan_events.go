package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

type PostgresScanEventsRepo struct {
	db *sql.DB
}

func NewPostgresScanEventsRepo(db *sql.DB) *PostgresScanEventsRepo {
	return &PostgresScanEventsRepo{db: db}
}

func (r *PostgresScanEventsRepo) InsertScanEvent(ctx context.Context, ev *domain.ScanEvent) error {
	if ev.ScanID == "" {
		ev.ScanID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO scan_events (scan_id, vehicle_id, ip, user_agent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING scanned_at`,
		ev.ScanID,
		ev.VehicleID,
		ev.IP,
		ev.UserAgent,
	).Scan(&ev.ScannedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scan event: %w", err)
	}
	return nil
}

func (r *PostgresScanEventsRepo) CountByMonth(ctx context.Context, year int, orgID string) ([]domain.MonthlyScanCount, error) {
	q := `
		SELECT EXTRACT(MONTH FROM s.scanned_at)::int AS month, COUNT(*)::int
		FROM scan_events s
		JOIN vehicles v ON s.vehicle_id = v.vehicle_id
		WHERE EXTRACT(YEAR FROM s.scanned_at) = $1`
	args := []any{year}
	if orgID != "" {
		q += ` AND v.organization_id = $2`
		args = append(args, orgID)
	}
	q += `
		GROUP BY month
		ORDER BY month`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	defer rows.Close()

	out := []domain.MonthlyScanCount{}
	for rows.Next() {
		c := domain.MonthlyScanCount{Year: year}
		if err := rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
