package repository

import (
	"context"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

// VehiclesRepo is the record-store surface for vehicle rows. All writes the
// lifecycle needs to be race-safe are conditional at the store level.
type VehiclesRepo interface {
	CreateVehicle(ctx context.Context, v *domain.Vehicle) error
	// GetVehicle returns domain.ErrNotFound when the row does not exist.
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	// ListVehicles filters by organization when orgID is non-empty.
	ListVehicles(ctx context.Context, orgID string, page, size int) ([]domain.Vehicle, int, error)
	// UpdateStatusFromPending performs the conditional status write: the row
	// is updated only while its status is still Pending. Returns false when
	// zero rows were affected (a concurrent caller won the transition).
	UpdateStatusFromPending(ctx context.Context, vehicleID string, target domain.VehicleStatus) (bool, error)
}

// AssignmentsRepo manages assignment rows. Rows are created and deleted,
// never updated.
type AssignmentsRepo interface {
	// CreateIfUnassigned inserts the assignment only if the vehicle exists,
	// is Approved, and has zero assignment rows — the existence re-check
	// happens inside the write, not before it. On success the vehicle's
	// organization_id is copied into the row and a is populated with the
	// stored values. Returns false when the guarded insert matched nothing.
	CreateIfUnassigned(ctx context.Context, a *domain.Assignment) (bool, error)
	// LatestForVehicle returns the most recent row or domain.ErrNotFound.
	LatestForVehicle(ctx context.Context, vehicleID string) (*domain.Assignment, error)
	// DeleteByID removes exactly one row; false when it was already gone.
	DeleteByID(ctx context.Context, assignmentID string) (bool, error)
}

// ScanEventsRepo is append-only.
type ScanEventsRepo interface {
	InsertScanEvent(ctx context.Context, ev *domain.ScanEvent) error
	// CountByMonth buckets scans per month for the given year; orgID filters
	// by the scanned vehicle's organization when non-empty.
	CountByMonth(ctx context.Context, year int, orgID string) ([]domain.MonthlyScanCount, error)
}

// DirectoryRepo resolves the reference entities the public page needs.
type DirectoryRepo interface {
	GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}
