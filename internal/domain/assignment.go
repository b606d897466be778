package domain

import "time"

// Assignment 对应 vehicle_assignments 表
// The current assignment for a vehicle is the most recently created row; by
// invariant at most one row exists at a time. Rows are never updated in
// place — corrections are delete + recreate.
type Assignment struct {
	AssignmentID string `db:"assignment_id"` // UUID, PRIMARY KEY
	VehicleID    string `db:"vehicle_id"`    // UUID, FK vehicles
	DriverID     string `db:"driver_id"`     // UUID of the assigned driver
	Destination  string `db:"destination"`   // VARCHAR(255), NOT NULL
	Purpose      string `db:"purpose"`       // TEXT, NOT NULL

	// nullable
	Notes *string `db:"notes"`

	// Denormalized from the vehicle at creation time.
	OrganizationID string `db:"organization_id"`

	GeneratedBy string    `db:"generated_by"` // UUID of the creating user
	CreatedAt   time.Time `db:"created_at"`
}
