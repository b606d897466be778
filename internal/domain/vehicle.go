package domain

import "time"

// VehicleStatus follows a forward-only machine: every vehicle is created
// Pending; Pending -> Approved and Pending -> Declined are the only legal
// edges and both are terminal.
type VehicleStatus string

const (
	StatusPending  VehicleStatus = "Pending"
	StatusApproved VehicleStatus = "Approved"
	StatusDeclined VehicleStatus = "Declined"
)

// ValidStatus reports whether s is one of the three known states.
func ValidStatus(s VehicleStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal status edge.
func CanTransition(from, to VehicleStatus) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusDeclined
}

// Vehicle 对应 vehicles 表
type Vehicle struct {
	VehicleID      string        `db:"vehicle_id"`      // UUID, PRIMARY KEY
	CaseNumber     string        `db:"case_number"`     // VARCHAR(100), NOT NULL
	PlateNumber    string        `db:"plate_number"`    // VARCHAR(50), NOT NULL
	VehicleType    string        `db:"vehicle_type"`    // VARCHAR(100), NOT NULL
	OrganizationID string        `db:"organization_id"` // UUID, FK organizations
	Status         VehicleStatus `db:"status"`          // VARCHAR(20), DEFAULT 'Pending'

	// nullable
	InsuranceDocument *string `db:"insurance_document"` // object-storage reference
	Notes             *string `db:"notes"`

	CreatedBy string    `db:"created_by"` // UUID of the registering user
	CreatedAt time.Time `db:"created_at"`
}
