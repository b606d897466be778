package domain

import "time"

// ScanEvent 对应 scan_events 表（append-only）
// Created only for anonymous public-page resolutions; authenticated staff
// viewing the same page never produce a row.
type ScanEvent struct {
	ScanID    string    `db:"scan_id"`    // UUID, PRIMARY KEY
	VehicleID string    `db:"vehicle_id"` // UUID, FK vehicles
	IP        string    `db:"ip"`         // originating address
	UserAgent string    `db:"user_agent"` // best-effort, may be empty
	ScannedAt time.Time `db:"scanned_at"`
}

// MonthlyScanCount is one bucket of the dashboard scan chart.
type MonthlyScanCount struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1..12
	Count int `json:"count"`
}
