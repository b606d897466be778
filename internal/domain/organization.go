package domain

import "time"

// Organization 对应 organizations 表
type Organization struct {
	OrganizationID string    `db:"organization_id"` // UUID, PRIMARY KEY
	Name           string    `db:"name"`            // VARCHAR(255), NOT NULL
	Acronym        string    `db:"acronym"`         // VARCHAR(50), nullable
	CreatedAt      time.Time `db:"created_at"`
}
