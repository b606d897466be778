package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

// PostgresDirectoryRepo reads the reference entities (organizations and
// profiles) maintained by the excluded CRUD layer.
type PostgresDirectoryRepo struct {
	db *sql.DB
}

func NewPostgresDirectoryRepo(db *sql.DB) *PostgresDirectoryRepo {
	return &PostgresDirectoryRepo{db: db}
}

func (r *PostgresDirectoryRepo) GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error) {
	var o domain.Organization
	err := r.db.QueryRowContext(ctx,
		`SELECT organization_id::text, name, COALESCE(acronym, ''), created_at
		 FROM organizations
		 WHERE organization_id = $1`,
		orgID,
	).Scan(&o.OrganizationID, &o.Name, &o.Acronym, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &o, nil
}

func (r *PostgresDirectoryRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id::text, COALESCE(display_name, ''), COALESCE(first_name, ''),
		        COALESCE(last_name, ''), COALESCE(position, ''), organization_id::text
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.DisplayName, &p.FirstName, &p.LastName, &p.Position, &p.OrganizationID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
