package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

func setupMockVehiclesDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresVehiclesRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresVehiclesRepo(db)
}

func TestCreateVehicle_AlwaysPending(t *testing.T) {
	db, mock, repo := setupMockVehiclesDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO vehicles`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	v := &domain.Vehicle{
		CaseNumber:     "CASE-001",
		PlateNumber:    "ABC-1234",
		VehicleType:    "Van",
		OrganizationID: uuid.New().String(),
		// A caller-supplied status must not survive creation.
		Status:    domain.StatusApproved,
		CreatedBy: uuid.New().String(),
	}
	err := repo.CreateVehicle(ctx, v)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, v.Status)
	assert.NotEmpty(t, v.VehicleID)
	assert.Equal(t, now, v.CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVehicle_Success(t *testing.T) {
	db, mock, repo := setupMockVehiclesDB(t)
	defer db.Close()

	ctx := context.Background()
	vehicleID := uuid.New().String()
	orgID := uuid.New().String()
	createdBy := uuid.New().String()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{
		"vehicle_id", "case_number", "plate_number", "vehicle_type",
		"organization_id", "status", "insurance_document", "notes",
		"created_by", "created_at",
	}).AddRow(
		vehicleID, "CASE-001", "ABC-1234", "Van",
		orgID, "Pending", nil, nil,
		createdBy, createdAt,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(vehicleID).
		WillReturnRows(rows)

	v, err := repo.GetVehicle(ctx, vehicleID)

	require.NoError(t, err)
	assert.Equal(t, vehicleID, v.VehicleID)
	assert.Equal(t, "ABC-1234", v.PlateNumber)
	assert.Equal(t, domain.StatusPending, v.Status)
	assert.Nil(t, v.InsuranceDocument)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVehicle_NotFound(t *testing.T) {
	db, mock, repo := setupMockVehiclesDB(t)
	defer db.Close()

	vehicleID := uuid.New().String()
	mock.ExpectQuery(`SELECT`).
		WithArgs(vehicleID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetVehicle(context.Background(), vehicleID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromPending_Wins(t *testing.T) {
	db, mock, repo := setupMockVehiclesDB(t)
	defer db.Close()

	vehicleID := uuid.New().String()
	mock.ExpectExec(`UPDATE vehicles`).
		WithArgs(string(domain.StatusApproved), vehicleID, string(domain.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatusFromPending(context.Background(), vehicleID, domain.StatusApproved)

	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromPending_LosesRace(t *testing.T) {
	db, mock, repo := setupMockVehiclesDB(t)
	defer db.Close()

	// Another approver already moved the row off Pending: zero rows affected.
	vehicleID := uuid.New().String()
	mock.ExpectExec(`UPDATE vehicles`).
		WithArgs(string(domain.StatusDeclined), vehicleID, string(domain.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatusFromPending(context.Background(), vehicleID, domain.StatusDeclined)

	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListVehicles_OrgScoped(t *testing.T) {
	db, mock, repo := setupMockVehiclesDB(t)
	defer db.Close()

	orgID := uuid.New().String()
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"vehicle_id", "case_number", "plate_number", "vehicle_type",
		"organization_id", "status", "insurance_document", "notes",
		"created_by", "created_at",
	}).AddRow(
		uuid.New().String(), "CASE-002", "XYZ-5678", "Bus",
		orgID, "Approved", nil, nil,
		uuid.New().String(), time.Now(),
	)
	mock.ExpectQuery(`SELECT`).
		WithArgs(orgID, 20, 0).
		WillReturnRows(rows)

	vehicles, total, err := repo.ListVehicles(context.Background(), orgID, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, vehicles, 1)
	assert.Equal(t, domain.StatusApproved, vehicles[0].Status)

	require.NoError(t, mock.ExpectationsWereMet())
}
