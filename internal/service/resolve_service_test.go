package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/policy"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
)

func setupResolve(t *testing.T) (*LifecycleService, *ResolveService, *repository.MemoryDirectoryRepo) {
	t.Helper()
	vehicles := repository.NewMemoryVehiclesRepo()
	assignments := repository.NewMemoryAssignmentsRepo(vehicles)
	directory := repository.NewMemoryDirectoryRepo()
	lifecycle := NewLifecycleService(vehicles, assignments, zap.NewNop())
	resolve := NewResolveService(vehicles, assignments, directory, zap.NewNop())
	return lifecycle, resolve, directory
}

func TestResolve_VehicleNotFound(t *testing.T) {
	_, resolve, _ := setupResolve(t)

	_, err := resolve.Resolve(context.Background(), "no-such-vehicle")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_WithoutAssignment(t *testing.T) {
	lifecycle, resolve, directory := setupResolve(t)
	ctx := context.Background()

	directory.PutOrganization(domain.Organization{OrganizationID: "org-a", Name: "Alpha Transport Co."})
	v, err := lifecycle.RegisterVehicle(ctx, RegisterVehicleRequest{
		CaseNumber:  "CASE-001",
		PlateNumber: "ABC-1234",
		VehicleType: "Van",
	}, caller(policy.RoleMember, "u-member", "org-a"))
	require.NoError(t, err)

	view, err := resolve.Resolve(ctx, v.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-1234", view.PlateNumber)
	assert.Equal(t, "Alpha Transport Co.", view.OrganizationName)
	// A vehicle with no assignment is not an error.
	assert.Nil(t, view.Assignment)
	assert.Empty(t, view.DriverDisplayName)
}

func TestResolve_FullView(t *testing.T) {
	lifecycle, resolve, directory := setupResolve(t)
	ctx := context.Background()
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")

	directory.PutOrganization(domain.Organization{OrganizationID: "org-a", Name: "Alpha Transport Co."})
	directory.PutProfile(domain.Profile{UserID: "u-driver", FirstName: "Juan", LastName: "Dela Cruz"})

	v, err := lifecycle.RegisterVehicle(ctx, RegisterVehicleRequest{
		CaseNumber:  "CASE-001",
		PlateNumber: "ABC-1234",
		VehicleType: "Van",
	}, member)
	require.NoError(t, err)
	require.NoError(t, lifecycle.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president))
	_, err = lifecycle.CreateAssignment(ctx, CreateAssignmentRequest{
		VehicleID:   v.VehicleID,
		DriverID:    "u-driver",
		Destination: "Cebu City",
		Purpose:     "Conference transport",
	}, member)
	require.NoError(t, err)

	view, err := resolve.Resolve(ctx, v.VehicleID)
	require.NoError(t, err)
	require.NotNil(t, view.Assignment)
	assert.Equal(t, "Cebu City", view.Assignment.Destination)
	assert.Equal(t, "Conference transport", view.Assignment.Purpose)
	// Display name falls back to "first last" when display_name is unset.
	assert.Equal(t, "Juan Dela Cruz", view.DriverDisplayName)
}

func TestResolve_MissingDriverProfileIsNotAnError(t *testing.T) {
	lifecycle, resolve, directory := setupResolve(t)
	ctx := context.Background()
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")

	directory.PutOrganization(domain.Organization{OrganizationID: "org-a", Name: "Alpha Transport Co."})

	v, err := lifecycle.RegisterVehicle(ctx, RegisterVehicleRequest{
		CaseNumber:  "CASE-001",
		PlateNumber: "ABC-1234",
		VehicleType: "Van",
	}, member)
	require.NoError(t, err)
	require.NoError(t, lifecycle.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president))
	_, err = lifecycle.CreateAssignment(ctx, CreateAssignmentRequest{
		VehicleID:   v.VehicleID,
		DriverID:    "u-unknown-driver",
		Destination: "Davao",
		Purpose:     "Site inspection",
	}, member)
	require.NoError(t, err)

	view, err := resolve.Resolve(ctx, v.VehicleID)
	require.NoError(t, err)
	require.NotNil(t, view.Assignment)
	assert.Empty(t, view.DriverDisplayName)
}
