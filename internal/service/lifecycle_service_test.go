package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/policy"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
)

func caller(role, userID, orgID string) policy.Caller {
	return policy.Caller{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		Caps:           policy.Derive(role),
	}
}

func setupLifecycle(t *testing.T) (*repository.MemoryVehiclesRepo, *repository.MemoryAssignmentsRepo, *LifecycleService) {
	t.Helper()
	vehicles := repository.NewMemoryVehiclesRepo()
	assignments := repository.NewMemoryAssignmentsRepo(vehicles)
	svc := NewLifecycleService(vehicles, assignments, zap.NewNop())
	return vehicles, assignments, svc
}

func registerVehicle(t *testing.T, svc *LifecycleService, c policy.Caller) *domain.Vehicle {
	t.Helper()
	v, err := svc.RegisterVehicle(context.Background(), RegisterVehicleRequest{
		CaseNumber:  "CASE-001",
		PlateNumber: "ABC-1234",
		VehicleType: "Van",
	}, c)
	require.NoError(t, err)
	return v
}

func TestRegisterVehicle_StartsPending(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")

	v := registerVehicle(t, svc, member)

	assert.Equal(t, domain.StatusPending, v.Status)
	assert.Equal(t, "org-a", v.OrganizationID)
	assert.Equal(t, "u-member", v.CreatedBy)
}

func TestSetStatus_MemberForbidden(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	v := registerVehicle(t, svc, member)

	err := svc.SetStatus(context.Background(), v.VehicleID, domain.StatusApproved, member)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Same vehicle, President succeeds.
	president := caller(policy.RolePresident, "u-pres", "org-a")
	require.NoError(t, svc.SetStatus(context.Background(), v.VehicleID, domain.StatusApproved, president))

	got, err := svc.GetVehicle(context.Background(), v.VehicleID, president)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
}

func TestSetStatus_TerminalStates(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")
	ctx := context.Background()

	v := registerVehicle(t, svc, member)
	require.NoError(t, svc.SetStatus(ctx, v.VehicleID, domain.StatusDeclined, president))

	// Declined is terminal: no edge back to Pending or across to Approved.
	err := svc.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = svc.SetStatus(ctx, v.VehicleID, domain.StatusPending, president)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSetStatus_OrgScoped(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	v := registerVehicle(t, svc, member)

	otherPresident := caller(policy.RolePresident, "u-pres-b", "org-b")
	err := svc.SetStatus(context.Background(), v.VehicleID, domain.StatusApproved, otherPresident)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// CEO sees across organizations.
	ceo := caller(policy.RoleCEO, "u-ceo", "org-b")
	assert.NoError(t, svc.SetStatus(context.Background(), v.VehicleID, domain.StatusApproved, ceo))
}

func TestSetStatus_NotFound(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	president := caller(policy.RolePresident, "u-pres", "org-a")

	err := svc.SetStatus(context.Background(), "no-such-vehicle", domain.StatusApproved, president)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// raceVehiclesRepo reproduces the approve/decline race deterministically:
// the read still sees Pending, but the conditional write has already lost.
type raceVehiclesRepo struct {
	*repository.MemoryVehiclesRepo
}

func (r *raceVehiclesRepo) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	v, err := r.MemoryVehiclesRepo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	v.Status = domain.StatusPending
	return v, nil
}

func TestSetStatus_LostRaceIsConflictRetryable(t *testing.T) {
	vehicles := repository.NewMemoryVehiclesRepo()
	assignments := repository.NewMemoryAssignmentsRepo(vehicles)
	svc := NewLifecycleService(&raceVehiclesRepo{vehicles}, assignments, zap.NewNop())

	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")
	ctx := context.Background()

	v, err := svc.RegisterVehicle(ctx, RegisterVehicleRequest{CaseNumber: "C", PlateNumber: "P", VehicleType: "Van"}, member)
	require.NoError(t, err)

	// First transition wins for real.
	require.NoError(t, svc.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president))

	// Second caller reads a stale Pending, then loses the conditional write.
	err = svc.SetStatus(ctx, v.VehicleID, domain.StatusDeclined, president)
	assert.ErrorIs(t, err, domain.ErrConflictRetryable)
}

func TestSetStatus_ConcurrentApproveDecline(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")
	ctx := context.Background()

	v := registerVehicle(t, svc, member)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []domain.VehicleStatus{domain.StatusApproved, domain.StatusDeclined}
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SetStatus(ctx, v.VehicleID, targets[i], president)
		}(i)
	}
	wg.Wait()

	// Exactly one wins; the loser sees a deterministic rejection, never
	// silent overwrite.
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			lostRace := errors.Is(err, domain.ErrConflictRetryable) || errors.Is(err, domain.ErrInvalidTransition)
			assert.True(t, lostRace, "unexpected loser error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := svc.GetVehicle(ctx, v.VehicleID, president)
	require.NoError(t, err)
	assert.Contains(t, []domain.VehicleStatus{domain.StatusApproved, domain.StatusDeclined}, got.Status)
}

func TestCreateAssignment_Lifecycle(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")
	ctx := context.Background()

	v := registerVehicle(t, svc, member)

	req := CreateAssignmentRequest{
		VehicleID:   v.VehicleID,
		DriverID:    "u-driver",
		Destination: "Cebu City",
		Purpose:     "Conference transport",
	}

	// Pending vehicle: precondition failed.
	_, err := svc.CreateAssignment(ctx, req, member)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	require.NoError(t, svc.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president))

	// Driver cannot generate.
	_, err = svc.CreateAssignment(ctx, req, caller(policy.RoleDriver, "u-driver", "org-a"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	a, err := svc.CreateAssignment(ctx, req, member)
	require.NoError(t, err)
	assert.Equal(t, "org-a", a.OrganizationID)
	assert.Equal(t, "u-member", a.GeneratedBy)

	// Round-trip through CurrentAssignment.
	got, err := svc.CurrentAssignment(ctx, v.VehicleID, member)
	require.NoError(t, err)
	assert.Equal(t, a.AssignmentID, got.AssignmentID)
	assert.Equal(t, v.VehicleID, got.VehicleID)
	assert.Equal(t, "u-driver", got.DriverID)
	assert.Equal(t, "Cebu City", got.Destination)
	assert.Equal(t, "Conference transport", got.Purpose)

	// A second create must fail, never implicitly replace.
	_, err = svc.CreateAssignment(ctx, req, member)
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
}

func TestDeleteAssignment_Authority(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")
	ctx := context.Background()

	v := registerVehicle(t, svc, member)
	require.NoError(t, svc.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president))

	_, err := svc.CreateAssignment(ctx, CreateAssignmentRequest{
		VehicleID:   v.VehicleID,
		DriverID:    "u-driver",
		Destination: "Davao",
		Purpose:     "Site inspection",
	}, member)
	require.NoError(t, err)

	// Member lacks CanDeleteQR.
	err = svc.DeleteAssignment(ctx, v.VehicleID, member)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// President from another organization is rejected.
	err = svc.DeleteAssignment(ctx, v.VehicleID, caller(policy.RolePresident, "u-x", "org-b"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Privileged role may delete regardless of creator.
	require.NoError(t, svc.DeleteAssignment(ctx, v.VehicleID, president))

	_, err = svc.CurrentAssignment(ctx, v.VehicleID, member)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Delete with nothing left: NotFound.
	err = svc.DeleteAssignment(ctx, v.VehicleID, president)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteThenCreate_Regenerate(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	member := caller(policy.RoleMember, "u-member", "org-a")
	president := caller(policy.RolePresident, "u-pres", "org-a")
	ctx := context.Background()

	v := registerVehicle(t, svc, member)
	require.NoError(t, svc.SetStatus(ctx, v.VehicleID, domain.StatusApproved, president))

	req := CreateAssignmentRequest{VehicleID: v.VehicleID, DriverID: "d1", Destination: "A", Purpose: "p"}
	first, err := svc.CreateAssignment(ctx, req, president)
	require.NoError(t, err)

	// Regenerate is two explicit operations: delete, then create.
	require.NoError(t, svc.DeleteAssignment(ctx, v.VehicleID, president))
	req.DriverID = "d2"
	second, err := svc.CreateAssignment(ctx, req, president)
	require.NoError(t, err)

	assert.NotEqual(t, first.AssignmentID, second.AssignmentID)
	got, err := svc.CurrentAssignment(ctx, v.VehicleID, president)
	require.NoError(t, err)
	assert.Equal(t, "d2", got.DriverID)
}

func TestListVehicles_OrgScoping(t *testing.T) {
	_, _, svc := setupLifecycle(t)
	ctx := context.Background()

	registerVehicle(t, svc, caller(policy.RoleMember, "u-a", "org-a"))
	registerVehicle(t, svc, caller(policy.RoleMember, "u-b", "org-b"))

	// Member sees only their organization.
	vehicles, total, err := svc.ListVehicles(ctx, 1, 20, caller(policy.RoleMember, "u-a", "org-a"))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "org-a", vehicles[0].OrganizationID)

	// Developer sees everything.
	_, total, err = svc.ListVehicles(ctx, 1, 20, caller(policy.RoleDeveloper, "u-dev", "org-a"))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
