package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/policy"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
)

// LifecycleService owns the vehicle approval state machine and the
// create/replace/delete rules for assignments. It never retries internally:
// a lost race surfaces as domain.ErrConflictRetryable and the caller decides.
type LifecycleService struct {
	vehicles    repository.VehiclesRepo
	assignments repository.AssignmentsRepo
	logger      *zap.Logger
}

func NewLifecycleService(vehicles repository.VehiclesRepo, assignments repository.AssignmentsRepo, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		vehicles:    vehicles,
		assignments: assignments,
		logger:      logger,
	}
}

// RegisterVehicleRequest 注册车辆请求
type RegisterVehicleRequest struct {
	CaseNumber        string
	PlateNumber       string
	VehicleType       string
	InsuranceDocument *string
	Notes             *string
}

// RegisterVehicle creates a Pending vehicle in the caller's organization.
func (s *LifecycleService) RegisterVehicle(ctx context.Context, req RegisterVehicleRequest, caller policy.Caller) (*domain.Vehicle, error) {
	if caller.OrganizationID == "" {
		return nil, fmt.Errorf("caller has no organization: %w", domain.ErrForbidden)
	}

	v := &domain.Vehicle{
		CaseNumber:        req.CaseNumber,
		PlateNumber:       req.PlateNumber,
		VehicleType:       req.VehicleType,
		OrganizationID:    caller.OrganizationID,
		InsuranceDocument: req.InsuranceDocument,
		Notes:             req.Notes,
		CreatedBy:         caller.UserID,
	}
	if err := s.vehicles.CreateVehicle(ctx, v); err != nil {
		return nil, storeErr("register vehicle", err)
	}

	s.logger.Info("vehicle registered",
		zap.String("vehicle_id", v.VehicleID),
		zap.String("organization_id", v.OrganizationID),
		zap.String("created_by", caller.UserID))
	return v, nil
}

// GetVehicle returns one vehicle, org-scoped to the caller.
func (s *LifecycleService) GetVehicle(ctx context.Context, vehicleID string, caller policy.Caller) (*domain.Vehicle, error) {
	v, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, storeErr("get vehicle", err)
	}
	if !caller.CanAccessOrganization(v.OrganizationID) {
		return nil, fmt.Errorf("vehicle belongs to another organization: %w", domain.ErrForbidden)
	}
	return v, nil
}

// ListVehicles pages vehicles, restricted to the caller's organization unless
// the caller can view all organizations.
func (s *LifecycleService) ListVehicles(ctx context.Context, page, size int, caller policy.Caller) ([]domain.Vehicle, int, error) {
	orgFilter := caller.OrganizationID
	if caller.Caps.CanViewAllOrganizations {
		orgFilter = ""
	}
	vehicles, total, err := s.vehicles.ListVehicles(ctx, orgFilter, page, size)
	if err != nil {
		return nil, 0, storeErr("list vehicles", err)
	}
	return vehicles, total, nil
}

// SetStatus drives the only legal transitions: Pending -> Approved and
// Pending -> Declined. The write is conditional on the row still being
// Pending; losing that condition after a successful read means a concurrent
// approver won.
func (s *LifecycleService) SetStatus(ctx context.Context, vehicleID string, target domain.VehicleStatus, caller policy.Caller) error {
	if !caller.Caps.CanApprove {
		return fmt.Errorf("role %s cannot approve: %w", caller.Role, domain.ErrForbidden)
	}
	if !domain.CanTransition(domain.StatusPending, target) {
		return fmt.Errorf("target status %q: %w", target, domain.ErrInvalidTransition)
	}

	v, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return storeErr("set status", err)
	}
	if !caller.CanAccessOrganization(v.OrganizationID) {
		return fmt.Errorf("vehicle belongs to another organization: %w", domain.ErrForbidden)
	}
	if v.Status != domain.StatusPending {
		return fmt.Errorf("vehicle is %s: %w", v.Status, domain.ErrInvalidTransition)
	}

	ok, err := s.vehicles.UpdateStatusFromPending(ctx, vehicleID, target)
	if err != nil {
		return storeErr("set status", err)
	}
	if !ok {
		// Read saw Pending but the conditional write matched nothing: a
		// concurrent transition won in between.
		return fmt.Errorf("vehicle %s: %w", vehicleID, domain.ErrConflictRetryable)
	}

	s.logger.Info("vehicle status updated",
		zap.String("vehicle_id", vehicleID),
		zap.String("status", string(target)),
		zap.String("updated_by", caller.UserID))
	return nil
}

// CreateAssignmentRequest 生成行程指派请求
type CreateAssignmentRequest struct {
	VehicleID   string
	DriverID    string
	Destination string
	Purpose     string
	Notes       *string
}

// CreateAssignment attaches the single trip assignment to an approved,
// unassigned vehicle. It never replaces an existing assignment; callers
// delete first and create again as two separate operations.
func (s *LifecycleService) CreateAssignment(ctx context.Context, req CreateAssignmentRequest, caller policy.Caller) (*domain.Assignment, error) {
	if !caller.Caps.CanGenerateQR {
		return nil, fmt.Errorf("role %s cannot generate assignments: %w", caller.Role, domain.ErrForbidden)
	}

	v, err := s.vehicles.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, storeErr("create assignment", err)
	}
	if !caller.CanAccessOrganization(v.OrganizationID) {
		return nil, fmt.Errorf("vehicle belongs to another organization: %w", domain.ErrForbidden)
	}
	if v.Status != domain.StatusApproved {
		return nil, fmt.Errorf("vehicle is %s: %w", v.Status, domain.ErrPreconditionFailed)
	}

	a := &domain.Assignment{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		Destination: req.Destination,
		Purpose:     req.Purpose,
		Notes:       req.Notes,
		GeneratedBy: caller.UserID,
	}
	ok, err := s.assignments.CreateIfUnassigned(ctx, a)
	if err != nil {
		return nil, storeErr("create assignment", err)
	}
	if !ok {
		// Approved is terminal, so the guard can only have failed on the
		// zero-assignments check.
		return nil, fmt.Errorf("vehicle %s: %w", req.VehicleID, domain.ErrAlreadyAssigned)
	}

	s.logger.Info("assignment created",
		zap.String("assignment_id", a.AssignmentID),
		zap.String("vehicle_id", a.VehicleID),
		zap.String("generated_by", caller.UserID))
	return a, nil
}

// DeleteAssignment removes the vehicle's current assignment. Callers who
// cannot approve may only delete assignments they generated themselves.
func (s *LifecycleService) DeleteAssignment(ctx context.Context, vehicleID string, caller policy.Caller) error {
	if !caller.Caps.CanDeleteQR {
		return fmt.Errorf("role %s cannot delete assignments: %w", caller.Role, domain.ErrForbidden)
	}

	a, err := s.assignments.LatestForVehicle(ctx, vehicleID)
	if err != nil {
		return storeErr("delete assignment", err)
	}
	if !caller.CanAccessOrganization(a.OrganizationID) {
		return fmt.Errorf("assignment belongs to another organization: %w", domain.ErrForbidden)
	}
	if !caller.Caps.CanApprove && a.GeneratedBy != caller.UserID {
		return fmt.Errorf("assignment was generated by another user: %w", domain.ErrForbidden)
	}

	ok, err := s.assignments.DeleteByID(ctx, a.AssignmentID)
	if err != nil {
		return storeErr("delete assignment", err)
	}
	if !ok {
		// Row vanished between the read and the delete.
		return fmt.Errorf("assignment %s: %w", a.AssignmentID, domain.ErrNotFound)
	}

	s.logger.Info("assignment deleted",
		zap.String("assignment_id", a.AssignmentID),
		zap.String("vehicle_id", vehicleID),
		zap.String("deleted_by", caller.UserID))
	return nil
}

// CurrentAssignment returns the vehicle's most recent assignment for
// dashboard viewers.
func (s *LifecycleService) CurrentAssignment(ctx context.Context, vehicleID string, caller policy.Caller) (*domain.Assignment, error) {
	if !caller.Caps.CanViewQR {
		return nil, fmt.Errorf("role %s cannot view assignments: %w", caller.Role, domain.ErrForbidden)
	}
	a, err := s.assignments.LatestForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, storeErr("current assignment", err)
	}
	if !caller.CanAccessOrganization(a.OrganizationID) {
		return nil, fmt.Errorf("assignment belongs to another organization: %w", domain.ErrForbidden)
	}
	return a, nil
}

// storeErr keeps domain sentinels intact and folds infrastructure failures
// into ErrUnavailable so a timed-out store call is never mistaken for a
// deterministic rejection.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUnavailable)
}
