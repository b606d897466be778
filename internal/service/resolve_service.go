package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
)

// ResolveService composes the read-only public view of a vehicle: the
// checkpoint page behind the QR code. Only a missing vehicle is an error;
// everything else renders as absent.
type ResolveService struct {
	vehicles    repository.VehiclesRepo
	assignments repository.AssignmentsRepo
	directory   repository.DirectoryRepo
	logger      *zap.Logger
}

func NewResolveService(vehicles repository.VehiclesRepo, assignments repository.AssignmentsRepo, directory repository.DirectoryRepo, logger *zap.Logger) *ResolveService {
	return &ResolveService{
		vehicles:    vehicles,
		assignments: assignments,
		directory:   directory,
		logger:      logger,
	}
}

// PublicAssignmentView is the assignment subset shown at a checkpoint.
type PublicAssignmentView struct {
	Destination string    `json:"destination"`
	Purpose     string    `json:"purpose"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicVehicleView is the full resolved page payload.
type PublicVehicleView struct {
	VehicleID         string                `json:"vehicle_id"`
	CaseNumber        string                `json:"case_number"`
	PlateNumber       string                `json:"plate_number"`
	VehicleType       string                `json:"vehicle_type"`
	Status            domain.VehicleStatus  `json:"status"`
	Notes             *string               `json:"notes,omitempty"`
	InsuranceDocument *string               `json:"insurance_document,omitempty"`
	OrganizationName  string                `json:"organization_name,omitempty"`
	DriverDisplayName string                `json:"driver_display_name,omitempty"`
	Assignment        *PublicAssignmentView `json:"assignment,omitempty"`
}

// Resolve assembles the public view. Degrades gracefully: a failed reference
// lookup drops that field instead of failing the page.
func (s *ResolveService) Resolve(ctx context.Context, vehicleID string) (*PublicVehicleView, error) {
	v, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("resolve vehicle", err)
	}

	view := &PublicVehicleView{
		VehicleID:         v.VehicleID,
		CaseNumber:        v.CaseNumber,
		PlateNumber:       v.PlateNumber,
		VehicleType:       v.VehicleType,
		Status:            v.Status,
		Notes:             v.Notes,
		InsuranceDocument: v.InsuranceDocument,
	}

	if org, err := s.directory.GetOrganization(ctx, v.OrganizationID); err == nil {
		view.OrganizationName = org.Name
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("resolve: organization lookup failed",
			zap.String("organization_id", v.OrganizationID), zap.Error(err))
	}

	a, err := s.assignments.LatestForVehicle(ctx, vehicleID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("resolve: assignment lookup failed",
				zap.String("vehicle_id", vehicleID), zap.Error(err))
		}
		return view, nil
	}

	view.Assignment = &PublicAssignmentView{
		Destination: a.Destination,
		Purpose:     a.Purpose,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
	}

	if p, err := s.directory.GetProfile(ctx, a.DriverID); err == nil {
		view.DriverDisplayName = p.BestName()
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("resolve: driver profile lookup failed",
			zap.String("driver_id", a.DriverID), zap.Error(err))
	}

	return view, nil
}
