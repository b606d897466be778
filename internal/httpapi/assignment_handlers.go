package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/service"
)

type AssignmentsHandler struct {
	lifecycle *service.LifecycleService
	logger    *zap.Logger
}

func NewAssignmentsHandler(lifecycle *service.LifecycleService, logger *zap.Logger) *AssignmentsHandler {
	return &AssignmentsHandler{lifecycle: lifecycle, logger: logger}
}

type createAssignmentPayload struct {
	VehicleID   string  `json:"vehicle_id"`
	DriverID    string  `json:"driver_id"`
	Destination string  `json:"destination"`
	Purpose     string  `json:"purpose"`
	Notes       *string `json:"notes"`
}

func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var payload createAssignmentPayload
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	if payload.VehicleID == "" || payload.DriverID == "" || payload.Destination == "" || payload.Purpose == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing required fields"})
		return
	}

	a, err := h.lifecycle.CreateAssignment(r.Context(), service.CreateAssignmentRequest{
		VehicleID:   payload.VehicleID,
		DriverID:    payload.DriverID,
		Destination: payload.Destination,
		Purpose:     payload.Purpose,
		Notes:       payload.Notes,
	}, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignmentJSON(a))
}

func (h *AssignmentsHandler) Get(w http.ResponseWriter, r *http.Request, vehicleID string) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	a, err := h.lifecycle.CurrentAssignment(r.Context(), vehicleID, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentJSON(a))
}

func (h *AssignmentsHandler) Delete(w http.ResponseWriter, r *http.Request, vehicleID string) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	if err := h.lifecycle.DeleteAssignment(r.Context(), vehicleID, caller); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func assignmentJSON(a *domain.Assignment) map[string]any {
	return map[string]any{
		"assignment_id":   a.AssignmentID,
		"vehicle_id":      a.VehicleID,
		"driver_id":       a.DriverID,
		"destination":     a.Destination,
		"purpose":         a.Purpose,
		"notes":           a.Notes,
		"organization_id": a.OrganizationID,
		"generated_by":    a.GeneratedBy,
		"created_at":      a.CreatedAt,
	}
}
