package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/service"
)

type VehiclesHandler struct {
	lifecycle *service.LifecycleService
	logger    *zap.Logger
}

func NewVehiclesHandler(lifecycle *service.LifecycleService, logger *zap.Logger) *VehiclesHandler {
	return &VehiclesHandler{lifecycle: lifecycle, logger: logger}
}

type registerVehiclePayload struct {
	CaseNumber        string  `json:"case_number"`
	PlateNumber       string  `json:"plate_number"`
	VehicleType       string  `json:"vehicle_type"`
	InsuranceDocument *string `json:"insurance_document"`
	Notes             *string `json:"notes"`
}

func (h *VehiclesHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var payload registerVehiclePayload
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	if payload.CaseNumber == "" || payload.PlateNumber == "" || payload.VehicleType == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing required fields"})
		return
	}

	v, err := h.lifecycle.RegisterVehicle(r.Context(), service.RegisterVehicleRequest{
		CaseNumber:        payload.CaseNumber,
		PlateNumber:       payload.PlateNumber,
		VehicleType:       payload.VehicleType,
		InsuranceDocument: payload.InsuranceDocument,
		Notes:             payload.Notes,
	}, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicleJSON(v))
}

func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	page := parseInt(r.URL.Query().Get("page"), 1)
	size := parseInt(r.URL.Query().Get("size"), 20)
	vehicles, total, err := h.lifecycle.ListVehicles(r.Context(), page, size, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, vehicleJSON(&vehicles[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *VehiclesHandler) Get(w http.ResponseWriter, r *http.Request, vehicleID string) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	v, err := h.lifecycle.GetVehicle(r.Context(), vehicleID, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleJSON(v))
}

type setStatusPayload struct {
	Status string `json:"status"`
}

func (h *VehiclesHandler) SetStatus(w http.ResponseWriter, r *http.Request, vehicleID string) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var payload setStatusPayload
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	target := domain.VehicleStatus(payload.Status)
	if target != domain.StatusApproved && target != domain.StatusDeclined {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "status must be Approved or Declined"})
		return
	}

	if err := h.lifecycle.SetStatus(r.Context(), vehicleID, target, caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicle_id": vehicleID, "status": target})
}

func vehicleJSON(v *domain.Vehicle) map[string]any {
	return map[string]any{
		"vehicle_id":         v.VehicleID,
		"case_number":        v.CaseNumber,
		"plate_number":       v.PlateNumber,
		"vehicle_type":       v.VehicleType,
		"organization_id":    v.OrganizationID,
		"status":             v.Status,
		"insurance_document": v.InsuranceDocument,
		"notes":              v.Notes,
		"created_by":         v.CreatedBy,
		"created_at":         v.CreatedAt,
	}
}
