package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

func (h *AnalyticsHandler) VehicleScans(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	year := parseInt(r.URL.Query().Get("year"), time.Now().Year())
	counts, err := h.analytics.ScansByMonth(r.Context(), year, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "months": counts})
}

func (h *AnalyticsHandler) ExportVehicleScans(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	year := parseInt(r.URL.Query().Get("year"), time.Now().Year())
	counts, err := h.analytics.ScansByMonth(r.Context(), year, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := GenerateScanReportExport(year, counts)
	if err != nil {
		h.logger.Error("scan report export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "export failed"})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="vehicle-scans-%d.xlsx"`, year))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
