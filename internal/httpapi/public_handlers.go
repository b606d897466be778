package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/service"
)

// PublicHandler serves the anonymous checkpoint surface: the resolved view
// behind the QR code and the scan side channel the view fires.
type PublicHandler struct {
	resolve *service.ResolveService
	scans   *service.ScanService
	logger  *zap.Logger
}

func NewPublicHandler(resolve *service.ResolveService, scans *service.ScanService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{resolve: resolve, scans: scans, logger: logger}
}

func (h *PublicHandler) Resolve(w http.ResponseWriter, r *http.Request, vehicleID string) {
	view, err := h.resolve.Resolve(r.Context(), vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Scan never exposes throttle outcomes: every admissible request is a 204,
// whether or not an event was recorded. Authenticated staff get a no-op.
func (h *PublicHandler) Scan(w http.ResponseWriter, r *http.Request, vehicleID string) {
	_, authenticated := CallerFrom(r.Context())

	err := h.scans.TrackScan(r.Context(), vehicleID, clientIP(r), r.UserAgent(), authenticated)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
