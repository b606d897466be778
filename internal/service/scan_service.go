package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/config"
	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
	"github.com/kenkentupal/travel-registry-system/internal/store"
)

// ScanService gates the anonymous scan side channel behind two independent
// throttles layered on the shared cache:
//
//   - "ratelimit:<origin>": at most RateLimit recorded scans per origin per
//     RateWindow (fixed window).
//   - "dedup:<origin>:<vehicle>": repeat scans of the same vehicle within
//     DedupWindow are suppressed. Courtesy dedup, not a security control.
//
// Throttles gate recording only — the public page itself is never blocked.
// Cache outages fail open for resolution and fail closed for recording: the
// event write is skipped and logged, never surfaced to the caller.
type ScanService struct {
	kv       store.KV
	vehicles repository.VehiclesRepo
	scans    repository.ScanEventsRepo
	cfg      config.ScanConfig
	logger   *zap.Logger

	// recordTimeout bounds the async event insert independently of the
	// originating request.
	recordTimeout time.Duration
	wg            sync.WaitGroup
}

func NewScanService(kv store.KV, vehicles repository.VehiclesRepo, scans repository.ScanEventsRepo, cfg config.ScanConfig, logger *zap.Logger) *ScanService {
	return &ScanService{
		kv:            kv,
		vehicles:      vehicles,
		scans:         scans,
		cfg:           cfg,
		logger:        logger,
		recordTimeout: 5 * time.Second,
	}
}

// TrackScan handles one POST from the public view. The only error it returns
// is domain.ErrNotFound for an unknown vehicle; every throttle or
// infrastructure outcome degrades to "accepted, possibly not recorded".
// Authenticated callers never produce a ScanEvent.
func (s *ScanService) TrackScan(ctx context.Context, vehicleID, origin, userAgent string, authenticated bool) error {
	if _, err := s.vehicles.GetVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		// Store outage: the page is already being served by the resolution
		// path; just skip analytics.
		s.logger.Warn("scan gate: vehicle lookup failed, skipping record",
			zap.String("vehicle_id", vehicleID), zap.Error(err))
		return nil
	}

	if authenticated {
		// Staff previewing the public page must not pollute scan analytics.
		return nil
	}

	n, err := s.kv.IncrWindow(ctx, "ratelimit:"+origin, s.cfg.RateWindow)
	if err != nil {
		s.logger.Warn("scan gate: cache unavailable, scan not recorded",
			zap.String("origin", origin), zap.Error(err))
		return nil
	}
	if n > s.cfg.RateLimit {
		s.logger.Debug("scan gate: origin over rate limit",
			zap.String("origin", origin), zap.Int64("count", n))
		return nil
	}

	admitted, err := s.kv.SetIfAbsent(ctx, "dedup:"+origin+":"+vehicleID, "1", s.cfg.DedupWindow)
	if err != nil {
		s.logger.Warn("scan gate: cache unavailable, scan not recorded",
			zap.String("origin", origin), zap.Error(err))
		return nil
	}
	if !admitted {
		// Same origin scanned this vehicle within the dedup window.
		return nil
	}

	ev := &domain.ScanEvent{
		VehicleID: vehicleID,
		IP:        origin,
		UserAgent: userAgent,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.recordTimeout)
		defer cancel()
		if err := s.scans.InsertScanEvent(ctx, ev); err != nil {
			s.logger.Warn("scan record failed",
				zap.String("vehicle_id", ev.VehicleID), zap.Error(err))
		}
	}()
	return nil
}

// Flush waits for in-flight scan records. Called on shutdown and by tests.
func (s *ScanService) Flush() {
	s.wg.Wait()
}
