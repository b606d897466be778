package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/policy"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
)

// AnalyticsService serves the dashboard scan chart and its export.
type AnalyticsService struct {
	scans  repository.ScanEventsRepo
	logger *zap.Logger
}

func NewAnalyticsService(scans repository.ScanEventsRepo, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{scans: scans, logger: logger}
}

// ScansByMonth returns all twelve month buckets for the year, zero-filled,
// scoped to the caller's organization unless they can view all organizations.
func (s *AnalyticsService) ScansByMonth(ctx context.Context, year int, caller policy.Caller) ([]domain.MonthlyScanCount, error) {
	orgFilter := caller.OrganizationID
	if caller.Caps.CanViewAllOrganizations {
		orgFilter = ""
	}

	counts, err := s.scans.CountByMonth(ctx, year, orgFilter)
	if err != nil {
		return nil, storeErr("scans by month", err)
	}

	byMonth := map[int]int{}
	for _, c := range counts {
		byMonth[c.Month] = c.Count
	}
	out := make([]domain.MonthlyScanCount, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, domain.MonthlyScanCount{Year: year, Month: m, Count: byMonth[m]})
	}
	return out, nil
}
