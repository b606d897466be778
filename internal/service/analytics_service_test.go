package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
	"github.com/kenkentupal/travel-registry-system/internal/policy"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
)

func TestScansByMonth_ZeroFilledAndScoped(t *testing.T) {
	vehicles := repository.NewMemoryVehiclesRepo()
	scans := repository.NewMemoryScanEventsRepo(vehicles)
	svc := NewAnalyticsService(scans, zap.NewNop())
	ctx := context.Background()

	va := &domain.Vehicle{CaseNumber: "C1", PlateNumber: "P1", VehicleType: "Van", OrganizationID: "org-a", CreatedBy: "u"}
	vb := &domain.Vehicle{CaseNumber: "C2", PlateNumber: "P2", VehicleType: "Bus", OrganizationID: "org-b", CreatedBy: "u"}
	require.NoError(t, vehicles.CreateVehicle(ctx, va))
	require.NoError(t, vehicles.CreateVehicle(ctx, vb))

	at := func(month time.Month) time.Time {
		return time.Date(2026, month, 10, 12, 0, 0, 0, time.UTC)
	}
	for _, ev := range []domain.ScanEvent{
		{VehicleID: va.VehicleID, IP: "203.0.113.9", ScannedAt: at(time.January)},
		{VehicleID: va.VehicleID, IP: "203.0.113.9", ScannedAt: at(time.January)},
		{VehicleID: va.VehicleID, IP: "203.0.113.9", ScannedAt: at(time.March)},
		{VehicleID: vb.VehicleID, IP: "198.51.100.7", ScannedAt: at(time.March)},
	} {
		ev := ev
		require.NoError(t, scans.InsertScanEvent(ctx, &ev))
	}

	// Member of org-a sees only org-a scans, zero-filled across 12 months.
	counts, err := svc.ScansByMonth(ctx, 2026, caller(policy.RoleMember, "u-m", "org-a"))
	require.NoError(t, err)
	require.Len(t, counts, 12)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 0, counts[1].Count)
	assert.Equal(t, 1, counts[2].Count)

	// CEO sees all organizations.
	counts, err = svc.ScansByMonth(ctx, 2026, caller(policy.RoleCEO, "u-ceo", "org-a"))
	require.NoError(t, err)
	assert.Equal(t, 2, counts[2].Count)
}
