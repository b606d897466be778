package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

// Memory repositories back local dev (DB disabled) and the service-layer
// tests. They honor the same conditional-write contracts as the Postgres
// implementations, serialized by a mutex instead of row conditions.

type MemoryVehiclesRepo struct {
	mu       sync.RWMutex
	vehicles map[string]domain.Vehicle // vehicleID -> Vehicle
}

func NewMemoryVehiclesRepo() *MemoryVehiclesRepo {
	return &MemoryVehiclesRepo{vehicles: map[string]domain.Vehicle{}}
}

func (r *MemoryVehiclesRepo) CreateVehicle(_ context.Context, v *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.VehicleID == "" {
		v.VehicleID = uuid.New().String()
	}
	v.Status = domain.StatusPending
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.vehicles[v.VehicleID] = *v
	return nil
}

func (r *MemoryVehiclesRepo) GetVehicle(_ context.Context, vehicleID string) (*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[vehicleID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *MemoryVehiclesRepo) ListVehicles(_ context.Context, orgID string, page, size int) ([]domain.Vehicle, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		if orgID != "" && v.OrganizationID != orgID {
			continue
		}
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryVehiclesRepo) UpdateStatusFromPending(_ context.Context, vehicleID string, target domain.VehicleStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[vehicleID]
	if !ok || v.Status != domain.StatusPending {
		return false, nil
	}
	v.Status = target
	r.vehicles[vehicleID] = v
	return true, nil
}

type MemoryAssignmentsRepo struct {
	mu          sync.RWMutex
	vehicles    *MemoryVehiclesRepo
	assignments map[string]domain.Assignment // assignmentID -> Assignment
}

// NewMemoryAssignmentsRepo needs the vehicles repo to reproduce the guarded
// insert (status + zero-rows check happen under one lock).
func NewMemoryAssignmentsRepo(vehicles *MemoryVehiclesRepo) *MemoryAssignmentsRepo {
	return &MemoryAssignmentsRepo{
		vehicles:    vehicles,
		assignments: map[string]domain.Assignment{},
	}
}

func (r *MemoryAssignmentsRepo) CreateIfUnassigned(ctx context.Context, a *domain.Assignment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.vehicles.GetVehicle(ctx, a.VehicleID)
	if err != nil || v.Status != domain.StatusApproved {
		return false, nil
	}
	for _, existing := range r.assignments {
		if existing.VehicleID == a.VehicleID {
			return false, nil
		}
	}

	if a.AssignmentID == "" {
		a.AssignmentID = uuid.New().String()
	}
	a.OrganizationID = v.OrganizationID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.assignments[a.AssignmentID] = *a
	return true, nil
}

func (r *MemoryAssignmentsRepo) LatestForVehicle(_ context.Context, vehicleID string) (*domain.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Assignment
	for _, a := range r.assignments {
		if a.VehicleID != vehicleID {
			continue
		}
		a := a
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = &a
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (r *MemoryAssignmentsRepo) DeleteByID(_ context.Context, assignmentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assignments[assignmentID]; !ok {
		return false, nil
	}
	delete(r.assignments, assignmentID)
	return true, nil
}

type MemoryScanEventsRepo struct {
	mu       sync.RWMutex
	vehicles *MemoryVehiclesRepo
	events   []domain.ScanEvent
}

func NewMemoryScanEventsRepo(vehicles *MemoryVehiclesRepo) *MemoryScanEventsRepo {
	return &MemoryScanEventsRepo{vehicles: vehicles}
}

func (r *MemoryScanEventsRepo) InsertScanEvent(_ context.Context, ev *domain.ScanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.ScanID == "" {
		ev.ScanID = uuid.New().String()
	}
	if ev.ScannedAt.IsZero() {
		ev.ScannedAt = time.Now().UTC()
	}
	r.events = append(r.events, *ev)
	return nil
}

// Events returns a copy of everything recorded so far (tests only).
func (r *MemoryScanEventsRepo) Events() []domain.ScanEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ScanEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *MemoryScanEventsRepo) CountByMonth(ctx context.Context, year int, orgID string) ([]domain.MonthlyScanCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[int]int{}
	for _, ev := range r.events {
		if ev.ScannedAt.Year() != year {
			continue
		}
		if orgID != "" {
			v, err := r.vehicles.GetVehicle(ctx, ev.VehicleID)
			if err != nil || v.OrganizationID != orgID {
				continue
			}
		}
		counts[int(ev.ScannedAt.Month())]++
	}

	months := make([]int, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Ints(months)

	out := make([]domain.MonthlyScanCount, 0, len(months))
	for _, m := range months {
		out = append(out, domain.MonthlyScanCount{Year: year, Month: m, Count: counts[m]})
	}
	return out, nil
}

type MemoryDirectoryRepo struct {
	mu       sync.RWMutex
	orgs     map[string]domain.Organization
	profiles map[string]domain.Profile
}

func NewMemoryDirectoryRepo() *MemoryDirectoryRepo {
	return &MemoryDirectoryRepo{
		orgs:     map[string]domain.Organization{},
		profiles: map[string]domain.Profile{},
	}
}

func (r *MemoryDirectoryRepo) PutOrganization(o domain.Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgs[o.OrganizationID] = o
}

func (r *MemoryDirectoryRepo) PutProfile(p domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
}

func (r *MemoryDirectoryRepo) GetOrganization(_ context.Context, orgID string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orgs[orgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *MemoryDirectoryRepo) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
