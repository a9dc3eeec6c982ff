package application

import (
	"context"
	"errors"
	"time"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
	residentrepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/infrastructure/postgres"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Service handles resident roster use cases. Non-admin callers only ever
// see households their scope allows; the scope comes in on the context,
// never from ambient session state.
type Service struct {
	repo  *residentrepo.Repository
	clock Clock
}

// NewService constructs a resident service.
func NewService(repo *residentrepo.Repository, clock Clock) (*Service, error) {
	if repo == nil {
		return nil, errors.New("resident service: nil repo")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{repo: repo, clock: clock}, nil
}

// List returns the roster visible to the caller, newest first.
func (s *Service) List(ctx context.Context, search string) ([]residents.Resident, error) {
	filter := residentrepo.Filter{Search: search}
	scope := auth.ScopeFromContext(ctx)
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && scope.IsRestricted() {
		filter.Block = scope.Block
		filter.HouseNumber = scope.HouseNumber
	}
	return s.repo.List(ctx, filter)
}

// Get fetches one resident, enforcing the caller's scope.
func (s *Service) Get(ctx context.Context, id string) (*residents.Resident, error) {
	resident, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := auth.ScopeFromContext(ctx)
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && !scope.AllowsHousehold(resident.Block, resident.HouseNumber) {
		return nil, residents.ErrNotFound
	}
	return resident, nil
}

// Create validates and stores a new resident record.
func (s *Service) Create(ctx context.Context, resident *residents.Resident) error {
	if resident == nil {
		return errors.New("resident service: nil resident")
	}
	if err := resident.Validate(); err != nil {
		metrics.CountResidentMutation("create", metrics.ResultError)
		return err
	}
	if err := s.repo.Create(ctx, resident); err != nil {
		metrics.CountResidentMutation("create", metrics.ResultError)
		return err
	}
	metrics.CountResidentMutation("create", metrics.ResultSuccess)
	return nil
}

// Update validates and replaces an existing record.
func (s *Service) Update(ctx context.Context, resident *residents.Resident) error {
	if resident == nil || resident.ID == "" {
		return errors.New("resident service: missing id")
	}
	if err := resident.Validate(); err != nil {
		metrics.CountResidentMutation("update", metrics.ResultError)
		return err
	}
	if err := s.repo.Update(ctx, resident); err != nil {
		metrics.CountResidentMutation("update", metrics.ResultError)
		return err
	}
	metrics.CountResidentMutation("update", metrics.ResultSuccess)
	return nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("resident service: missing id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.CountResidentMutation("delete", metrics.ResultError)
		return err
	}
	metrics.CountResidentMutation("delete", metrics.ResultSuccess)
	return nil
}

// Stats aggregates the dashboard summary over the visible roster.
func (s *Service) Stats(ctx context.Context) (residents.Stats, error) {
	list, err := s.List(ctx, "")
	if err != nil {
		return residents.Stats{}, err
	}
	return residents.ComputeStats(list, s.clock.Now()), nil
}

// BulkCreate stores a batch of imported records. The batch is all-or-
// nothing only per record: a bad row is skipped and reported, matching the
// fail-soft import behavior of the rest of the system.
func (s *Service) BulkCreate(ctx context.Context, batch []residents.Resident) (int, []error) {
	var failures []error
	created := 0
	for i := range batch {
		if err := s.Create(ctx, &batch[i]); err != nil {
			failures = append(failures, err)
			continue
		}
		created++
	}
	return created, failures
}
