package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/eventloft/api/internal/domain"
	"github.com/eventloft/api/internal/repositories"
)

var errCatalogRepositoryRequired = errors.New("catalog service: ticket type repository is required")

const defaultSnapshotTTL = 30 * time.Second

// CatalogServiceDeps wires the repository and cache tuning for catalog reads.
type CatalogServiceDeps struct {
	TicketTypes repositories.TicketTypeRepository
	CacheTTL    time.Duration
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
}

type cachedSnapshot struct {
	snapshot domain.TicketTypeSnapshot
	storedAt time.Time
}

type catalogService struct {
	repo   repositories.TicketTypeRepository
	ttl    time.Duration
	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu    sync.RWMutex
	cache map[string]cachedSnapshot
}

// NewCatalogService constructs a CatalogService with a short-lived snapshot cache.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.TicketTypes == nil {
		return nil, errCatalogRepositoryRequired
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{
		repo:   deps.TicketTypes,
		ttl:    ttl,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
		cache:  make(map[string]cachedSnapshot),
	}, nil
}

func (s *catalogService) GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error) {
	id := strings.TrimSpace(ticketTypeID)
	if id == "" {
		return domain.TicketTypeSnapshot{}, fmt.Errorf("%w: ticket type id is required", ErrTicketTypeNotFound)
	}

	if snapshot, ok := s.cached(id); ok {
		return snapshot, nil
	}
	return s.fetch(ctx, id)
}

func (s *catalogService) RefreshTicketType(ctx context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error) {
	id := strings.TrimSpace(ticketTypeID)
	if id == "" {
		return domain.TicketTypeSnapshot{}, fmt.Errorf("%w: ticket type id is required", ErrTicketTypeNotFound)
	}
	return s.fetch(ctx, id)
}

func (s *catalogService) EventTicketTypes(ctx context.Context, eventID string) ([]domain.TicketTypeSnapshot, error) {
	trimmed := strings.TrimSpace(eventID)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrCatalogUnavailable)
	}

	snapshots, err := s.repo.ListTicketTypesByEvent(ctx, trimmed)
	if err != nil {
		return nil, s.translateRepoError(ctx, err, trimmed)
	}

	now := s.now()
	s.mu.Lock()
	for _, snapshot := range snapshots {
		s.cache[snapshot.ID] = cachedSnapshot{snapshot: snapshot, storedAt: now}
	}
	s.mu.Unlock()

	return snapshots, nil
}

func (s *catalogService) fetch(ctx context.Context, id string) (domain.TicketTypeSnapshot, error) {
	snapshot, err := s.repo.GetTicketType(ctx, id)
	if err != nil {
		return domain.TicketTypeSnapshot{}, s.translateRepoError(ctx, err, id)
	}

	s.mu.Lock()
	s.cache[id] = cachedSnapshot{snapshot: snapshot, storedAt: s.now()}
	s.mu.Unlock()

	return snapshot, nil
}

func (s *catalogService) cached(id string) (domain.TicketTypeSnapshot, bool) {
	s.mu.RLock()
	entry, ok := s.cache[id]
	s.mu.RUnlock()
	if !ok {
		return domain.TicketTypeSnapshot{}, false
	}
	if s.now().Sub(entry.storedAt) > s.ttl {
		return domain.TicketTypeSnapshot{}, false
	}
	return entry.snapshot, true
}

func (s *catalogService) translateRepoError(ctx context.Context, err error, id string) error {
	switch {
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %s", ErrTicketTypeNotFound, id)
	case repositories.IsUnavailable(err):
		s.logger(ctx, "catalog.backend_unavailable", map[string]any{
			"ticketTypeID": id,
			"error":        err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return err
}
