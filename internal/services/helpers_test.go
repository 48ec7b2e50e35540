package services

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "github.com/eventloft/api/internal/domain"
)

var testTime = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

type fakeRepoError struct {
	msg         string
	notFound    bool
	unavailable bool
}

func (e *fakeRepoError) Error() string       { return e.msg }
func (e *fakeRepoError) IsNotFound() bool    { return e.notFound }
func (e *fakeRepoError) IsConflict() bool    { return false }
func (e *fakeRepoError) IsUnavailable() bool { return e.unavailable }

func notFoundErr(msg string) error    { return &fakeRepoError{msg: msg, notFound: true} }
func unavailableErr(msg string) error { return &fakeRepoError{msg: msg, unavailable: true} }

type fakeTicketTypeRepo struct {
	mu        sync.Mutex
	snapshots map[string]domain.TicketTypeSnapshot
	err       error
	gets      int
}

func newFakeTicketTypeRepo(snapshots ...domain.TicketTypeSnapshot) *fakeTicketTypeRepo {
	repo := &fakeTicketTypeRepo{snapshots: make(map[string]domain.TicketTypeSnapshot)}
	for _, snapshot := range snapshots {
		repo.snapshots[snapshot.ID] = snapshot
	}
	return repo
}

func (r *fakeTicketTypeRepo) put(snapshot domain.TicketTypeSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.ID] = snapshot
}

func (r *fakeTicketTypeRepo) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, id)
}

func (r *fakeTicketTypeRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

func (r *fakeTicketTypeRepo) GetTicketType(_ context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.err != nil {
		return domain.TicketTypeSnapshot{}, r.err
	}
	snapshot, ok := r.snapshots[ticketTypeID]
	if !ok {
		return domain.TicketTypeSnapshot{}, notFoundErr("ticket type " + ticketTypeID)
	}
	return snapshot, nil
}

func (r *fakeTicketTypeRepo) ListTicketTypesByEvent(_ context.Context, eventID string) ([]domain.TicketTypeSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.TicketTypeSnapshot
	for _, snapshot := range r.snapshots {
		if snapshot.EventID == eventID {
			out = append(out, snapshot)
		}
	}
	return out, nil
}

type fakeDiscountRepo struct {
	mu        sync.Mutex
	byCode    map[string]domain.Discount
	automatic []domain.Discount
	err       error
}

func newFakeDiscountRepo(discounts ...domain.Discount) *fakeDiscountRepo {
	repo := &fakeDiscountRepo{byCode: make(map[string]domain.Discount)}
	for _, discount := range discounts {
		if discount.Code == "" {
			repo.automatic = append(repo.automatic, discount)
		} else {
			repo.byCode[discount.Code] = discount
		}
	}
	return repo
}

func (r *fakeDiscountRepo) FindByCode(_ context.Context, code string) (domain.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Discount{}, r.err
	}
	discount, ok := r.byCode[code]
	if !ok {
		return domain.Discount{}, notFoundErr("discount " + code)
	}
	return discount, nil
}

func (r *fakeDiscountRepo) ListAutomatic(_ context.Context, _ time.Time) ([]domain.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Discount(nil), r.automatic...), nil
}

func onSaleSnapshot(id string, unitPrice int64) domain.TicketTypeSnapshot {
	return domain.TicketTypeSnapshot{
		ID:          id,
		Name:        "General Admission " + id,
		EventID:     "evt-1",
		EventTitle:  "Harbor Lights Festival",
		CategoryID:  "cat-music",
		UnitPrice:   unitPrice,
		OnSale:      true,
		MinPerOrder: 1,
		MaxPerOrder: 10,
		RetrievedAt: testTime,
	}
}

func newTestCartService(t *testing.T, catalogRepo *fakeTicketTypeRepo, discountRepo *fakeDiscountRepo, auto bool) (CartService, *CartStore) {
	t.Helper()
	store := NewCartStore(CartStoreDeps{Clock: fixedClock(testTime)})
	catalog, err := NewCatalogService(CatalogServiceDeps{
		TicketTypes: catalogRepo,
		Clock:       fixedClock(testTime),
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	var resolver DiscountResolver
	if discountRepo != nil {
		resolver, err = NewDiscountService(DiscountServiceDeps{
			Discounts: discountRepo,
			Clock:     fixedClock(testTime),
		})
		if err != nil {
			t.Fatalf("NewDiscountService: %v", err)
		}
	}
	svc, err := NewCartService(CartServiceDeps{
		Store:              store,
		Catalog:            catalog,
		Discounts:          resolver,
		Promotions:         NewPromotionService(),
		AutomaticDiscounts: auto,
		Clock:              fixedClock(testTime),
	})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}
	return svc, store
}
