package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/eventloft/api/internal/domain"
	pfirestore "github.com/eventloft/api/internal/platform/firestore"
	"github.com/eventloft/api/internal/repositories"
)

const ticketTypesCollection = "ticketTypes"

// ticketTypeDocument mirrors the catalog schema written by the admin backend.
type ticketTypeDocument struct {
	Name         string     `firestore:"name"`
	EventID      string     `firestore:"eventId"`
	EventTitle   string     `firestore:"eventTitle"`
	CategoryID   string     `firestore:"categoryId"`
	UnitPrice    int64      `firestore:"unitPrice"`
	OnSale       bool       `firestore:"onSale"`
	SaleStartsAt *time.Time `firestore:"saleStartsAt"`
	SaleEndsAt   *time.Time `firestore:"saleEndsAt"`
	Remaining    *int       `firestore:"remainingQuantity"`
	MinPerOrder  int        `firestore:"minPerOrder"`
	MaxPerOrder  int        `firestore:"maxPerOrder"`
}

func (d ticketTypeDocument) toDomain(id string, readTime time.Time) domain.TicketTypeSnapshot {
	snapshot := domain.TicketTypeSnapshot{
		ID:          id,
		Name:        strings.TrimSpace(d.Name),
		EventID:     strings.TrimSpace(d.EventID),
		EventTitle:  strings.TrimSpace(d.EventTitle),
		CategoryID:  strings.TrimSpace(d.CategoryID),
		UnitPrice:   d.UnitPrice,
		OnSale:      d.OnSale,
		MinPerOrder: d.MinPerOrder,
		MaxPerOrder: d.MaxPerOrder,
		RetrievedAt: readTime.UTC(),
	}
	if d.SaleStartsAt != nil {
		snapshot.SaleStartsAt = d.SaleStartsAt.UTC()
	}
	if d.SaleEndsAt != nil {
		snapshot.SaleEndsAt = d.SaleEndsAt.UTC()
	}
	if d.Remaining != nil {
		remaining := *d.Remaining
		if remaining < 0 {
			remaining = 0
		}
		snapshot.RemainingQuantity = &remaining
	}
	return snapshot
}

// TicketTypeRepository reads ticket-type snapshots from Firestore.
type TicketTypeRepository struct {
	base *pfirestore.BaseRepository[ticketTypeDocument]
}

var _ repositories.TicketTypeRepository = (*TicketTypeRepository)(nil)

// NewTicketTypeRepository constructs the repository bound to the catalog collection.
func NewTicketTypeRepository(provider *pfirestore.Provider) (*TicketTypeRepository, error) {
	if provider == nil {
		return nil, errors.New("ticket type repository requires firestore provider")
	}
	return &TicketTypeRepository{
		base: pfirestore.NewBaseRepository[ticketTypeDocument](provider, ticketTypesCollection, nil),
	}, nil
}

// GetTicketType fetches one ticket-type snapshot by document ID.
func (r *TicketTypeRepository) GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error) {
	if r == nil || r.base == nil {
		return domain.TicketTypeSnapshot{}, errors.New("ticket type repository not initialised")
	}
	doc, err := r.base.Get(ctx, strings.TrimSpace(ticketTypeID))
	if err != nil {
		return domain.TicketTypeSnapshot{}, err
	}
	return doc.Data.toDomain(doc.ID, doc.ReadTime), nil
}

// ListTicketTypesByEvent returns every ticket type attached to the event.
func (r *TicketTypeRepository) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketTypeSnapshot, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("ticket type repository not initialised")
	}
	trimmed := strings.TrimSpace(eventID)
	if trimmed == "" {
		return nil, errors.New("ticket type repository: event id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("eventId", "==", trimmed)
	})
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.TicketTypeSnapshot, 0, len(docs))
	for _, doc := range docs {
		snapshots = append(snapshots, doc.Data.toDomain(doc.ID, doc.ReadTime))
	}
	return snapshots, nil
}
