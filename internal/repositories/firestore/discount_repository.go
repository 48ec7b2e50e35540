package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/eventloft/api/internal/domain"
	pfirestore "github.com/eventloft/api/internal/platform/firestore"
	"github.com/eventloft/api/internal/repositories"
)

const discountsCollection = "discounts"

type discountDocument struct {
	Code              string     `firestore:"code"`
	Type              string     `firestore:"type"`
	Value             int64      `firestore:"value"`
	EventID           string     `firestore:"eventId"`
	CategoryID        string     `firestore:"categoryId"`
	TicketTypeIDs     []string   `firestore:"ticketTypeIds"`
	QuantityAvailable *int       `firestore:"quantityAvailable"`
	QuantitySold      int        `firestore:"quantitySold"`
	StartsAt          *time.Time `firestore:"startsAt"`
	EndsAt            *time.Time `firestore:"endsAt"`
}

func (d discountDocument) toDomain(id string) domain.Discount {
	discount := domain.Discount{
		ID:            id,
		Code:          strings.ToUpper(strings.TrimSpace(d.Code)),
		Type:          domain.DiscountType(strings.TrimSpace(d.Type)),
		Value:         d.Value,
		EventID:       strings.TrimSpace(d.EventID),
		CategoryID:    strings.TrimSpace(d.CategoryID),
		TicketTypeIDs: append([]string(nil), d.TicketTypeIDs...),
		QuantitySold:  d.QuantitySold,
	}
	if d.QuantityAvailable != nil {
		available := *d.QuantityAvailable
		discount.QuantityAvailable = &available
	}
	if d.StartsAt != nil {
		discount.StartsAt = d.StartsAt.UTC()
	}
	if d.EndsAt != nil {
		discount.EndsAt = d.EndsAt.UTC()
	}
	return discount
}

// DiscountRepository reads discount records from Firestore.
type DiscountRepository struct {
	base *pfirestore.BaseRepository[discountDocument]
}

var _ repositories.DiscountRepository = (*DiscountRepository)(nil)

// NewDiscountRepository constructs the repository bound to the discounts collection.
func NewDiscountRepository(provider *pfirestore.Provider) (*DiscountRepository, error) {
	if provider == nil {
		return nil, errors.New("discount repository requires firestore provider")
	}
	return &DiscountRepository{
		base: pfirestore.NewBaseRepository[discountDocument](provider, discountsCollection, nil),
	}, nil
}

// FindByCode returns the discount for the normalised code.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (domain.Discount, error) {
	if r == nil || r.base == nil {
		return domain.Discount{}, errors.New("discount repository not initialised")
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.Discount{}, pfirestore.NewNotFound("discounts.find_by_code", "discount code is empty")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("code", "==", normalized).Limit(1)
	})
	if err != nil {
		return domain.Discount{}, err
	}
	if len(docs) == 0 {
		return domain.Discount{}, pfirestore.NewNotFound("discounts.find_by_code", fmt.Sprintf("discount %s not found", normalized))
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

// ListAutomatic returns codeless discounts redeemable at the given instant.
// The window check runs client side; Firestore cannot combine nullable range
// filters on two fields in a single query.
func (r *DiscountRepository) ListAutomatic(ctx context.Context, now time.Time) ([]domain.Discount, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("discount repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("code", "==", "")
	})
	if err != nil {
		return nil, err
	}

	discounts := make([]domain.Discount, 0, len(docs))
	for _, doc := range docs {
		discount := doc.Data.toDomain(doc.ID)
		if !discount.ActiveAt(now.UTC()) {
			continue
		}
		discounts = append(discounts, discount)
	}
	return discounts, nil
}
