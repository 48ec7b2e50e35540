package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/eventloft/api/internal/domain"
	"github.com/eventloft/api/internal/repositories"
)

var errDiscountRepositoryRequired = errors.New("discount service: repository is required")

// DiscountServiceDeps wires the repository backing discount resolution.
type DiscountServiceDeps struct {
	Discounts repositories.DiscountRepository
	Clock     func() time.Time
	Logger    func(context.Context, string, map[string]any)
}

type discountService struct {
	repo   repositories.DiscountRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewDiscountService constructs a DiscountResolver backed by the catalog.
func NewDiscountService(deps DiscountServiceDeps) (DiscountResolver, error) {
	if deps.Discounts == nil {
		return nil, errDiscountRepositoryRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &discountService{
		repo:   deps.Discounts,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

func (s *discountService) ResolveCode(ctx context.Context, code string) (domain.Discount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.Discount{}, fmt.Errorf("%w: code is empty", ErrDiscountNotFound)
	}

	discount, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		switch {
		case repositories.IsNotFound(err):
			return domain.Discount{}, fmt.Errorf("%w: %s", ErrDiscountNotFound, normalized)
		case repositories.IsUnavailable(err):
			s.logger(ctx, "discount.backend_unavailable", map[string]any{
				"code":  normalized,
				"error": err.Error(),
			})
			return domain.Discount{}, fmt.Errorf("%w: %v", ErrDiscountUnavailable, err)
		}
		return domain.Discount{}, err
	}
	return discount, nil
}

// AmountFor evaluates the discount against the cart lines. Percentage
// discounts apply to the sum of eligible line totals; fixed-amount discounts
// require at least one eligible line.
func (s *discountService) AmountFor(discount domain.Discount, items []domain.CartItem) int64 {
	criteria := domain.NewDiscountCriteria(discount)
	eligible := criteria.EligibleSubtotal(items)
	if eligible <= 0 {
		return 0
	}

	switch discount.Type {
	case domain.DiscountPercentage:
		return domain.PercentOf(eligible, discount.Value)
	case domain.DiscountFixedAmount:
		return discount.Value
	default:
		return 0
	}
}

func (s *discountService) BestAutomatic(ctx context.Context, items []domain.CartItem) (*domain.AppliedDiscount, error) {
	if len(items) == 0 {
		return nil, nil
	}

	now := s.now()
	discounts, err := s.repo.ListAutomatic(ctx, now)
	if err != nil {
		if repositories.IsUnavailable(err) {
			s.logger(ctx, "discount.backend_unavailable", map[string]any{"error": err.Error()})
			return nil, fmt.Errorf("%w: %v", ErrDiscountUnavailable, err)
		}
		return nil, err
	}

	var best *domain.AppliedDiscount
	for _, discount := range discounts {
		if !discount.ActiveAt(now) {
			continue
		}
		amount := s.AmountFor(discount, items)
		if amount <= 0 {
			continue
		}
		if best == nil || amount > best.Amount {
			best = &domain.AppliedDiscount{
				Code:   discount.ID,
				Source: domain.DiscountSourceAutomatic,
				Amount: amount,
			}
		}
	}
	return best, nil
}
