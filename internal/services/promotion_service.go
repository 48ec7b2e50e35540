package services

import (
	"strings"

	domain "github.com/eventloft/api/internal/domain"
)

// The storefront ships a fixed set of promotion codes. Each entry maps a code
// to a pure pricing formula; adding a promotion means adding a row here and a
// case in DiscountFor.
var builtinPromotions = map[string]Promotion{
	"PROMO10": {Code: "PROMO10", Kind: PromotionPercentSubtotal, Value: 1000},
	"FREEFEE": {Code: "FREEFEE", Kind: PromotionWaiveFees},
	"FIX5":    {Code: "FIX5", Kind: PromotionFixedAmount, Value: 500},
}

type promotionService struct{}

// NewPromotionService constructs the built-in promotion catalog.
func NewPromotionService() PromotionService {
	return &promotionService{}
}

// Lookup resolves a normalised code against the built-in set.
func (s *promotionService) Lookup(code string) (Promotion, bool) {
	promotion, ok := builtinPromotions[strings.ToUpper(strings.TrimSpace(code))]
	return promotion, ok
}

// DiscountFor computes the discount amount a promotion grants for the given
// subtotal and fees. The result is not clamped; totals calculation bounds it.
func (s *promotionService) DiscountFor(promotion Promotion, subtotal, fees int64) int64 {
	switch promotion.Kind {
	case PromotionPercentSubtotal:
		return domain.PercentOf(subtotal, promotion.Value)
	case PromotionWaiveFees:
		return fees
	case PromotionFixedAmount:
		if subtotal <= 0 {
			return 0
		}
		return promotion.Value
	default:
		return 0
	}
}
