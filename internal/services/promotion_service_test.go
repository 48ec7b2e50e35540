package services

import "testing"

func TestPromotionLookupNormalisesCode(t *testing.T) {
	svc := NewPromotionService()

	promotion, ok := svc.Lookup("  promo10 ")
	if !ok {
		t.Fatalf("Lookup did not find PROMO10")
	}
	if promotion.Code != "PROMO10" {
		t.Fatalf("Code = %q, want PROMO10", promotion.Code)
	}

	if _, ok := svc.Lookup("NOPE"); ok {
		t.Fatalf("Lookup matched an unknown code")
	}
}

func TestPromotionDiscountFor(t *testing.T) {
	svc := NewPromotionService()

	cases := []struct {
		name     string
		code     string
		subtotal int64
		fees     int64
		want     int64
	}{
		{"percent of subtotal", "PROMO10", 10000, 400, 1000},
		{"percent rounds half up", "PROMO10", 1850, 157, 185},
		{"waives fees", "FREEFEE", 10000, 400, 400},
		{"waives zero fees", "FREEFEE", 0, 0, 0},
		{"fixed amount", "FIX5", 10000, 400, 500},
		{"fixed needs a subtotal", "FIX5", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			promotion, ok := svc.Lookup(tc.code)
			if !ok {
				t.Fatalf("Lookup(%q) missed", tc.code)
			}
			if got := svc.DiscountFor(promotion, tc.subtotal, tc.fees); got != tc.want {
				t.Fatalf("DiscountFor = %d, want %d", got, tc.want)
			}
		})
	}
}
