package repositories

import (
	"context"
	"errors"
	"time"

	domain "github.com/eventloft/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// TicketTypeRepository reads ticket-type snapshots from the catalog backend.
// Implementations should return a RepositoryError with IsNotFound when the
// ticket type is absent.
type TicketTypeRepository interface {
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error)
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketTypeSnapshot, error)
}

// DiscountRepository reads discount records. Redemption accounting is owned
// by order finalization and never happens through this interface.
type DiscountRepository interface {
	// FindByCode returns the discount carrying the normalised code. Should
	// return a RepositoryError with IsNotFound when no such code exists.
	FindByCode(ctx context.Context, code string) (domain.Discount, error)
	// ListAutomatic returns codeless discounts redeemable at the given instant.
	ListAutomatic(ctx context.Context, now time.Time) ([]domain.Discount, error)
}

// IsNotFound reports whether err carries repository not-found semantics.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err carries repository outage semantics.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
