package store

import (
	"context"
	"errors"

	"warungku/backend/internal/domain"
)

// ErrValidation marks caller-supplied data that fails a precondition (empty
// required field, non-numeric cost/price, non-positive quantity). The
// operation is rejected before any write. Deleting an id that does not exist
// is NOT an error: deletes are idempotent no-ops. Any other error from a
// Repository is a storage failure and must be treated as fatal for that
// operation.
var ErrValidation = errors.New("validation failed")

// Repository is the persistence surface for items and sales. Implementations
// assign ids on create and never reuse an id after deletion. All mutating
// calls commit before returning, so a subsequent read in the same process
// observes the effect.
type Repository interface {
	CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	// DeleteItem does not cascade: sales referencing the deleted item stay on
	// disk but are excluded from every joined read below (inner join).
	DeleteItem(ctx context.Context, itemID int64) error

	// CreateSale does not verify that sale.ItemID currently exists.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	DeleteSale(ctx context.Context, saleID int64) error
	// SalesForDate inner-joins sales to items, filtered to the exact date.
	SalesForDate(ctx context.Context, date string) ([]domain.SaleRow, error)

	// SaleFinancials inner-joins the full sales table to items; consumed only
	// by the analytics engine.
	SaleFinancials(ctx context.Context) ([]domain.SaleFinancial, error)
	// SalesByPeriod groups the same join by truncated date label (YYYY-MM for
	// month, YYYY for year), ordered by label descending so the most recent
	// period comes first.
	SalesByPeriod(ctx context.Context, granularity domain.Granularity) ([]domain.PeriodBucket, error)
}
