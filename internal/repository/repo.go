package repository

import (
	"context"

	"pub-order-system/internal/domain"
)

// Store is the durable source of truth for orders and order items. Every
// mutation except CreateOrder is a single conditional statement guarded by
// the expected prior status; callers learn about lost races from the
// affected-row count, never from a read-then-write check.
type Store interface {
	// CreateOrder inserts the order and all of its items atomically. Menu
	// name and unit price are looked up and snapshotted inside the same
	// transaction; a declared total that does not match the computed sum, or
	// an unknown menu id, rejects the whole submission.
	CreateOrder(ctx context.Context, booth, note string, declaredTotal int64, items []domain.SubmitOrderItem) (*domain.Order, error)

	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByBooth(ctx context.Context, booth string) ([]domain.Order, error)
	ListUnpaidOrders(ctx context.Context) ([]domain.Order, error)
	ListCompletedOrders(ctx context.Context) ([]domain.Order, error)

	ListItemsByStatus(ctx context.Context, status domain.ItemStatus) ([]domain.ItemView, error)
	// ListKitchenItems returns items queued or cooking for paid orders, the
	// kitchen board's working set.
	ListKitchenItems(ctx context.Context) ([]domain.ItemView, error)
	GetItemView(ctx context.Context, itemID int64) (*domain.ItemView, error)

	// ConfirmPayment sets payment_status=paid and status=processing in one
	// statement guarded by payment_status=unpaid. Returns rows affected;
	// zero means unknown id or already confirmed.
	ConfirmPayment(ctx context.Context, orderID int64) (int64, error)

	// AdvanceItem moves one item from→to, guarded by the current status
	// being exactly `from`. Returns rows affected with the same zero-means-
	// no-op contract.
	AdvanceItem(ctx context.Context, itemID int64, from, to domain.ItemStatus) (int64, error)

	// CloseOrderIfComplete applies the derived order transition: paid and
	// every item served → completed. Idempotent; reports whether this call
	// closed the order.
	CloseOrderIfComplete(ctx context.Context, orderID int64) (bool, error)

	ListMenu(ctx context.Context) ([]domain.MenuItem, error)
}
