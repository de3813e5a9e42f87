package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pub-order-system/internal/domain"
)

// OrderStore is the Postgres implementation of Store on top of pgxpool.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore { return &OrderStore{pool: pool} }

var _ Store = (*OrderStore)(nil)

func (s *OrderStore) CreateOrder(ctx context.Context, booth, note string, declaredTotal int64, items []domain.SubmitOrderItem) (*domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Storef("begin create order", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Snapshot menu name/price inside the transaction and recompute the
	// total; the submitted total must match exactly.
	type priced struct {
		menuID   int64
		name     string
		price    int64
		quantity int
	}
	lines := make([]priced, 0, len(items))
	var total int64
	for _, it := range items {
		var name string
		var price int64
		err := tx.QueryRow(ctx, `SELECT name, price FROM menus WHERE menu_id=$1`, it.MenuID).Scan(&name, &price)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Validationf("unknown menu id %d", it.MenuID)
		}
		if err != nil {
			return nil, domain.Storef("menu lookup", err)
		}
		lines = append(lines, priced{menuID: it.MenuID, name: name, price: price, quantity: it.Quantity})
		total += int64(it.Quantity) * price
	}
	if total != declaredTotal {
		return nil, domain.Validationf("total mismatch: submitted %d, computed %d", declaredTotal, total)
	}

	order := &domain.Order{
		BoothID:       booth,
		TotalPrice:    total,
		Note:          note,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentUnpaid,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (booth_id, total_price, note, order_time, status, payment_status)
		VALUES ($1, $2, $3, now(), $4, $5)
		RETURNING order_id, order_time
	`, booth, total, nullIfEmpty(note), order.Status, order.PaymentStatus).Scan(&order.ID, &order.OrderTime)
	if err != nil {
		return nil, domain.Storef("insert order", err)
	}

	for _, ln := range lines {
		item := domain.OrderItem{
			OrderID:   order.ID,
			MenuID:    ln.menuID,
			MenuName:  ln.name,
			Quantity:  ln.quantity,
			UnitPrice: ln.price,
			Status:    domain.ItemProcessing,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, menu_id, menu_name, quantity, unit_price, item_status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING item_id
		`, item.OrderID, item.MenuID, item.MenuName, item.Quantity, item.UnitPrice, item.Status).Scan(&item.ID)
		if err != nil {
			return nil, domain.Storef("insert order item", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Storef("commit create order", err)
	}
	return order, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var o domain.Order
	var note *string
	err := s.pool.QueryRow(ctx, `
		SELECT order_id, booth_id, total_price, note, order_time, status, payment_status
		FROM orders WHERE order_id=$1
	`, orderID).Scan(&o.ID, &o.BoothID, &o.TotalPrice, &note, &o.OrderTime, &o.Status, &o.PaymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, domain.Storef("get order", err)
	}
	if note != nil {
		o.Note = *note
	}
	items, err := s.itemsForOrders(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (s *OrderStore) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.listOrders(ctx, ``)
}

func (s *OrderStore) ListUnpaidOrders(ctx context.Context) ([]domain.Order, error) {
	return s.listOrders(ctx, `WHERE payment_status='unpaid'`)
}

func (s *OrderStore) ListCompletedOrders(ctx context.Context) ([]domain.Order, error) {
	return s.listOrders(ctx, `WHERE status='completed'`)
}

func (s *OrderStore) ListOrdersByBooth(ctx context.Context, booth string) ([]domain.Order, error) {
	return s.listOrders(ctx, `WHERE booth_id=$1`, booth)
}

func (s *OrderStore) listOrders(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT order_id, booth_id, total_price, note, order_time, status, payment_status
		FROM orders `+where+` ORDER BY order_time DESC, order_id DESC
	`, args...)
	if err != nil {
		return nil, domain.Storef("list orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var o domain.Order
		var note *string
		if err := rows.Scan(&o.ID, &o.BoothID, &o.TotalPrice, &note, &o.OrderTime, &o.Status, &o.PaymentStatus); err != nil {
			return nil, domain.Storef("scan order", err)
		}
		if note != nil {
			o.Note = *note
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storef("list orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := s.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// itemsForOrders loads item snapshots for a set of orders in one query, one
// row per item.
func (s *OrderStore) itemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT item_id, order_id, menu_id, menu_name, quantity, unit_price, item_status
		FROM order_items WHERE order_id = ANY($1) ORDER BY item_id
	`, orderIDs)
	if err != nil {
		return nil, domain.Storef("list order items", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuID, &it.MenuName, &it.Quantity, &it.UnitPrice, &it.Status); err != nil {
			return nil, domain.Storef("scan order item", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

const itemViewSelect = `
	SELECT oi.item_id, oi.order_id, o.booth_id, oi.menu_name, oi.quantity, oi.item_status, o.order_time
	FROM order_items oi
	JOIN orders o ON o.order_id = oi.order_id
`

func (s *OrderStore) ListItemsByStatus(ctx context.Context, status domain.ItemStatus) ([]domain.ItemView, error) {
	return s.listItemViews(ctx, `WHERE oi.item_status=$1 ORDER BY o.order_time ASC, oi.item_id ASC`, status)
}

func (s *OrderStore) ListKitchenItems(ctx context.Context) ([]domain.ItemView, error) {
	return s.listItemViews(ctx, `
		WHERE o.payment_status='paid' AND oi.item_status IN ('processing','cooking')
		ORDER BY o.order_time ASC, oi.item_id ASC`)
}

func (s *OrderStore) listItemViews(ctx context.Context, tail string, args ...any) ([]domain.ItemView, error) {
	rows, err := s.pool.Query(ctx, itemViewSelect+tail, args...)
	if err != nil {
		return nil, domain.Storef("list items", err)
	}
	defer rows.Close()

	var views []domain.ItemView
	for rows.Next() {
		var v domain.ItemView
		if err := rows.Scan(&v.ItemID, &v.OrderID, &v.BoothID, &v.MenuName, &v.Quantity, &v.Status, &v.OrderTime); err != nil {
			return nil, domain.Storef("scan item", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *OrderStore) GetItemView(ctx context.Context, itemID int64) (*domain.ItemView, error) {
	var v domain.ItemView
	err := s.pool.QueryRow(ctx, itemViewSelect+`WHERE oi.item_id=$1`, itemID).
		Scan(&v.ItemID, &v.OrderID, &v.BoothID, &v.MenuName, &v.Quantity, &v.Status, &v.OrderTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyProcessed
	}
	if err != nil {
		return nil, domain.Storef("get item", err)
	}
	return &v, nil
}

func (s *OrderStore) ConfirmPayment(ctx context.Context, orderID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET payment_status='paid', status='processing'
		WHERE order_id=$1 AND payment_status='unpaid'
	`, orderID)
	if err != nil {
		return 0, domain.Storef("confirm payment", err)
	}
	return tag.RowsAffected(), nil
}

func (s *OrderStore) AdvanceItem(ctx context.Context, itemID int64, from, to domain.ItemStatus) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE order_items SET item_status=$3
		WHERE item_id=$1 AND item_status=$2
	`, itemID, from, to)
	if err != nil {
		return 0, domain.Storef("advance item", err)
	}
	return tag.RowsAffected(), nil
}

func (s *OrderStore) CloseOrderIfComplete(ctx context.Context, orderID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status='completed'
		WHERE order_id=$1 AND payment_status='paid' AND status='processing'
		  AND NOT EXISTS (
			SELECT 1 FROM order_items WHERE order_id=$1 AND item_status <> 'served'
		  )
	`, orderID)
	if err != nil {
		return false, domain.Storef("close order", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *OrderStore) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT menu_id, name, price, category, COALESCE(description,''), COALESCE(image_ref,'')
		FROM menus ORDER BY category, menu_id
	`)
	if err != nil {
		return nil, domain.Storef("list menu", err)
	}
	defer rows.Close()

	var menu []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Description, &m.ImageRef); err != nil {
			return nil, domain.Storef("scan menu", err)
		}
		menu = append(menu, m)
	}
	return menu, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
