package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pub-order-system/internal/domain"
)

// MemoryStore is an in-memory Store used by service and handler tests. The
// guarded updates hold the lock for the whole check-and-set, so it gives the
// same only-first-writer-wins behavior as the SQL conditional statements.
type MemoryStore struct {
	mu        sync.Mutex
	nextOrder int64
	nextItem  int64
	orders    map[int64]domain.Order
	items     map[int64]domain.OrderItem
	menu      map[int64]domain.MenuItem
	clock     int64 // order_time tiebreaker for same-instant inserts
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextOrder: 1,
		nextItem:  1,
		orders:    make(map[int64]domain.Order),
		items:     make(map[int64]domain.OrderItem),
		menu:      make(map[int64]domain.MenuItem),
	}
}

var _ Store = (*MemoryStore)(nil)

// SeedMenu loads read-only menu rows for tests.
func (m *MemoryStore) SeedMenu(items ...domain.MenuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.menu[it.ID] = it
	}
}

func (m *MemoryStore) CreateOrder(_ context.Context, booth, note string, declaredTotal int64, items []domain.SubmitOrderItem) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	type line struct {
		menu domain.MenuItem
		qty  int
	}
	lines := make([]line, 0, len(items))
	for _, it := range items {
		mi, ok := m.menu[it.MenuID]
		if !ok {
			return nil, domain.Validationf("unknown menu id %d", it.MenuID)
		}
		lines = append(lines, line{menu: mi, qty: it.Quantity})
		total += int64(it.Quantity) * mi.Price
	}
	if total != declaredTotal {
		return nil, domain.Validationf("total mismatch: submitted %d, computed %d", declaredTotal, total)
	}

	m.clock++
	o := domain.Order{
		ID:            m.nextOrder,
		BoothID:       booth,
		TotalPrice:    total,
		Note:          note,
		OrderTime:     time.Now().UTC().Add(time.Duration(m.clock) * time.Microsecond),
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentUnpaid,
	}
	m.nextOrder++
	for _, ln := range lines {
		it := domain.OrderItem{
			ID:        m.nextItem,
			OrderID:   o.ID,
			MenuID:    ln.menu.ID,
			MenuName:  ln.menu.Name,
			Quantity:  ln.qty,
			UnitPrice: ln.menu.Price,
			Status:    domain.ItemProcessing,
		}
		m.nextItem++
		m.items[it.ID] = it
		o.Items = append(o.Items, it)
	}
	m.orders[o.ID] = o
	cp := o
	return &cp, nil
}

func (m *MemoryStore) GetOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := o
	cp.Items = m.orderItemsLocked(orderID)
	return &cp, nil
}

func (m *MemoryStore) orderItemsLocked(orderID int64) []domain.OrderItem {
	var out []domain.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return m.list(func(domain.Order) bool { return true })
}

func (m *MemoryStore) ListUnpaidOrders(ctx context.Context) ([]domain.Order, error) {
	return m.list(func(o domain.Order) bool { return o.PaymentStatus == domain.PaymentUnpaid })
}

func (m *MemoryStore) ListCompletedOrders(ctx context.Context) ([]domain.Order, error) {
	return m.list(func(o domain.Order) bool { return o.Status == domain.OrderCompleted })
}

func (m *MemoryStore) ListOrdersByBooth(ctx context.Context, booth string) ([]domain.Order, error) {
	return m.list(func(o domain.Order) bool { return o.BoothID == booth })
}

func (m *MemoryStore) list(keep func(domain.Order) bool) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if keep(o) {
			cp := o
			cp.Items = m.orderItemsLocked(o.ID)
			out = append(out, cp)
		}
	}
	// newest first, like the SQL ORDER BY order_time DESC
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderTime.Equal(out[j].OrderTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].OrderTime.After(out[j].OrderTime)
	})
	return out, nil
}

func (m *MemoryStore) ListItemsByStatus(_ context.Context, status domain.ItemStatus) ([]domain.ItemView, error) {
	return m.listViews(func(it domain.OrderItem, _ domain.Order) bool { return it.Status == status })
}

func (m *MemoryStore) ListKitchenItems(_ context.Context) ([]domain.ItemView, error) {
	return m.listViews(func(it domain.OrderItem, o domain.Order) bool {
		if o.PaymentStatus != domain.PaymentPaid {
			return false
		}
		return it.Status == domain.ItemProcessing || it.Status == domain.ItemCooking
	})
}

func (m *MemoryStore) listViews(keep func(domain.OrderItem, domain.Order) bool) ([]domain.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ItemView
	for _, it := range m.items {
		o := m.orders[it.OrderID]
		if keep(it, o) {
			out = append(out, viewOf(it, o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderTime.Equal(out[j].OrderTime) {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].OrderTime.Before(out[j].OrderTime)
	})
	return out, nil
}

func (m *MemoryStore) GetItemView(_ context.Context, itemID int64) (*domain.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	v := viewOf(it, m.orders[it.OrderID])
	return &v, nil
}

func (m *MemoryStore) ConfirmPayment(_ context.Context, orderID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.PaymentStatus != domain.PaymentUnpaid {
		return 0, nil
	}
	o.PaymentStatus = domain.PaymentPaid
	o.Status = domain.OrderProcessing
	m.orders[orderID] = o
	return 1, nil
}

func (m *MemoryStore) AdvanceItem(_ context.Context, itemID int64, from, to domain.ItemStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok || it.Status != from {
		return 0, nil
	}
	it.Status = to
	m.items[itemID] = it
	return 1, nil
}

func (m *MemoryStore) CloseOrderIfComplete(_ context.Context, orderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.PaymentStatus != domain.PaymentPaid || o.Status != domain.OrderProcessing {
		return false, nil
	}
	for _, it := range m.items {
		if it.OrderID == orderID && it.Status != domain.ItemServed {
			return false, nil
		}
	}
	o.Status = domain.OrderCompleted
	m.orders[orderID] = o
	return true, nil
}

func (m *MemoryStore) ListMenu(_ context.Context) ([]domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MenuItem
	for _, mi := range m.menu {
		out = append(out, mi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func viewOf(it domain.OrderItem, o domain.Order) domain.ItemView {
	return domain.ItemView{
		ItemID:    it.ID,
		OrderID:   it.OrderID,
		BoothID:   o.BoothID,
		MenuName:  it.MenuName,
		Quantity:  it.Quantity,
		Status:    it.Status,
		OrderTime: o.OrderTime,
	}
}
