package service

import (
	"context"

	"go.uber.org/zap"

	"pub-order-system/internal/domain"
	"pub-order-system/internal/realtime"
	"pub-order-system/internal/repository"
	"pub-order-system/internal/statemachine"
)

// OrderService executes the five user-triggered commands. Every command
// follows the same template: validate input, apply one guarded store
// mutation, map zero affected rows to a reported no-op, and only after a
// successful commit hand the delta to the broadcaster.
type OrderService struct {
	store repository.Store
	bc    *realtime.Broadcaster
	lg    *zap.Logger
}

func NewOrderService(store repository.Store, bc *realtime.Broadcaster, lg *zap.Logger) *OrderService {
	return &OrderService{store: store, bc: bc, lg: lg}
}

func (s *OrderService) SubmitOrder(ctx context.Context, req domain.SubmitOrderRequest) (*domain.Order, error) {
	if req.BoothID == "" {
		return nil, domain.Validationf("booth id is required")
	}
	if len(req.Items) == 0 {
		return nil, domain.Validationf("at least one item is required")
	}
	for _, it := range req.Items {
		if it.MenuID <= 0 {
			return nil, domain.Validationf("invalid menu id %d", it.MenuID)
		}
		if it.Quantity <= 0 {
			return nil, domain.Validationf("invalid quantity for menu id %d", it.MenuID)
		}
	}

	order, err := s.store.CreateOrder(ctx, req.BoothID, req.Note, req.TotalPrice, req.Items)
	if err != nil {
		return nil, err
	}

	s.lg.Info("order_submitted",
		zap.Int64("order_id", order.ID),
		zap.String("booth_id", order.BoothID),
		zap.Int64("total_price", order.TotalPrice),
		zap.Int("items", len(order.Items)))

	s.bc.Publish(ctx, domain.Event{Type: domain.EventNewPendingOrder, Order: order})
	return order, nil
}

// ConfirmPayment is the sole gate that releases an order to the kitchen:
// paid and processing are set in one atomic statement. A second confirmation
// reports done=false and dispatches nothing.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID int64) (*domain.Order, bool, error) {
	rows, err := s.store.ConfirmPayment(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		return nil, false, nil
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	s.lg.Info("payment_confirmed", zap.Int64("order_id", orderID))

	s.bc.Publish(ctx, domain.Event{Type: domain.EventPaymentConfirmed, Order: order})
	for i := range order.Items {
		view := itemView(order, &order.Items[i])
		s.bc.Publish(ctx, domain.Event{Type: domain.EventNewKitchenItem, Item: &view})
	}
	return order, true, nil
}

func (s *OrderService) AcceptItem(ctx context.Context, itemID int64) (*domain.ItemView, bool, error) {
	return s.advanceItem(ctx, itemID, statemachine.CommandAccept)
}

func (s *OrderService) CompleteItem(ctx context.Context, itemID int64) (*domain.ItemView, bool, error) {
	return s.advanceItem(ctx, itemID, statemachine.CommandComplete)
}

func (s *OrderService) ServeItem(ctx context.Context, itemID int64) (*domain.ItemView, bool, error) {
	view, done, err := s.advanceItem(ctx, itemID, statemachine.CommandServe)
	if err != nil || !done {
		return view, done, err
	}

	// Serving the last item is what closes the order; nobody closes it by
	// hand.
	closed, err := s.store.CloseOrderIfComplete(ctx, view.OrderID)
	if err != nil {
		return view, true, err
	}
	if closed {
		order, err := s.store.GetOrder(ctx, view.OrderID)
		if err != nil {
			return view, true, err
		}
		s.lg.Info("order_completed", zap.Int64("order_id", order.ID))
		s.bc.Publish(ctx, domain.Event{Type: domain.EventOrderCompleted, Order: order})
	}
	return view, true, nil
}

func (s *OrderService) advanceItem(ctx context.Context, itemID int64, cmd statemachine.Command) (*domain.ItemView, bool, error) {
	if itemID <= 0 {
		return nil, false, domain.Validationf("invalid item id %d", itemID)
	}
	from, to, ok := statemachine.ItemTransition(cmd)
	if !ok {
		return nil, false, domain.Validationf("unknown command %q", cmd)
	}

	rows, err := s.store.AdvanceItem(ctx, itemID, from, to)
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		// Lost the race or unknown id. Either way: reported no-op.
		return nil, false, nil
	}

	view, err := s.store.GetItemView(ctx, itemID)
	if err != nil {
		return nil, false, err
	}

	s.lg.Info("item_advanced",
		zap.Int64("item_id", itemID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	switch to {
	case domain.ItemCooking:
		s.bc.Publish(ctx, domain.Event{Type: domain.EventItemStatusUpdate, Item: view})
	case domain.ItemReadyToServe:
		s.bc.Publish(ctx, domain.Event{Type: domain.EventRemoveKitchenItem, Item: view})
		s.bc.Publish(ctx, domain.Event{Type: domain.EventNewServingItem, Item: view})
	case domain.ItemServed:
		s.bc.Publish(ctx, domain.Event{Type: domain.EventItemServed, Item: view})
	}
	return view, true, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListAllOrders(ctx)
}

func (s *OrderService) ListUnpaidOrders(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListUnpaidOrders(ctx)
}

func (s *OrderService) ListCompletedOrders(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListCompletedOrders(ctx)
}

// BoothHistory lists a booth's past orders newest first, with the item
// name/quantity/price snapshots taken at submission time.
func (s *OrderService) BoothHistory(ctx context.Context, booth string) ([]domain.Order, error) {
	if booth == "" {
		return nil, domain.Validationf("booth id is required")
	}
	return s.store.ListOrdersByBooth(ctx, booth)
}

func (s *OrderService) ListItemsByStatus(ctx context.Context, status domain.ItemStatus) ([]domain.ItemView, error) {
	switch status {
	case domain.ItemProcessing, domain.ItemCooking, domain.ItemReadyToServe, domain.ItemServed:
	default:
		return nil, domain.Validationf("unknown item status %q", status)
	}
	return s.store.ListItemsByStatus(ctx, status)
}

func (s *OrderService) ListKitchenItems(ctx context.Context) ([]domain.ItemView, error) {
	return s.store.ListKitchenItems(ctx)
}

func (s *OrderService) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.store.ListMenu(ctx)
}

func itemView(o *domain.Order, it *domain.OrderItem) domain.ItemView {
	return domain.ItemView{
		ItemID:    it.ID,
		OrderID:   o.ID,
		BoothID:   o.BoothID,
		MenuName:  it.MenuName,
		Quantity:  it.Quantity,
		Status:    it.Status,
		OrderTime: o.OrderTime,
	}
}
