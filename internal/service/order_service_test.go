package service

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"pub-order-system/internal/domain"
	"pub-order-system/internal/realtime"
	"pub-order-system/internal/repository"
)

func setup(t *testing.T) (*OrderService, *repository.MemoryStore, *realtime.Registry, *realtime.Broadcaster) {
	t.Helper()
	store := repository.NewMemoryStore()
	store.SeedMenu(
		domain.MenuItem{ID: 1, Name: "Tteokbokki", Price: 1000, Category: "main"},
		domain.MenuItem{ID: 7, Name: "Fried Chicken", Price: 5000, Category: "main"},
		domain.MenuItem{ID: 3, Name: "Lemon Soju", Price: 3000, Category: "drink"},
	)
	registry := realtime.NewRegistry()
	bc := realtime.NewBroadcaster(registry, store, nil, zap.NewNop())
	svc := NewOrderService(store, bc, zap.NewNop())
	return svc, store, registry, bc
}

func observe(t *testing.T, reg *realtime.Registry, channels ...domain.Channel) *realtime.Connection {
	t.Helper()
	conn := reg.Register()
	for _, ch := range channels {
		if !reg.Subscribe(conn.ID, ch) {
			t.Fatalf("subscribe %s failed", ch)
		}
	}
	return conn
}

// drain reads everything currently buffered. Publish delivers synchronously,
// so after a command returns its events are already in the buffer.
func drain(conn *realtime.Connection) []domain.Event {
	var out []domain.Event
	for {
		select {
		case ev := <-conn.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countType(events []domain.Event, typ domain.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestSubmitOrderValidation(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.SubmitOrderRequest
	}{
		{"missing booth", domain.SubmitOrderRequest{Items: []domain.SubmitOrderItem{{MenuID: 1, Quantity: 1}}, TotalPrice: 1000}},
		{"no items", domain.SubmitOrderRequest{BoothID: "A1", TotalPrice: 0}},
		{"zero quantity", domain.SubmitOrderRequest{BoothID: "A1", Items: []domain.SubmitOrderItem{{MenuID: 1, Quantity: 0}}, TotalPrice: 0}},
		{"total mismatch", domain.SubmitOrderRequest{BoothID: "A1", Items: []domain.SubmitOrderItem{{MenuID: 7, Quantity: 2}, {MenuID: 3, Quantity: 1}}, TotalPrice: 12000}},
		{"unknown menu", domain.SubmitOrderRequest{BoothID: "A1", Items: []domain.SubmitOrderItem{{MenuID: 99, Quantity: 1}}, TotalPrice: 1000}},
	}
	for _, c := range cases {
		if _, err := svc.SubmitOrder(ctx, c.req); !domain.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", c.name, err)
		}
	}
}

func TestEndToEndOrderWalk(t *testing.T) {
	svc, store, reg, _ := setup(t)
	ctx := context.Background()

	payment := observe(t, reg, domain.ChannelPaymentDesk)
	kitchen := observe(t, reg, domain.ChannelKitchen)
	serving := observe(t, reg, domain.ChannelServing)

	order, err := svc.SubmitOrder(ctx, domain.SubmitOrderRequest{
		BoothID:    "A1",
		Items:      []domain.SubmitOrderItem{{MenuID: 1, Quantity: 3}},
		TotalPrice: 3000,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.TotalPrice != 3000 || order.Status != domain.OrderPending || order.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("fresh order wrong: %+v", order)
	}
	if got := drain(payment); countType(got, domain.EventNewPendingOrder) != 1 {
		t.Fatalf("payment desk must hear about the new order, got %+v", got)
	}
	if got := drain(kitchen); len(got) != 0 {
		t.Fatalf("kitchen must not hear about unpaid orders, got %+v", got)
	}

	_, done, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil || !done {
		t.Fatalf("confirm: done=%v err=%v", done, err)
	}
	kitchenEvents := drain(kitchen)
	if countType(kitchenEvents, domain.EventNewKitchenItem) != 1 {
		t.Fatalf("kitchen must receive one queued item, got %+v", kitchenEvents)
	}
	itemID := kitchenEvents[0].Item.ItemID

	view, done, err := svc.AcceptItem(ctx, itemID)
	if err != nil || !done || view.Status != domain.ItemCooking {
		t.Fatalf("accept: view=%+v done=%v err=%v", view, done, err)
	}

	view, done, err = svc.CompleteItem(ctx, itemID)
	if err != nil || !done || view.Status != domain.ItemReadyToServe {
		t.Fatalf("complete: view=%+v done=%v err=%v", view, done, err)
	}
	if got := drain(serving); countType(got, domain.EventNewServingItem) != 1 {
		t.Fatalf("serving board must gain the ready item, got %+v", got)
	}
	if got := drain(kitchen); countType(got, domain.EventRemoveKitchenItem) != 1 {
		t.Fatalf("kitchen board must drop the ready item, got %+v", got)
	}

	view, done, err = svc.ServeItem(ctx, itemID)
	if err != nil || !done || view.Status != domain.ItemServed {
		t.Fatalf("serve: view=%+v done=%v err=%v", view, done, err)
	}
	if got := drain(serving); countType(got, domain.EventItemServed) != 1 {
		t.Fatalf("serving board must drop the served item, got %+v", got)
	}
	if got := drain(payment); countType(got, domain.EventOrderCompleted) != 1 {
		t.Fatalf("payment desk must hear about completion, got %+v", got)
	}

	// the last served item closes the order without any extra command
	final, err := store.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if final.Status != domain.OrderCompleted {
		t.Fatalf("order must complete itself, got %s", final.Status)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	svc, _, reg, _ := setup(t)
	ctx := context.Background()
	kitchen := observe(t, reg, domain.ChannelKitchen)

	order, err := svc.SubmitOrder(ctx, domain.SubmitOrderRequest{
		BoothID:    "A1",
		Items:      []domain.SubmitOrderItem{{MenuID: 7, Quantity: 1}},
		TotalPrice: 5000,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, done, err := svc.ConfirmPayment(ctx, order.ID); err != nil || !done {
		t.Fatalf("first confirm: done=%v err=%v", done, err)
	}
	if _, done, err := svc.ConfirmPayment(ctx, order.ID); err != nil || done {
		t.Fatalf("second confirm must be a reported no-op: done=%v err=%v", done, err)
	}

	// exactly one kitchen dispatch, never a duplicate
	if got := countType(drain(kitchen), domain.EventNewKitchenItem); got != 1 {
		t.Fatalf("expected exactly one kitchen dispatch, got %d", got)
	}
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	order, _ := svc.SubmitOrder(ctx, domain.SubmitOrderRequest{
		BoothID:    "A1",
		Items:      []domain.SubmitOrderItem{{MenuID: 7, Quantity: 1}},
		TotalPrice: 5000,
	})
	svc.ConfirmPayment(ctx, order.ID)
	itemID := order.Items[0].ID

	const callers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, done, err := svc.AcceptItem(ctx, itemID)
			if err != nil {
				t.Errorf("accept: %v", err)
				return
			}
			wins <- done
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for done := range wins {
		if done {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("exactly one concurrent accept must win, got %d", won)
	}
}

func TestAdvanceUnknownItem(t *testing.T) {
	svc, _, _, _ := setup(t)
	if _, done, err := svc.AcceptItem(context.Background(), 12345); err != nil || done {
		t.Fatalf("unknown item must be a reported no-op: done=%v err=%v", done, err)
	}
}

func TestSnapshotSeesEarlierTransitions(t *testing.T) {
	svc, _, _, bc := setup(t)
	ctx := context.Background()

	order, _ := svc.SubmitOrder(ctx, domain.SubmitOrderRequest{
		BoothID:    "A1",
		Items:      []domain.SubmitOrderItem{{MenuID: 7, Quantity: 1}, {MenuID: 3, Quantity: 2}},
		TotalPrice: 11000,
	})
	svc.ConfirmPayment(ctx, order.ID)
	svc.AcceptItem(ctx, order.Items[0].ID)

	// a kitchen board connecting only now still sees the cooking item
	snap, err := bc.Snapshot(ctx, domain.ChannelKitchen)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("kitchen snapshot must carry both active items, got %+v", snap.Items)
	}
	statuses := map[int64]domain.ItemStatus{}
	for _, it := range snap.Items {
		statuses[it.ItemID] = it.Status
	}
	if statuses[order.Items[0].ID] != domain.ItemCooking {
		t.Fatalf("snapshot must reflect the committed cooking status, got %v", statuses)
	}
	if statuses[order.Items[1].ID] != domain.ItemProcessing {
		t.Fatalf("untouched item must still be processing, got %v", statuses)
	}

	// serving snapshot is empty until something is ready
	servingSnap, err := bc.Snapshot(ctx, domain.ChannelServing)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(servingSnap.Items) != 0 {
		t.Fatalf("serving snapshot must be empty, got %+v", servingSnap.Items)
	}
}

func TestItemStatusSequenceForwardOnly(t *testing.T) {
	svc, store, _, _ := setup(t)
	ctx := context.Background()

	order, _ := svc.SubmitOrder(ctx, domain.SubmitOrderRequest{
		BoothID:    "A1",
		Items:      []domain.SubmitOrderItem{{MenuID: 3, Quantity: 1}},
		TotalPrice: 3000,
	})
	svc.ConfirmPayment(ctx, order.ID)
	itemID := order.Items[0].ID

	// serving before cooking is a no-op, status untouched
	if _, done, _ := svc.ServeItem(ctx, itemID); done {
		t.Fatalf("serve out of order must not win")
	}
	if _, done, _ := svc.CompleteItem(ctx, itemID); done {
		t.Fatalf("complete out of order must not win")
	}
	view, _ := store.GetItemView(ctx, itemID)
	if view.Status != domain.ItemProcessing {
		t.Fatalf("failed commands must not corrupt state, got %s", view.Status)
	}

	for _, step := range []struct {
		cmd  func(context.Context, int64) (*domain.ItemView, bool, error)
		want domain.ItemStatus
	}{
		{svc.AcceptItem, domain.ItemCooking},
		{svc.CompleteItem, domain.ItemReadyToServe},
		{svc.ServeItem, domain.ItemServed},
	} {
		v, done, err := step.cmd(ctx, itemID)
		if err != nil || !done || v.Status != step.want {
			t.Fatalf("step to %s: view=%+v done=%v err=%v", step.want, v, done, err)
		}
	}
}
