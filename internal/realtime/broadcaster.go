package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pub-order-system/internal/domain"
	"pub-order-system/internal/repository"
)

// Relay forwards committed events to out-of-process subscribers (the fanout
// exchange). A nil Relay disables relaying.
type Relay interface {
	PublishEvent(ctx context.Context, ev domain.Event) error
}

// routes is the channel routing table: which boards hear about which event.
var routes = map[domain.EventType][]domain.Channel{
	domain.EventNewPendingOrder:   {domain.ChannelPaymentDesk},
	domain.EventPaymentConfirmed:  {domain.ChannelPaymentDesk},
	domain.EventNewKitchenItem:    {domain.ChannelKitchen},
	domain.EventItemStatusUpdate:  {domain.ChannelKitchen},
	domain.EventNewServingItem:    {domain.ChannelServing},
	domain.EventRemoveKitchenItem: {domain.ChannelKitchen},
	domain.EventItemServed:        {domain.ChannelServing},
	domain.EventOrderCompleted:    {domain.ChannelPaymentDesk},
}

// Broadcaster fans committed store mutations out to live observers and
// builds catch-up snapshots for fresh subscribers. It is invoked strictly
// after the store commit; none of its failures propagate back to the caller.
type Broadcaster struct {
	reg   *Registry
	store repository.Store
	relay Relay
	lg    *zap.Logger
}

func NewBroadcaster(reg *Registry, store repository.Store, relay Relay, lg *zap.Logger) *Broadcaster {
	return &Broadcaster{reg: reg, store: store, relay: relay, lg: lg}
}

// Publish stamps the event and delivers it to every member of the event
// type's channels, then best-effort relays it. Fire and forget: a slow or
// dead observer is skipped, a relay failure is logged and ignored.
func (b *Broadcaster) Publish(ctx context.Context, ev domain.Event) {
	ev.ID = uuid.NewString()
	ev.At = time.Now().UTC()

	for _, ch := range routes[ev.Type] {
		for _, conn := range b.reg.MembersOf(ch) {
			if !conn.send(ev) {
				b.lg.Warn("event_dropped",
					zap.String("connection_id", conn.ID),
					zap.String("channel", string(ch)),
					zap.String("event", string(ev.Type)))
			}
		}
	}

	if b.relay == nil {
		return
	}
	if err := b.relay.PublishEvent(ctx, ev); err != nil {
		b.lg.Warn("event_relay_failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}

// Snapshot builds the connect-time state for one channel from the store:
// everything active a board needs before it starts applying deltas.
func (b *Broadcaster) Snapshot(ctx context.Context, ch domain.Channel) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Channel: ch}
	switch ch {
	case domain.ChannelPaymentDesk:
		orders, err := b.store.ListUnpaidOrders(ctx)
		if err != nil {
			return nil, err
		}
		snap.Orders = orders
	case domain.ChannelKitchen:
		items, err := b.store.ListKitchenItems(ctx)
		if err != nil {
			return nil, err
		}
		snap.Items = items
	case domain.ChannelServing:
		items, err := b.store.ListItemsByStatus(ctx, domain.ItemReadyToServe)
		if err != nil {
			return nil, err
		}
		snap.Items = items
	default:
		return nil, domain.Validationf("unknown channel %q", ch)
	}
	return snap, nil
}
