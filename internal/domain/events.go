package domain

import "time"

// Channel is a logical broadcast group a connection subscribes to.
type Channel string

const (
	ChannelKitchen     Channel = "kitchen"
	ChannelServing     Channel = "serving"
	ChannelPaymentDesk Channel = "payment-desk"
)

func ValidChannel(c Channel) bool {
	switch c {
	case ChannelKitchen, ChannelServing, ChannelPaymentDesk:
		return true
	}
	return false
}

type EventType string

const (
	EventNewPendingOrder   EventType = "new_pending_order"
	EventPaymentConfirmed  EventType = "payment_confirmed"
	EventNewKitchenItem    EventType = "new_kitchen_item"
	EventItemStatusUpdate  EventType = "item_status_updated"
	EventNewServingItem    EventType = "new_serving_item"
	EventRemoveKitchenItem EventType = "remove_kitchen_item"
	EventItemServed        EventType = "item_served"
	EventOrderCompleted    EventType = "order_completed"
)

// Event is a delta notification for a single committed state change. It
// carries enough denormalized payload for an observer to update its local
// projection without a follow-up query.
type Event struct {
	ID    string    `json:"event_id"`
	Type  EventType `json:"type"`
	At    time.Time `json:"timestamp"`
	Order *Order    `json:"order,omitempty"`
	Item  *ItemView `json:"item,omitempty"`
}

// Snapshot is the full current state for one channel, delivered to a fresh
// subscriber before any delta event.
type Snapshot struct {
	Channel Channel    `json:"channel"`
	Orders  []Order    `json:"orders,omitempty"`
	Items   []ItemView `json:"items,omitempty"`
}
