package domain

import "time"

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
)

type ItemStatus string

const (
	ItemProcessing   ItemStatus = "processing"
	ItemCooking      ItemStatus = "cooking"
	ItemReadyToServe ItemStatus = "ready_to_serve"
	ItemServed       ItemStatus = "served"
)

// MenuItem is read-only reference data. Name and price are snapshotted into
// order items at submission time, so later menu edits never touch history.
type MenuItem struct {
	ID          int64  `json:"menu_id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"image_ref,omitempty"`
}

type Order struct {
	ID            int64         `json:"order_id"`
	BoothID       string        `json:"booth_id"`
	TotalPrice    int64         `json:"total_price"`
	Note          string        `json:"note,omitempty"`
	OrderTime     time.Time     `json:"order_time"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []OrderItem   `json:"items,omitempty"`
}

type OrderItem struct {
	ID        int64      `json:"item_id"`
	OrderID   int64      `json:"order_id"`
	MenuID    int64      `json:"menu_id"`
	MenuName  string     `json:"menu_name"`
	Quantity  int        `json:"quantity"`
	UnitPrice int64      `json:"unit_price"`
	Status    ItemStatus `json:"item_status"`
}

// ItemView is one board row: an order item joined with the denormalized
// fields a kitchen or serving board needs to render it without another
// round-trip. One row per item, never a concatenated summary string.
type ItemView struct {
	ItemID    int64      `json:"item_id"`
	OrderID   int64      `json:"order_id"`
	BoothID   string     `json:"booth_id"`
	MenuName  string     `json:"menu_name"`
	Quantity  int        `json:"quantity"`
	Status    ItemStatus `json:"item_status"`
	OrderTime time.Time  `json:"order_time"`
}
