package domain

type SubmitOrderItem struct {
	MenuID   int64 `json:"menu_id"`
	Quantity int   `json:"quantity"`
}

type SubmitOrderRequest struct {
	BoothID    string            `json:"booth_id"`
	Items      []SubmitOrderItem `json:"items"`
	TotalPrice int64             `json:"total_price"`
	Note       string            `json:"note,omitempty"`
}

type SubmitOrderResponse struct {
	OrderID       int64         `json:"order_id"`
	TotalPrice    int64         `json:"total_price"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// CommandResult reports the outcome of a status-advance command. Done=false
// means the guarded update matched nothing: unknown id or already advanced.
type CommandResult struct {
	Done    bool   `json:"done"`
	Message string `json:"message,omitempty"`
}

type AdminAuthRequest struct {
	Password string `json:"password"`
}
