package cart

import "time"

// Status tracks a table session through checkout.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
)

// DefaultCustomer labels sessions without a named guest.
const DefaultCustomer = "Walk-in"

// Product is a snapshot captured at add time, not a live menu reference:
// later price edits must not reprice lines already in a cart.
type Product struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// Topping is an add-on attached to a line item.
type Topping struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// LineItem is one logical cart line. Key is the merge identity: two items
// with the same key are the same line and their quantities sum.
type LineItem struct {
	Key      string    `json:"key"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	Toppings []Topping `json:"toppings"`
	Note     string    `json:"note"`
}

// TableCart holds the unpaid lines for one table session.
type TableCart struct {
	TableID       string     `json:"tableId"`
	Items         []LineItem `json:"items"`
	OrderID       string     `json:"orderId"`
	ClientOrderID string     `json:"clientOrderId"`
	Status        Status     `json:"status"`
	Customer      string     `json:"customer"`
	Note          string     `json:"note"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// State is the full persisted shape: the default takeaway cart plus every
// open table session.
type State struct {
	Items  []LineItem           `json:"items"`
	Tables map[string]TableCart `json:"tables"`
}

func emptyState() State {
	return State{Items: []LineItem{}, Tables: map[string]TableCart{}}
}
