package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// OrderItem is one priced line inside a submitted order.
type OrderItem struct {
	ProductID string         `json:"productId" validate:"required"`
	Title     string         `json:"title"`
	Price     int64          `json:"price" validate:"gte=0"`
	Quantity  int            `json:"quantity" validate:"gte=1"`
	Toppings  []OrderTopping `json:"toppings"`
	Note      string         `json:"note"`
	Total     int64          `json:"total" validate:"gte=0"`
}

// OrderTopping mirrors a cart topping on the wire.
type OrderTopping struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// OrderPayload is the order submission shape. ClientOrderID is the
// idempotency key: the server treats a repeat as an update, not a duplicate.
type OrderPayload struct {
	ID            string      `json:"id,omitempty"`
	ClientOrderID string      `json:"clientOrderId" validate:"required"`
	OrderCode     string      `json:"orderCode"`
	TableID       string      `json:"tableId"`
	Customer      string      `json:"customer"`
	Note          string      `json:"note"`
	Status        string      `json:"status" validate:"required,oneof=DRAFT SUBMITTED PAID CANCELLED"`
	Items         []OrderItem `json:"items" validate:"required,min=1,dive"`
	Subtotal      int64       `json:"subtotal" validate:"gte=0"`
	DiscountType  string      `json:"discountType,omitempty" validate:"omitempty,oneof=PERCENTAGE AMOUNT"`
	DiscountValue int64       `json:"discountValue,omitempty"`
	Discount      int64       `json:"discount" validate:"gte=0"`
	Total         int64       `json:"total" validate:"gte=0"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
}

// Order is the server's view of a stored order.
type Order struct {
	OrderPayload
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderListParams filters the order listing.
type OrderListParams struct {
	Status string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// OrdersService covers /Orders.
type OrdersService struct {
	client *Client
}

func (s *OrdersService) List(ctx context.Context, params OrderListParams) ([]Order, error) {
	query := url.Values{}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if !params.From.IsZero() {
		query.Set("from", params.From.Format(time.RFC3339))
	}
	if !params.To.IsZero() {
		query.Set("to", params.To.Format(time.RFC3339))
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	var orders []Order
	if err := s.client.do(ctx, http.MethodGet, "/Orders", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrdersService) Get(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := s.client.do(ctx, http.MethodGet, "/Orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersService) Create(ctx context.Context, payload OrderPayload) (*Order, error) {
	if err := ValidateStruct(payload); err != nil {
		return nil, err
	}
	var order Order
	if err := s.client.do(ctx, http.MethodPost, "/Orders", nil, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersService) Update(ctx context.Context, id string, payload OrderPayload) (*Order, error) {
	if err := ValidateStruct(payload); err != nil {
		return nil, err
	}
	var order Order
	if err := s.client.do(ctx, http.MethodPut, "/Orders/"+url.PathEscape(id), nil, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/Orders/"+url.PathEscape(id), nil, nil, nil)
}
