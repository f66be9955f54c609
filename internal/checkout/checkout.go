package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kopisenja/pos-client/internal/api"
	"github.com/kopisenja/pos-client/internal/cart"
	"github.com/kopisenja/pos-client/pkg/errors"
	"github.com/kopisenja/pos-client/pkg/logger"
)

// Notifier wakes the sync worker after new work is staged.
type Notifier interface {
	Notify()
}

// Input captures the operator's choices at checkout time.
type Input struct {
	DiscountType  cart.DiscountType
	DiscountValue int64
	PaymentMethod string
}

// Stager stages serialized order payloads for later submission.
type Stager interface {
	Add(ctx context.Context, data json.RawMessage) (string, error)
}

// ServiceParams configure the checkout service.
type ServiceParams struct {
	Logger   *logger.Logger
	Cart     *cart.Store
	Queue    Stager
	Orders   *api.OrdersService
	Notifier Notifier
}

// Service turns cart sessions into staged orders. Checkout never talks to
// the network directly: the payload goes to the offline queue and the sync
// worker owns delivery, so the flow behaves identically online and offline.
type Service struct {
	logg     *logger.Logger
	cart     *cart.Store
	queue    Stager
	orders   *api.OrdersService
	notifier Notifier
}

// NewService builds a checkout service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("queue required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &Service{
		logg:     params.Logger,
		cart:     params.Cart,
		queue:    params.Queue,
		orders:   params.Orders,
		notifier: params.Notifier,
	}, nil
}

// CheckoutTable builds the order payload for a table session, stages it on
// the offline queue, and marks the session SUBMITTED. The session record
// stays on the table map until Complete clears it after payment.
func (s *Service) CheckoutTable(ctx context.Context, tableID string, input Input) (api.OrderPayload, error) {
	table := s.cart.Table(tableID)
	if len(table.Items) == 0 {
		return api.OrderPayload{}, errors.New(errors.CodeValidation,
			fmt.Sprintf("table %s has no items to check out", tableID))
	}

	payload := BuildPayload(table, input)
	if err := s.stage(ctx, payload); err != nil {
		return api.OrderPayload{}, err
	}

	if err := s.cart.UpdateTableStatus(ctx, tableID, cart.StatusSubmitted); err != nil {
		s.logg.Error(ctx, "marking table submitted failed", err)
	}
	return payload, nil
}

// Complete clears the table session after payment settles.
func (s *Service) Complete(ctx context.Context, tableID string) error {
	return s.cart.ClearTable(ctx, tableID)
}

func (s *Service) stage(ctx context.Context, payload api.OrderPayload) error {
	if err := api.ValidateStruct(payload); err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize order payload: %w", err)
	}
	if _, err := s.queue.Add(ctx, raw); err != nil {
		return fmt.Errorf("stage order: %w", err)
	}

	ctx = s.logg.WithClientOrderID(ctx, payload.ClientOrderID)
	s.logg.Info(ctx, "order staged for submission")
	if s.notifier != nil {
		s.notifier.Notify()
	}
	return nil
}

// Submit posts one staged payload to the API. It is the queue's submit
// function. A conflict means the server already holds this clientOrderId, so
// the entry is done; surfacing it would wedge the queue on a duplicate.
func (s *Service) Submit(ctx context.Context, data json.RawMessage) error {
	var payload api.OrderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "decode staged order")
	}

	ctx = s.logg.WithClientOrderID(ctx, payload.ClientOrderID)
	_, err := s.orders.Create(ctx, payload)
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeConflict {
			s.logg.Warn(ctx, "order already accepted by the server; dropping staged copy")
			return nil
		}
		return err
	}
	s.logg.Info(ctx, "order submitted")
	return nil
}

// BuildPayload converts a table session plus checkout input into the wire
// shape, computing all derived money fields.
func BuildPayload(table cart.TableCart, input Input) api.OrderPayload {
	items := make([]api.OrderItem, 0, len(table.Items))
	for _, item := range table.Items {
		toppings := make([]api.OrderTopping, 0, len(item.Toppings))
		for _, topping := range item.Toppings {
			toppings = append(toppings, api.OrderTopping{
				ID:       topping.ID,
				Title:    topping.Title,
				Price:    topping.Price,
				Quantity: topping.Quantity,
			})
		}
		items = append(items, api.OrderItem{
			ProductID: item.Product.ID,
			Title:     item.Product.Title,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
			Toppings:  toppings,
			Note:      item.Note,
			Total:     cart.LineTotal(item),
		})
	}

	subtotal := cart.Subtotal(table.Items)
	discount := cart.Discount(input.DiscountType, input.DiscountValue, subtotal)

	return api.OrderPayload{
		ClientOrderID: table.ClientOrderID,
		OrderCode:     table.OrderID,
		TableID:       table.TableID,
		Customer:      table.Customer,
		Note:          table.Note,
		Status:        string(cart.StatusSubmitted),
		Items:         items,
		Subtotal:      subtotal,
		DiscountType:  string(input.DiscountType),
		DiscountValue: input.DiscountValue,
		Discount:      discount,
		Total:         cart.GrandTotal(subtotal, discount),
		PaymentMethod: input.PaymentMethod,
		CreatedAt:     table.CreatedAt,
	}
}
