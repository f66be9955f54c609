package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/storage"
)

const stateKey = "cart:state"

// Store owns the cart/table state for one terminal. Every mutation applies
// in memory first and then re-serializes the whole state to storage; a
// persistence failure leaves the in-memory state authoritative and is
// surfaced to the caller.
type Store struct {
	mu    sync.Mutex
	state State

	store storage.Store
	logg  *logger.Logger

	now              func() time.Time
	newClientOrderID func() string
	newOrderCode     func(time.Time) string
}

// NewStore hydrates the cart state from storage. An absent or unreadable
// blob starts an empty store rather than failing the terminal.
func NewStore(ctx context.Context, store storage.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("storage adapter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	s := &Store{
		store:            store,
		logg:             logg,
		now:              time.Now,
		newClientOrderID: uuid.NewString,
		newOrderCode:     orderCode,
	}
	s.state = s.hydrate(ctx)
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) State {
	raw, err := s.store.Get(ctx, stateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return emptyState()
	}
	if err != nil {
		s.logg.Error(ctx, "cart state unreadable; starting empty", err)
		return emptyState()
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logg.Error(ctx, "cart state corrupt; starting empty", err)
		return emptyState()
	}
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	if state.Tables == nil {
		state.Tables = map[string]TableCart{}
	}
	return state
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("serialize cart state: %w", err)
	}
	return s.store.Set(ctx, stateKey, raw)
}

// getOrCreate returns the table cart for tableID, creating the session
// record with fresh order ids on first touch.
func (s *Store) getOrCreate(tableID string) TableCart {
	if table, ok := s.state.Tables[tableID]; ok {
		return table
	}
	// UTC also strips the monotonic reading so the timestamp survives a
	// serialize/rehydrate cycle unchanged.
	now := s.now().UTC()
	table := TableCart{
		TableID:       tableID,
		Items:         []LineItem{},
		OrderID:       s.newOrderCode(now),
		ClientOrderID: s.newClientOrderID(),
		Status:        StatusDraft,
		Customer:      DefaultCustomer,
		CreatedAt:     now,
	}
	s.state.Tables[tableID] = table
	return table
}

func mergeLine(items []LineItem, product Product, qty int, toppings []Topping, note string) []LineItem {
	key := LineKey(product.ID, toppings, note)
	for i := range items {
		if items[i].Key == key {
			items[i].Quantity += qty
			return items
		}
	}
	if toppings == nil {
		toppings = []Topping{}
	}
	return append(items, LineItem{
		Key:      key,
		Product:  product,
		Quantity: qty,
		Toppings: toppings,
		Note:     note,
	})
}

// AddToTable merges qty of product into the table's cart, creating the table
// session on first touch. qty values below 1 count as 1.
func (s *Store) AddToTable(ctx context.Context, tableID string, product Product, qty int, toppings []Topping, note string) error {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getOrCreate(tableID)
	table.Items = mergeLine(table.Items, product, qty, toppings, note)
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// RemoveFromTable deletes the line with key from the table's cart. Removing
// the last line keeps the table record; only ClearTable drops it.
func (s *Store) RemoveFromTable(ctx context.Context, tableID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.state.Tables[tableID]
	if !ok {
		return nil
	}
	table.Items = removeLine(table.Items, key)
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// UpdateQuantity replaces the quantity of the line with key, flooring at 1.
func (s *Store) UpdateQuantity(ctx context.Context, tableID, key string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.state.Tables[tableID]
	if !ok {
		return nil
	}
	changed := false
	for i := range table.Items {
		if table.Items[i].Key == key {
			table.Items[i].Quantity = qty
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// UpdateItemNote sets the free-text note on the line with key.
func (s *Store) UpdateItemNote(ctx context.Context, tableID, key, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.state.Tables[tableID]
	if !ok {
		return nil
	}
	changed := false
	for i := range table.Items {
		if table.Items[i].Key == key {
			table.Items[i].Note = note
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// UpdateTableNote sets the order-level note, creating the table session if
// it does not exist yet.
func (s *Store) UpdateTableNote(ctx context.Context, tableID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getOrCreate(tableID)
	table.Note = note
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// UpdateTableCustomer sets the display name for the session's guest.
func (s *Store) UpdateTableCustomer(ctx context.Context, tableID, customer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getOrCreate(tableID)
	if strings.TrimSpace(customer) == "" {
		customer = DefaultCustomer
	}
	table.Customer = customer
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// UpdateTableStatus sets the session status. No-op when the table is absent.
func (s *Store) UpdateTableStatus(ctx context.Context, tableID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.state.Tables[tableID]
	if !ok {
		return nil
	}
	table.Status = status
	s.state.Tables[tableID] = table
	return s.persist(ctx)
}

// ClearTable removes the table's whole session record. This is the explicit
// "order complete" path; emptying items one by one never reaches here.
func (s *Store) ClearTable(ctx context.Context, tableID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Tables[tableID]; !ok {
		return nil
	}
	delete(s.state.Tables, tableID)
	return s.persist(ctx)
}

// Add merges qty of product into the default takeaway cart.
func (s *Store) Add(ctx context.Context, product Product, qty int, toppings []Topping, note string) error {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = mergeLine(s.state.Items, product, qty, toppings, note)
	return s.persist(ctx)
}

// Remove deletes the line with key from the default cart.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = removeLine(s.state.Items, key)
	return s.persist(ctx)
}

// SetQuantity replaces a default-cart line quantity, flooring at 1.
func (s *Store) SetQuantity(ctx context.Context, key string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].Key == key {
			s.state.Items[i].Quantity = qty
			return s.persist(ctx)
		}
	}
	return nil
}

// SetItemNote sets the free-text note on a default-cart line.
func (s *Store) SetItemNote(ctx context.Context, key, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].Key == key {
			s.state.Items[i].Note = note
			return s.persist(ctx)
		}
	}
	return nil
}

// Clear empties the default cart's items. Table sessions are untouched.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = []LineItem{}
	return s.persist(ctx)
}

// Table returns a copy of the cart for tableID, or the empty draft shape
// when no session exists.
func (s *Store) Table(tableID string) TableCart {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.state.Tables[tableID]
	if !ok {
		return TableCart{
			TableID:  tableID,
			Items:    []LineItem{},
			Status:   StatusDraft,
			Customer: DefaultCustomer,
		}
	}
	return copyTable(table)
}

// Tables returns a copy of every open table session.
func (s *Store) Tables() map[string]TableCart {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := make(map[string]TableCart, len(s.state.Tables))
	for id, table := range s.state.Tables {
		tables[id] = copyTable(table)
	}
	return tables
}

// Items returns a copy of the default cart's lines.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.state.Items)
}

func removeLine(items []LineItem, key string) []LineItem {
	kept := items[:0]
	for _, item := range items {
		if item.Key != key {
			kept = append(kept, item)
		}
	}
	return kept
}

func copyTable(table TableCart) TableCart {
	copied := table
	copied.Items = copyItems(table.Items)
	return copied
}

func copyItems(items []LineItem) []LineItem {
	copied := make([]LineItem, len(items))
	copy(copied, items)
	for i := range copied {
		toppings := make([]Topping, len(copied[i].Toppings))
		copy(toppings, copied[i].Toppings)
		copied[i].Toppings = toppings
	}
	return copied
}

// orderCode builds the short display code shown on receipts and the table
// map, e.g. ORD-240831-7F3A.
func orderCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:4]
	return fmt.Sprintf("ORD-%s-%s", now.Format("060102"), suffix)
}
