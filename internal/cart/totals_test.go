package cart

import "testing"

func TestLineTotalScalesByLineQuantityOnly(t *testing.T) {
	item := LineItem{
		Product:  Product{ID: "p1", Title: "Latte", Price: 45000},
		Quantity: 2,
		Toppings: []Topping{{ID: "t1", Title: "Extra shot", Price: 10000, Quantity: 3}},
	}
	// Topping quantity does not multiply the topping price.
	if got := LineTotal(item); got != 110000 {
		t.Fatalf("expected 110000, got %d", got)
	}
}

func TestSubtotal(t *testing.T) {
	items := []LineItem{
		{Product: Product{Price: 45000}, Quantity: 2},
		{Product: Product{Price: 20000}, Quantity: 1, Toppings: []Topping{{Price: 5000, Quantity: 1}}},
	}
	if got := Subtotal(items); got != 115000 {
		t.Fatalf("expected 115000, got %d", got)
	}
}

func TestDiscountMath(t *testing.T) {
	tests := []struct {
		name     string
		dtype    DiscountType
		value    int64
		subtotal int64
		want     int64
	}{
		{"percentage floors", DiscountPercentage, 15, 99999, 14999},
		{"percentage exact", DiscountPercentage, 10, 110000, 11000},
		{"percentage zero", DiscountPercentage, 0, 50000, 0},
		{"amount passes through", DiscountAmount, 7000, 50000, 7000},
		{"amount exceeding subtotal still raw", DiscountAmount, 90000, 50000, 90000},
		{"unknown type no discount", DiscountType("VOUCHER"), 10, 50000, 0},
	}
	for _, tt := range tests {
		if got := Discount(tt.dtype, tt.value, tt.subtotal); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestGrandTotalNeverNegative(t *testing.T) {
	if got := GrandTotal(50000, 7000); got != 43000 {
		t.Fatalf("expected 43000, got %d", got)
	}
	if got := GrandTotal(50000, 90000); got != 0 {
		t.Fatalf("expected clamp to zero, got %d", got)
	}
}
