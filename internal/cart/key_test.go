package cart

import "testing"

func TestLineKeyBareProduct(t *testing.T) {
	if key := LineKey("p1", nil, ""); key != "p1::" {
		t.Fatalf("expected %q, got %q", "p1::", key)
	}
}

func TestLineKeyToppingOrderIrrelevant(t *testing.T) {
	a := LineKey("p1", []Topping{{ID: "t2", Quantity: 1}, {ID: "t1", Quantity: 2}}, "less ice")
	b := LineKey("p1", []Topping{{ID: "t1", Quantity: 2}, {ID: "t2", Quantity: 1}}, "less ice")
	if a != b {
		t.Fatalf("selection order must not change the key: %q vs %q", a, b)
	}
}

func TestLineKeyDistinguishes(t *testing.T) {
	base := LineKey("p1", []Topping{{ID: "t1", Quantity: 1}}, "")
	tests := []struct {
		name string
		key  string
	}{
		{"different product", LineKey("p2", []Topping{{ID: "t1", Quantity: 1}}, "")},
		{"different topping qty", LineKey("p1", []Topping{{ID: "t1", Quantity: 2}}, "")},
		{"extra topping", LineKey("p1", []Topping{{ID: "t1", Quantity: 1}, {ID: "t2", Quantity: 1}}, "")},
		{"note added", LineKey("p1", []Topping{{ID: "t1", Quantity: 1}}, "no sugar")},
	}
	for _, tt := range tests {
		if tt.key == base {
			t.Fatalf("%s should produce a different key", tt.name)
		}
	}
}
