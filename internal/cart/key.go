package cart

import (
	"fmt"
	"sort"
	"strings"
)

// LineKey derives the deterministic identity for a line item from the product
// id, the topping set, and the free-text note. Toppings are sorted by id so
// selection order never splits a line; a bare product with no note yields
// "<productID>::".
func LineKey(productID string, toppings []Topping, note string) string {
	parts := make([]string, 0, len(toppings))
	for _, topping := range toppings {
		parts = append(parts, fmt.Sprintf("%sx%d", topping.ID, topping.Quantity))
	}
	sort.Strings(parts)
	return productID + ":" + strings.Join(parts, "+") + ":" + note
}
