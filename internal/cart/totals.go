package cart

import "github.com/shopspring/decimal"

// DiscountType selects how a discount value is applied to a subtotal.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountAmount     DiscountType = "AMOUNT"
)

// LineTotal prices one line: (product price + topping prices) scaled by the
// line quantity. Topping quantity deliberately does not scale the price; the
// persisted carts this store round-trips were priced that way.
func LineTotal(item LineItem) int64 {
	unit := item.Product.Price
	for _, topping := range item.Toppings {
		unit += topping.Price
	}
	return unit * int64(item.Quantity)
}

// Subtotal sums the line totals of the given items.
func Subtotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += LineTotal(item)
	}
	return total
}

// Discount computes the discount for a subtotal. Percentage discounts floor
// to whole currency units; amount discounts pass through.
func Discount(dtype DiscountType, value, subtotal int64) int64 {
	switch dtype {
	case DiscountPercentage:
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(value)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case DiscountAmount:
		return value
	}
	return 0
}

// GrandTotal applies a discount to a subtotal, clamping at zero.
func GrandTotal(subtotal, discount int64) int64 {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}
