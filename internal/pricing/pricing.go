// Package pricing holds the pure money helpers shared by the cart, checkout
// and catalog views.
package pricing

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Display locale and currency are fixed so output is stable across hosts.
const (
	Locale         = "en-IN"
	CurrencyCode   = "INR"
	CurrencySymbol = "₹"
)

var printer = message.NewPrinter(language.MustParse(Locale))

// FormatCurrency renders amount with the store currency and no fractional digits.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + CurrencySymbol + printer.Sprint(number.Decimal(rounded.IntPart()))
}

// LineTotal is unitPrice*quantity. A negative quantity is a programming error.
func LineTotal(item domain.LineItem) decimal.Decimal {
	if item.Quantity < 0 {
		panic(fmt.Sprintf("pricing: negative quantity %d for line %q", item.Quantity, item.ID))
	}
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func Subtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// CountItems sums quantities, so one line of 3 counts as 3.
func CountItems(items []domain.LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// DiscountedPrice applies a percentage discount. Percentages outside (0,100]
// leave the price unchanged.
func DiscountedPrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	if !discountPercent.IsPositive() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return price
	}
	return price.Sub(price.Mul(discountPercent).Div(decimal.NewFromInt(100)))
}
