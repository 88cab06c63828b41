package trade

import (
	"github.com/shopspring/decimal"
)

// OrderLine is one product, optionally variant specific, within an order or return.
// Quantity and UnitPrice are nil when the line does not carry an explicit value,
// in which case they are resolved from the order's quantity and price maps.
type OrderLine struct {
	ProductID string
	VariantID string
	Name      string
	Quantity  *decimal.Decimal
	UnitPrice *decimal.Decimal
}

// NewOrderLine creates a line with explicit quantity and price
func NewOrderLine(productID, variantID, name string, quantity, unitPrice decimal.Decimal) OrderLine {
	return OrderLine{
		ProductID: productID,
		VariantID: variantID,
		Name:      name,
		Quantity:  &quantity,
		UnitPrice: &unitPrice,
	}
}

// LineKey returns the identity used to join quantity and price maps to lines:
// productId_variantId when a variant is present, productId otherwise.
func (l OrderLine) LineKey() string {
	return LineKey(l.ProductID, l.VariantID)
}

// LineKey builds a line key from its parts
func LineKey(productID, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + "_" + variantID
}

// WithQuantity returns a copy of the line with an explicit quantity
func (l OrderLine) WithQuantity(quantity decimal.Decimal) OrderLine {
	l.Quantity = &quantity
	return l
}

// ResolveQuantity resolves the line quantity with the precedence
// explicit value, quantities[lineKey], quantities[productId], then 1.
// The result is never negative.
func (l OrderLine) ResolveQuantity(quantities AmountMap) decimal.Decimal {
	q := decimal.NewFromInt(1)
	switch {
	case l.Quantity != nil:
		q = *l.Quantity
	default:
		if v, ok := quantities.lookup(l.LineKey(), l.ProductID); ok {
			q = v
		}
	}
	return clampNonNegative(q)
}

// ResolveUnitPrice resolves the unit price with the precedence
// explicit value, prices[lineKey], prices[productId], then 0.
// The result is never negative.
func (l OrderLine) ResolveUnitPrice(prices AmountMap) decimal.Decimal {
	p := decimal.Zero
	switch {
	case l.UnitPrice != nil:
		p = *l.UnitPrice
	default:
		if v, ok := prices.lookup(l.LineKey(), l.ProductID); ok {
			p = v
		}
	}
	return clampNonNegative(p)
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
