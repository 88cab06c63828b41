package trade

import (
	"github.com/shopspring/decimal"
)

// ComputeLineTotal returns quantity * unit price for a single line.
// Quantity resolves as explicit value, quantities[lineKey], quantities[productId], 1.
// Unit price resolves as explicit value, prices[lineKey], prices[productId], 0.
// Negative operands count as zero, so the result is never negative.
func ComputeLineTotal(line OrderLine, quantities, prices AmountMap) decimal.Decimal {
	return line.ResolveQuantity(quantities).Mul(line.ResolveUnitPrice(prices))
}

// ComputeProductsTotal sums ComputeLineTotal over lines. Empty input yields zero.
func ComputeProductsTotal(lines []OrderLine, quantities, prices AmountMap) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(ComputeLineTotal(line, quantities, prices))
	}
	return total
}

// ComputeOrderTotal returns the products total of an order. Shipping charges
// are excluded; they are tracked and refunded separately.
func ComputeOrderTotal(order *Order) decimal.Decimal {
	if order == nil {
		return decimal.Zero
	}
	return ComputeProductsTotal(order.Lines(), order.ProductQuantities, order.ProductPrices)
}

// PaymentStatus is the payment position of an order.
// Remaining is not clamped: a negative value means the customer overpaid.
type PaymentStatus struct {
	Total           decimal.Decimal
	Paid            decimal.Decimal
	Remaining       decimal.Decimal
	IsFullyPaid     bool
	IsPartiallyPaid bool
	IsUnpaid        bool
}

// ComputePaymentStatus derives the payment position of an order.
// Exactly one of the three flags is set; a zero total with nothing paid counts as fully paid.
func ComputePaymentStatus(order *Order) PaymentStatus {
	total := ComputeOrderTotal(order)
	paid := decimal.Zero
	if order != nil && order.PaymentAmount != nil {
		paid = clampNonNegative(*order.PaymentAmount)
	}
	return paymentStatus(total, paid)
}

func paymentStatus(total, paid decimal.Decimal) PaymentStatus {
	fully := paid.GreaterThanOrEqual(total)
	return PaymentStatus{
		Total:           total,
		Paid:            paid,
		Remaining:       total.Sub(paid),
		IsFullyPaid:     fully,
		IsPartiallyPaid: paid.IsPositive() && paid.LessThan(total),
		IsUnpaid:        paid.IsZero() && !fully,
	}
}

// SuggestedPaymentAmount is the amount to pre-fill when recording a payment:
// the stored payment amount once one has been set, else the products total.
func SuggestedPaymentAmount(order *Order) decimal.Decimal {
	if order != nil && order.PaymentAmount != nil {
		return *order.PaymentAmount
	}
	return ComputeOrderTotal(order)
}
