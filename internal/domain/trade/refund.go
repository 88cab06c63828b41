package trade

import (
	"fmt"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnType identifies who is returning goods
type ReturnType string

const (
	ReturnTypeCustomerFull    ReturnType = "CUSTOMER_FULL"
	ReturnTypeCustomerPartial ReturnType = "CUSTOMER_PARTIAL"
	ReturnTypeSupplier        ReturnType = "SUPPLIER"
)

// IsValid checks if the return type is known
func (t ReturnType) IsValid() bool {
	switch t {
	case ReturnTypeCustomerFull, ReturnTypeCustomerPartial, ReturnTypeSupplier:
		return true
	}
	return false
}

// IsCustomer reports whether the return comes from a customer
func (t ReturnType) IsCustomer() bool {
	return t == ReturnTypeCustomerFull || t == ReturnTypeCustomerPartial
}

// String returns the string representation of ReturnType
func (t ReturnType) String() string {
	return string(t)
}

// ShippingChargeHandling decides who absorbs the order's shipping cost on a customer return
type ShippingChargeHandling string

const (
	ShippingFullRefund        ShippingChargeHandling = "FULL_REFUND"
	ShippingCustomerPays      ShippingChargeHandling = "CUSTOMER_PAYS"
	ShippingDeductFromAdvance ShippingChargeHandling = "DEDUCT_FROM_ADVANCE"
)

// IsValid checks if the handling is known
func (h ShippingChargeHandling) IsValid() bool {
	switch h {
	case ShippingFullRefund, ShippingCustomerPays, ShippingDeductFromAdvance:
		return true
	}
	return false
}

// String returns the string representation of ShippingChargeHandling
func (h ShippingChargeHandling) String() string {
	return string(h)
}

// ValidateReturnOptions checks the return type and, for customer returns, the
// shipping charge handling. Supplier returns carry no handling, so it is
// returned empty for them.
func ValidateReturnOptions(returnType ReturnType, handling ShippingChargeHandling) (ShippingChargeHandling, error) {
	if !returnType.IsValid() {
		return "", shared.NewDomainError("INVALID_RETURN_TYPE", fmt.Sprintf("Unknown return type %q", returnType))
	}
	if !returnType.IsCustomer() {
		return "", nil
	}
	if !handling.IsValid() {
		return "", shared.NewDomainError("INVALID_SHIPPING_HANDLING", fmt.Sprintf("Unknown shipping charge handling %q", handling))
	}
	return handling, nil
}

// RefundBreakdown is the result of a refund calculation.
// WrittenOffShortfall is the part of a negative refund removed by clamping
// RefundAmount to zero; it is non-zero only when the shipping deduction
// exceeds the products value.
type RefundBreakdown struct {
	ProductsValue       decimal.Decimal
	ShippingCharges     decimal.Decimal
	AdvanceUsed         decimal.Decimal
	RefundAmount        decimal.Decimal
	WrittenOffShortfall decimal.Decimal
}

// HasShortfall reports whether part of the shipping cost could not be recovered
func (b RefundBreakdown) HasShortfall() bool {
	return b.WrittenOffShortfall.IsPositive()
}

// ComputeReturnRefund calculates the refund for a proposed return.
//
// The products value is the whole order for CUSTOMER_FULL and the selected
// lines otherwise. Customer returns then apply the shipping disposition:
//   - FULL_REFUND adds the shipping charges to the refund
//   - CUSTOMER_PAYS deducts them
//   - DEDUCT_FROM_ADVANCE covers them from the advance balance and deducts
//     whatever the advance cannot cover
//
// Supplier returns refund the products value only.
func ComputeReturnRefund(
	order *Order,
	returnType ReturnType,
	selectedLines []OrderLine,
	handling ShippingChargeHandling,
	advanceBalance decimal.Decimal,
) RefundBreakdown {
	if order == nil {
		return RefundBreakdown{}
	}

	var productsValue decimal.Decimal
	if returnType == ReturnTypeCustomerFull {
		productsValue = ComputeOrderTotal(order)
	} else {
		productsValue = ComputeProductsTotal(selectedLines, order.EffectiveQuantities(), order.EffectivePrices())
	}

	shipping := clampNonNegative(order.ShippingCharges)
	advance := clampNonNegative(advanceBalance)
	finalRefund := productsValue
	advanceUsed := decimal.Zero

	if returnType.IsCustomer() {
		switch handling {
		case ShippingFullRefund:
			finalRefund = finalRefund.Add(shipping)
		case ShippingDeductFromAdvance:
			if advance.GreaterThanOrEqual(shipping) {
				advanceUsed = shipping
			} else {
				advanceUsed = advance
				finalRefund = finalRefund.Sub(shipping.Sub(advance))
			}
		case ShippingCustomerPays:
			finalRefund = finalRefund.Sub(shipping)
		}
	}

	breakdown := RefundBreakdown{
		ProductsValue:       productsValue,
		ShippingCharges:     shipping,
		AdvanceUsed:         advanceUsed,
		RefundAmount:        finalRefund,
		WrittenOffShortfall: decimal.Zero,
	}
	if finalRefund.IsNegative() {
		breakdown.RefundAmount = decimal.Zero
		breakdown.WrittenOffShortfall = finalRefund.Neg()
	}
	return breakdown
}
