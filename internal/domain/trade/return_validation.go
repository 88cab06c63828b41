package trade

import (
	"fmt"
	"sort"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValidateReturnQuantities checks a proposed selection against what is still
// returnable on the order. Rejected returns are ignored. A CUSTOMER_FULL
// selection is always the whole order at purchased quantities, and no return
// may be raised once an active full return exists.
//
// The returned error is a *shared.DomainError with one of the codes
// EMPTY_SELECTION, LINE_NOT_IN_ORDER, INVALID_QUANTITY,
// RETURN_QUANTITY_EXCEEDED or FULL_RETURN_EXISTS.
func ValidateReturnQuantities(
	returnType ReturnType,
	selectedLines []OrderLine,
	order *Order,
	existingReturns []OrderReturn,
) error {
	if order == nil {
		return shared.NewDomainError("INVALID_ORDER", "Order cannot be nil")
	}

	returned := make(AmountMap)
	for i := range existingReturns {
		existing := &existingReturns[i]
		if !existing.IsActive() {
			continue
		}
		if existing.ReturnType == ReturnTypeCustomerFull {
			return shared.ErrFullReturnExists
		}
		for key, q := range existing.ReturnedQuantities() {
			returned[key] = returned[key].Add(q)
		}
	}

	var selection []OrderLine
	if returnType == ReturnTypeCustomerFull {
		selection = order.ResolvedLines()
	} else {
		selection = order.ResolveSelection(selectedLines)
	}
	if len(selection) == 0 {
		return shared.ErrEmptySelection
	}

	purchased := order.PurchasedQuantities()
	requested := make(AmountMap)
	for _, line := range selection {
		key := line.LineKey()
		if _, ok := purchased[key]; !ok {
			return shared.NewDomainError(shared.ErrLineNotInOrder.Code,
				fmt.Sprintf("Product %s is not part of order %s", key, order.OrderNumber))
		}
		q := *line.Quantity
		if q.LessThan(decimal.NewFromInt(1)) {
			return shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Return quantity for product %s must be at least 1", key))
		}
		if !q.IsInteger() {
			return shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Return quantity for product %s must be a whole number", key))
		}
		requested[key] = requested[key].Add(q)
	}

	// Deterministic order so the reported line is stable
	keys := make([]string, 0, len(requested))
	for key := range requested {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		available := purchased[key].Sub(returned[key])
		if requested[key].GreaterThan(available) {
			return shared.NewDomainError(shared.ErrReturnQuantityExceeded.Code,
				fmt.Sprintf("Return quantity %s for product %s exceeds available quantity %s",
					requested[key].String(), key, clampNonNegative(available).String()))
		}
	}
	return nil
}

// AvailableQuantities returns purchased minus already returned quantity per
// line key, ignoring rejected returns.
func AvailableQuantities(order *Order, existingReturns []OrderReturn) AmountMap {
	available := order.PurchasedQuantities()
	for i := range existingReturns {
		if !existingReturns[i].IsActive() {
			continue
		}
		for key, q := range existingReturns[i].ReturnedQuantities() {
			if _, ok := available[key]; ok {
				available[key] = clampNonNegative(available[key].Sub(q))
			}
		}
	}
	return available
}
