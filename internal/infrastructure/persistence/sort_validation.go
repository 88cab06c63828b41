package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a sort field against a whitelist, falling back to defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"order_number":     true,
	"customer_name":    true,
	"status":           true,
	"shipping_charges": true,
	"payment_amount":   true,
	"confirmed_at":     true,
	"dispatched_at":    true,
	"completed_at":     true,
}

// OrderReturnSortFields contains allowed sort fields for order returns
var OrderReturnSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"return_number": true,
	"return_date":   true,
	"order_number":  true,
	"customer_name": true,
	"return_type":   true,
	"status":        true,
	"refund_amount": true,
}
