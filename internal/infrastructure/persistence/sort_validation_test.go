package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := map[string]string{
		"":                        "DESC",
		"ASC":                     "ASC",
		"asc":                     "ASC",
		"  asc  ":                 "ASC",
		"desc":                    "DESC",
		"sideways":                "DESC",
		"ASC; DROP TABLE orders;": "DESC",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty falls back", "", "created_at"},
		{"whitelisted field", "order_number", "order_number"},
		{"trimmed field", "  status ", "status"},
		{"unknown field falls back", "total_amount", "created_at"},
		{"case sensitive", "STATUS", "created_at"},
		{"injection attempt", "id; DROP TABLE orders;--", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, OrderSortFields, "created_at"))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	for _, field := range []string{"id", "created_at", "updated_at", "status"} {
		assert.True(t, OrderSortFields[field], "orders should allow %s", field)
		assert.True(t, OrderReturnSortFields[field], "returns should allow %s", field)
	}
	assert.True(t, OrderReturnSortFields["refund_amount"])
	assert.False(t, OrderSortFields["refund_amount"])
}
