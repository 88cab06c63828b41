package trade

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountMap maps a line key (or bare product id) to a quantity or unit price.
// It is the typed form of the productQuantities / productPrices blobs.
type AmountMap map[string]decimal.Decimal

// ParseAmountMap decodes a persisted JSON blob into an AmountMap.
// It never fails: absent, malformed or non-object input yields an empty map,
// and entries that are neither numbers nor numeric strings are skipped.
func ParseAmountMap(raw []byte) AmountMap {
	out := make(AmountMap)
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return out
	}

	// Older records stored the blob as a JSON string containing JSON
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		return ParseAmountMap([]byte(inner))
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return out
	}
	for key, value := range entries {
		if d, ok := parseAmount(value); ok {
			out[key] = d
		}
	}
	return out
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		d, err := decimal.NewFromString(num.String())
		return d, err == nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		return d, err == nil
	}
	return decimal.Zero, false
}

// JSON encodes the map for persistence. Values are written as decimal strings.
func (m AmountMap) JSON() []byte {
	if len(m) == 0 {
		return []byte("{}")
	}
	data, err := json.Marshal(map[string]decimal.Decimal(m))
	if err != nil {
		return []byte("{}")
	}
	return data
}

// Clone returns a copy of the map
func (m AmountMap) Clone() AmountMap {
	out := make(AmountMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// lookup returns the first value found for the given keys, in order
func (m AmountMap) lookup(keys ...string) (decimal.Decimal, bool) {
	if m == nil {
		return decimal.Zero, false
	}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return decimal.Zero, false
}
