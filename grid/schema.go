package grid

import "strings"

// =============================================================================
// COLUMN NORMALIZER
// =============================================================================

// DefaultRenames maps the headers found in the sales export to canonical names.
// Keys are already trimmed and lowercased.
var DefaultRenames = map[string]string{
	"cantidad del producto": FieldQuantity,
	"fecha":                 FieldSaleDate,
	"sku":                   FieldSKU,
}

// NormalizeHeader trims and lowercases one header, then applies renames.
func NormalizeHeader(header string, renames map[string]string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := renames[h]; ok {
		return canonical
	}
	return h
}

// NormalizeHeaders returns a new header list with canonical names substituted.
// Headers without a mapping pass through trimmed and lowercased.
func NormalizeHeaders(headers []string, renames map[string]string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h, renames)
	}
	return out
}

// =============================================================================
// SCHEMA VALIDATOR
// =============================================================================

// ValidateSchema checks that every required field is among the normalized
// headers. The returned *SchemaError lists all of them, not just the first.
func ValidateSchema(headers []string, required []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, field := range required {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing, Found: append([]string(nil), headers...)}
	}
	return nil
}

// columnIndex returns the position of the first header named field, or -1.
// Duplicate canonical headers resolve to the leftmost column.
func columnIndex(headers []string, field string) int {
	for i, h := range headers {
		if h == field {
			return i
		}
	}
	return -1
}
