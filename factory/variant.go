/*
Package factory provides JSON to Go variant conversion.

PURPOSE:
  Converts JSON variant definitions into grid.Variant values. A variant
  captures everything that differs between two kinds of sales export:
  the date format, the header synonyms, the required columns and whether
  a cost column is carried. New exports are added without code changes.

JSON SCHEMA:
  {
    "name": "delimited_text",
    "description": "Ventas exportadas como CSV separado por ';'",
    "input": "csv",
    "date_format": "%d/%m/%Y",
    "columns": {
      "cantidad del producto": "quantity",
      "fecha": "sale_date",
      "sku": "sku"
    },
    "required": ["sku", "quantity", "sale_date"],
    "cost": false,
    "editable_costs": false
  }

KEY FEATURES:
  - Translates strftime date formats to Go layouts, checked by reading
    back a sample date rendered with go-strftime
  - Lowercases and trims rename keys like the normalizer does
  - Defaults required fields and renames
  - Registry keyed by variant name for the API and CLI

USAGE:
  f := NewVariantFactory()
  v, err := f.ParseVariant(DelimitedTextJSON())
  p := grid.NewPipeline(v)

SEE ALSO:
  - presets.go: Built-in variants
  - grid/pipeline.go: Variant type definition
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/warp/sales-grid/grid"
)

// exampleDate has a day that can't be mistaken for a month.
var exampleDate = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// VariantJSON is the JSON representation of a variant.
type VariantJSON struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Input         string            `json:"input"`       // csv, xlsx
	DateFormat    string            `json:"date_format"` // strftime, e.g. %d/%m/%Y
	Columns       map[string]string `json:"columns,omitempty"`
	Required      []string          `json:"required,omitempty"`
	Cost          bool              `json:"cost,omitempty"`
	EditableCosts bool              `json:"editable_costs,omitempty"`
}

// =============================================================================
// VARIANT FACTORY
// =============================================================================

// VariantFactory converts JSON variants to grid.Variant.
type VariantFactory struct{}

// NewVariantFactory creates a new variant factory.
func NewVariantFactory() *VariantFactory {
	return &VariantFactory{}
}

// ParseVariant parses a JSON string into a Variant.
func (f *VariantFactory) ParseVariant(jsonStr string) (grid.Variant, error) {
	var vj VariantJSON
	if err := json.Unmarshal([]byte(jsonStr), &vj); err != nil {
		return grid.Variant{}, fmt.Errorf("failed to parse variant JSON: %w", err)
	}
	return f.FromJSON(vj)
}

// FromJSON converts VariantJSON to grid.Variant.
func (f *VariantFactory) FromJSON(vj VariantJSON) (grid.Variant, error) {
	if strings.TrimSpace(vj.Name) == "" {
		return grid.Variant{}, fmt.Errorf("variant name is required")
	}

	input, err := parseInput(vj.Input)
	if err != nil {
		return grid.Variant{}, err
	}

	format := vj.DateFormat
	if format == "" {
		format = defaultDateFormat(input)
	}
	layout, err := StrftimeToLayout(format)
	if err != nil {
		return grid.Variant{}, fmt.Errorf("variant %s: %w", vj.Name, err)
	}
	example := strftime.Format(format, exampleDate)
	if parsed, err := time.Parse(layout, example); err != nil || !parsed.Equal(exampleDate) {
		return grid.Variant{}, fmt.Errorf("variant %s: date format %q cannot be read back", vj.Name, format)
	}

	v := grid.Variant{
		Name:          vj.Name,
		Description:   vj.Description,
		Input:         input,
		DateLayout:    layout,
		DateFormat:    format,
		DateExample:   example,
		Renames:       parseColumns(vj.Columns),
		Required:      vj.Required,
		HasCost:       vj.Cost,
		EditableCosts: vj.Cost && vj.EditableCosts,
	}
	if len(v.Required) == 0 {
		v.Required = append([]string(nil), grid.RequiredFields...)
	}
	return v, nil
}

// ToJSON converts a Variant back to VariantJSON.
func (f *VariantFactory) ToJSON(v grid.Variant) VariantJSON {
	return VariantJSON{
		Name:          v.Name,
		Description:   v.Description,
		Input:         v.Input,
		DateFormat:    v.DateFormat,
		Columns:       v.Renames,
		Required:      v.Required,
		Cost:          v.HasCost,
		EditableCosts: v.EditableCosts,
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the variants known to a process, by name.
type Registry struct {
	variants map[string]grid.Variant
	fallback string
}

// NewRegistry creates a registry whose default variant is fallback.
func NewRegistry(fallback string) *Registry {
	return &Registry{variants: make(map[string]grid.Variant), fallback: fallback}
}

// DefaultRegistry parses every preset. Presets are known-good, so a parse
// failure is a programming error.
func DefaultRegistry() *Registry {
	f := NewVariantFactory()
	r := NewRegistry(VariantDelimitedText)
	for _, js := range Presets() {
		v, err := f.ParseVariant(js)
		if err != nil {
			panic(fmt.Sprintf("invalid preset variant: %v", err))
		}
		r.Register(v)
	}
	return r
}

// SetDefault selects the variant used when a request names none.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.variants[name]; !ok {
		return fmt.Errorf("%w: %q", grid.ErrUnknownVariant, name)
	}
	r.fallback = name
	return nil
}

// Default returns the name of the default variant.
func (r *Registry) Default() string { return r.fallback }

// Register adds or replaces a variant.
func (r *Registry) Register(v grid.Variant) {
	r.variants[v.Name] = v
}

// Get returns the named variant. An empty name selects the default.
func (r *Registry) Get(name string) (grid.Variant, error) {
	if name == "" {
		name = r.fallback
	}
	v, ok := r.variants[name]
	if !ok {
		return grid.Variant{}, fmt.Errorf("%w: %q", grid.ErrUnknownVariant, name)
	}
	return v, nil
}

// List returns all variants sorted by name.
func (r *Registry) List() []grid.Variant {
	out := make([]grid.Variant, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseInput(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv", "text":
		return "csv", nil
	case "xlsx", "spreadsheet":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("unknown input format: %s", s)
	}
}

func defaultDateFormat(input string) string {
	if input == "xlsx" {
		return "%Y-%m-%d"
	}
	return "%d/%m/%Y"
}

// parseColumns normalizes rename keys the way headers are normalized, so
// "Cantidad del Producto " in JSON still matches.
func parseColumns(columns map[string]string) map[string]string {
	if len(columns) == 0 {
		out := make(map[string]string, len(grid.DefaultRenames))
		for k, v := range grid.DefaultRenames {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string, len(columns))
	for k, v := range columns {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// StrftimeToLayout translates the strftime directives used by sales exports
// into a Go time layout. Day and month accept one or two digits.
func StrftimeToLayout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("date format %q ends with a bare %%", format)
		}
		i++
		switch format[i] {
		case 'd':
			b.WriteString("2")
		case 'm':
			b.WriteString("1")
		case 'Y':
			b.WriteString("2006")
		case 'y':
			b.WriteString("06")
		case 'b':
			b.WriteString("Jan")
		case 'B':
			b.WriteString("January")
		case 'H':
			b.WriteString("15")
		case 'M':
			b.WriteString("04")
		case 'S':
			b.WriteString("05")
		case '%':
			b.WriteByte('%')
		default:
			return "", fmt.Errorf("unsupported date directive %%%c in %q", format[i], format)
		}
	}
	return b.String(), nil
}
