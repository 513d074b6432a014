// Package types provides the record shapes exchanged with the extraction service.
// This package has no dependencies on other invoicedesk packages to avoid import cycles.
package types

import (
	"fmt"
	"sort"
	"strconv"
)

// Metadata is the free-form header block of an extracted invoice
// (invoice_number, invoice_date, po_number, currency, total_amount, ...).
// Keys follow the service's snake_case naming.
type Metadata map[string]any

// Field returns the value stored under key rendered as a string.
// Missing and null values render as "".
func (m Metadata) Field(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LineItem is one row of an invoice. Every column is optional because the
// service reports only what it could read.
type LineItem struct {
	Description *string  `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
	TaxRate     *float64 `json:"tax_rate,omitempty" yaml:"tax_rate,omitempty"`
	TaxAmount   *float64 `json:"tax_amount,omitempty" yaml:"tax_amount,omitempty"`
	Amount      *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// InvoiceData is the structured payload extracted from one page.
type InvoiceData struct {
	Metadata  Metadata   `json:"metadata" yaml:"metadata"`
	LineItems []LineItem `json:"line_items" yaml:"line_items"`
}
