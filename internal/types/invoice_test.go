package types

import (
	"encoding/json"
	"testing"
)

func TestMetadata_Field(t *testing.T) {
	m := Metadata{
		"total_amount": "100.00",
		"subtotal":     90.5,
		"tax_total":    float64(10),
		"po_number":    nil,
		"paid":         true,
	}

	tests := []struct {
		key  string
		want string
	}{
		{"total_amount", "100.00"},
		{"subtotal", "90.5"},
		{"tax_total", "10"},
		{"po_number", ""},
		{"paid", "true"},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := m.Field(tt.key); got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestMetadata_Keys(t *testing.T) {
	m := Metadata{"b": 1, "a": 2, "c": 3}
	keys := m.Keys()
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestPageRecord_DecodeServicePayload(t *testing.T) {
	payload := `{
		"pages": [
			{"document_id": "DOC-1", "invoice_data": {"metadata": {"total_amount": "100.00"}, "line_items": []}, "vendor": null},
			{"page_number": 2, "document_id": "DOC-1-P2", "error": "unreadable", "invoice_data": null, "vendor": null}
		],
		"total_pages": 2
	}`

	var resp ProcessResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", resp.TotalPages)
	}
	first := resp.Pages[0]
	if first.PageNumber != 0 {
		t.Errorf("first.PageNumber = %d, want 0 (absent)", first.PageNumber)
	}
	if first.Failed() {
		t.Error("first page should not be failed")
	}
	if first.Vendor != nil {
		t.Error("null vendor should decode to nil")
	}
	if got := first.InvoiceData.Metadata.Field("total_amount"); got != "100.00" {
		t.Errorf("total_amount = %q, want 100.00", got)
	}

	second := resp.Pages[1]
	if !second.Failed() {
		t.Error("second page should be failed")
	}
	if second.InvoiceData != nil {
		t.Error("null invoice_data should decode to nil")
	}
}
