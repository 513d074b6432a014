package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/invoicedesk/internal/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"XLSX", FormatXLSX, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	raw := []byte(`{"pages":[{"page_number":1}],"total_pages":1}`)
	art, err := JSON(raw)
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if art.Name != "invoice_data.json" {
		t.Errorf("Name = %q", art.Name)
	}
	if art.ContentType != "application/json" {
		t.Errorf("ContentType = %q", art.ContentType)
	}
	want := "{\n  \"pages\": [\n    {\n      \"page_number\": 1\n    }\n  ],\n  \"total_pages\": 1\n}\n"
	if string(art.Data) != want {
		t.Errorf("Data =\n%s\nwant\n%s", art.Data, want)
	}

	if _, err := JSON([]byte("{")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestXLSX(t *testing.T) {
	desc := "Consulting"
	qty := 2.0
	amount := 200.0
	snap := &types.ProcessResponse{
		TotalPages: 2,
		Pages: []types.PageRecord{
			{
				PageNumber: 1,
				DocumentID: "DOC-P1",
				InvoiceData: &types.InvoiceData{
					Metadata:  types.Metadata{"invoice_number": "INV-1", "total_amount": "200.00"},
					LineItems: []types.LineItem{{Description: &desc, Quantity: &qty, Amount: &amount}},
				},
				Vendor: &types.Vendor{VendorID: "V1", Name: "Acme"},
			},
			{PageNumber: 2, DocumentID: "DOC-P2", Error: "unreadable"},
		},
	}

	art, err := XLSX(snap)
	if err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}
	if art.Name != "invoice_data.xlsx" {
		t.Errorf("Name = %q", art.Name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	pages, err := f.GetRows(sheetPages)
	if err != nil {
		t.Fatalf("GetRows(pages): %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages rows = %d, want 3", len(pages))
	}
	wantHeader := []string{"Page", "Document ID", "Vendor ID", "Vendor", "Error", "invoice_number", "total_amount"}
	for i, h := range wantHeader {
		if pages[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, pages[0][i], h)
		}
	}
	if pages[1][3] != "Acme" || pages[1][5] != "INV-1" || pages[1][6] != "200.00" {
		t.Errorf("unexpected page 1 row: %v", pages[1])
	}
	if pages[2][4] != "unreadable" {
		t.Errorf("page 2 error cell = %q", pages[2][4])
	}

	items, err := f.GetRows(sheetLineItems)
	if err != nil {
		t.Fatalf("GetRows(items): %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("line item rows = %d, want 2", len(items))
	}
	if items[1][2] != "Consulting" || items[1][3] != "2" || items[1][7] != "200" {
		t.Errorf("unexpected line item row: %v", items[1])
	}
}
