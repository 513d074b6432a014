package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(NewClient(srv.URL))
}

func TestService_ProcessDocument(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathProcess || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"pages":[{"document_id":"DOC-1","invoice_data":{"metadata":{"total_amount":"100.00"},"line_items":[]},"vendor":null}],"total_pages":1}`)
	})

	resp, err := svc.ProcessDocument(context.Background(), "a.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if resp.TotalPages != 1 || len(resp.Pages) != 1 {
		t.Fatalf("got %d pages / total %d, want 1/1", len(resp.Pages), resp.TotalPages)
	}
	if got := resp.Pages[0].InvoiceData.Metadata.Field("total_amount"); got != "100.00" {
		t.Errorf("total_amount = %q, want 100.00", got)
	}
}

func TestService_ProcessRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing pages", `{"total_pages":1}`},
		{"pages not array", `{"pages":{},"total_pages":1}`},
		{"invoice without metadata", `{"pages":[{"invoice_data":{"line_items":[]}}],"total_pages":1}`},
		{"page number zero", `{"pages":[{"page_number":0}],"total_pages":1}`},
		{"vendor missing id", `{"pages":[{"vendor":{"name":"Acme"}}],"total_pages":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})
			_, err := svc.ProcessSample(context.Background(), "sample.pdf")
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestService_Correct(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string `json:"query"`
			PageIndex int    `json:"page_index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Query != "PO number should be PO-9" || req.PageIndex != 2 {
			t.Errorf("unexpected request %+v", req)
		}
		io.WriteString(w, `{"document_id":"DOC","invoice_data":{"metadata":{"po_number":"PO-9"},"line_items":[]},"vendor":null}`)
	})

	resp, err := svc.Correct(context.Background(), "PO number should be PO-9", 2)
	if err != nil {
		t.Fatalf("Correct() error = %v", err)
	}
	if resp.InvoiceData == nil || resp.InvoiceData.Metadata.Field("po_number") != "PO-9" {
		t.Errorf("unexpected correction payload %+v", resp.InvoiceData)
	}
	if resp.Vendor != nil {
		t.Error("vendor should be nil")
	}
}

func TestService_ExtractField(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"field":"po_number","value":"PO-9","confidence":"high"}`)
	})

	v, err := svc.ExtractField(context.Background(), "po_number", 0)
	if err != nil {
		t.Fatalf("ExtractField() error = %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	if m["value"] != "PO-9" {
		t.Errorf("value = %v, want PO-9", m["value"])
	}
}

func TestService_ListVendors(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"vendor_id":"V1","name":"Acme","address":null},{"vendor_id":"V2","name":"Globex","address":"1 Main St"}]`)
	})

	vendors, err := svc.ListVendors(context.Background())
	if err != nil {
		t.Fatalf("ListVendors() error = %v", err)
	}
	if len(vendors) != 2 {
		t.Fatalf("got %d vendors, want 2", len(vendors))
	}
	if vendors[1].Address != "1 Main St" {
		t.Errorf("address = %q", vendors[1].Address)
	}
}

func TestService_CurrentSnapshot_NotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"No invoice currently loaded"}`)
	})

	_, err := svc.CurrentSnapshot(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Preview(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "7" {
			t.Errorf("t = %q, want 7", r.URL.Query().Get("t"))
		}
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "PNG")
	})

	data, ct, err := svc.Preview(context.Background(), "7")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if string(data) != "PNG" || ct != "image/png" {
		t.Errorf("got %q (%s)", data, ct)
	}
}
