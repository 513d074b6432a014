// Package export turns a service snapshot into a downloadable artifact.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/invoicedesk/internal/types"
)

// Format is an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// BaseName is the file name stem used for exported artifacts.
const BaseName = "invoice_data"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format: %s (want json or xlsx)", s)
	}
}

// Artifact is an encoded export ready to be written or served.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// JSON pretty-prints a raw snapshot payload.
func JSON(raw []byte) (*Artifact, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format snapshot: %w", err)
	}
	buf.WriteByte('\n')
	return &Artifact{
		Name:        BaseName + ".json",
		ContentType: "application/json",
		Data:        buf.Bytes(),
	}, nil
}

const (
	sheetPages     = "Pages"
	sheetLineItems = "Line Items"
)

// XLSX builds a workbook with one row per page and one row per line item.
// Metadata columns are the union of keys seen across pages.
func XLSX(snap *types.ProcessResponse) (*Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile creates "Sheet1"; rename it rather than leaving an empty sheet behind.
	if err := f.SetSheetName("Sheet1", sheetPages); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetLineItems); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	keys := metadataKeys(snap.Pages)
	pageHeaders := append([]string{"Page", "Document ID", "Vendor ID", "Vendor", "Error"}, keys...)
	if err := writeRow(f, sheetPages, 1, toAny(pageHeaders)); err != nil {
		return nil, err
	}

	itemHeaders := []any{"Page", "Line", "Description", "Quantity", "Unit Price", "Tax Rate", "Tax Amount", "Amount"}
	if err := writeRow(f, sheetLineItems, 1, itemHeaders); err != nil {
		return nil, err
	}

	itemRow := 2
	for i, p := range snap.Pages {
		vendorID, vendorName := "", ""
		if p.Vendor != nil {
			vendorID, vendorName = p.Vendor.VendorID, p.Vendor.Name
		}
		row := []any{p.PageNumber, p.DocumentID, vendorID, vendorName, p.Error}
		for _, k := range keys {
			v := ""
			if p.InvoiceData != nil {
				v = p.InvoiceData.Metadata.Field(k)
			}
			row = append(row, v)
		}
		if err := writeRow(f, sheetPages, i+2, row); err != nil {
			return nil, err
		}

		if p.InvoiceData == nil {
			continue
		}
		for j, item := range p.InvoiceData.LineItems {
			line := []any{
				p.PageNumber,
				j + 1,
				deref(item.Description),
				deref(item.Quantity),
				deref(item.UnitPrice),
				deref(item.TaxRate),
				deref(item.TaxAmount),
				deref(item.Amount),
			}
			if err := writeRow(f, sheetLineItems, itemRow, line); err != nil {
				return nil, err
			}
			itemRow++
		}
	}

	_ = f.SetColWidth(sheetPages, "B", "B", 22)
	_ = f.SetColWidth(sheetPages, "D", "E", 28)
	_ = f.SetColWidth(sheetLineItems, "C", "C", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return &Artifact{
		Name:        BaseName + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}

func metadataKeys(pages []types.PageRecord) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, p := range pages {
		if p.InvoiceData == nil {
			continue
		}
		for _, k := range p.InvoiceData.Metadata.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// deref returns the pointed-to value, or "" for nil so the cell stays empty.
func deref[T any](p *T) any {
	if p == nil {
		return ""
	}
	return *p
}
