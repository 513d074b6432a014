package types

// Vendor is an entry of the service's vendor registry.
type Vendor struct {
	VendorID       string `json:"vendor_id" yaml:"vendor_id"`
	Name           string `json:"name" yaml:"name"`
	NormalizedName string `json:"normalized_name,omitempty" yaml:"normalized_name,omitempty"`
	Address        string `json:"address,omitempty" yaml:"address,omitempty"`
	TaxID          string `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty" yaml:"contact_phone,omitempty"`
	CreatedAt      string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// PageRecord is the service's result for a single page of a document.
// Records are treated as values: updates replace the InvoiceData and Vendor
// pointers wholesale and never write through them.
type PageRecord struct {
	// PageNumber is 1-based and matches the page's position in the source document.
	PageNumber  int          `json:"page_number" yaml:"page_number"`
	DocumentID  string       `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	InvoiceData *InvoiceData `json:"invoice_data,omitempty" yaml:"invoice_data,omitempty"`
	Vendor      *Vendor      `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	// Error is set when the service failed on this page. InvoiceData and
	// Vendor are then absent or stale.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the service recorded an error for this page.
func (p PageRecord) Failed() bool {
	return p.Error != ""
}

// ProcessResponse is returned by document and sample submission, and by the
// current-snapshot call.
type ProcessResponse struct {
	Pages      []PageRecord `json:"pages" yaml:"pages"`
	TotalPages int          `json:"total_pages" yaml:"total_pages"`
}

// CorrectionRequest scopes a natural-language correction to one page.
type CorrectionRequest struct {
	Query     string `json:"query"`
	PageIndex int    `json:"page_index"`
}

// CorrectionResponse carries the revised payload for the corrected page.
// A nil InvoiceData means the service produced nothing to merge.
type CorrectionResponse struct {
	DocumentID  string       `json:"document_id,omitempty"`
	InvoiceData *InvoiceData `json:"invoice_data,omitempty"`
	Vendor      *Vendor      `json:"vendor,omitempty"`
}

// ExtractionRequest asks for a single named field on one page.
type ExtractionRequest struct {
	FieldName string `json:"field_name"`
	PageIndex int    `json:"page_index"`
}

// FieldQueryResult is the latest answer to an ad-hoc field query.
// Value is whatever structure the service returned.
type FieldQueryResult struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	PageIndex int    `json:"page_index" yaml:"page_index"`
	Value     any    `json:"value" yaml:"value"`
}
