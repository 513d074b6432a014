// Package session owns the state of one document analysis session: the
// per-page results returned by the extraction service, the active page, the
// latest field query answer, the vendor cache, and the in-flight request flag.
//
// A Session is safe for concurrent use. Its lock is never held across a
// service call. Every response is checked against the generation that was
// current when its request was issued, and responses for a replaced or reset
// session are discarded with ErrStaleResponse.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/jackzampolin/invoicedesk/internal/types"
)

// Backend is the extraction service as seen by a Session.
// *api.Service implements it.
type Backend interface {
	ProcessDocument(ctx context.Context, filename, contentType string, data []byte) (*types.ProcessResponse, error)
	ProcessSample(ctx context.Context, name string) (*types.ProcessResponse, error)
	Correct(ctx context.Context, query string, pageIndex int) (*types.CorrectionResponse, error)
	ExtractField(ctx context.Context, fieldName string, pageIndex int) (any, error)
	ListVendors(ctx context.Context) ([]types.Vendor, error)
	CurrentSnapshot(ctx context.Context) (json.RawMessage, error)
	Preview(ctx context.Context, recency string) ([]byte, string, error)
}

// SourceKind says where the pages of a session came from.
type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceSample SourceKind = "sample"
)

// PreviewMode is how the session's preview should be rendered.
type PreviewMode string

const (
	PreviewNone     PreviewMode = ""
	PreviewDocument PreviewMode = "document"
	PreviewImage    PreviewMode = "image"
)

// Source describes the document or sample that produced a session. It is
// never re-submitted.
type Source struct {
	Kind        SourceKind `json:"kind" yaml:"kind"`
	Name        string     `json:"name" yaml:"name"`
	ContentType string     `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	// LocalPages is the page count read locally before submission, 0 if unknown.
	LocalPages int `json:"local_pages,omitempty" yaml:"local_pages,omitempty"`
}

// Options configures a Session.
type Options struct {
	Logger *slog.Logger
	// Samples is the catalogue of sample names offered to users. When empty,
	// any sample name is passed through to the service.
	Samples []string
}

// Session is the single source of truth for one document analysis session.
type Session struct {
	backend Backend
	logger  *slog.Logger

	mu          sync.Mutex
	samples     []string
	pages       []types.PageRecord
	active      int
	source      *Source
	previewMode PreviewMode
	field       *types.FieldQueryResult
	vendors     VendorCache
	lastErr     error
	draft       string
	inflight    int
	generation  uint64
	ticket      uint64
}

// New creates an empty session bound to backend.
func New(backend Backend, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		backend: backend,
		logger:  logger,
		samples: slices.Clone(opts.Samples),
	}
}

// State is a point-in-time view of a Session for presentation.
type State struct {
	Populated       bool                    `json:"populated" yaml:"populated"`
	ActiveIndex     int                     `json:"active_index" yaml:"active_index"`
	TotalPages      int                     `json:"total_pages" yaml:"total_pages"`
	Active          *types.PageRecord       `json:"active,omitempty" yaml:"active,omitempty"`
	Source          *Source                 `json:"source,omitempty" yaml:"source,omitempty"`
	PreviewMode     PreviewMode             `json:"preview_mode,omitempty" yaml:"preview_mode,omitempty"`
	Pending         bool                    `json:"pending" yaml:"pending"`
	LastError       string                  `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	FieldResult     *types.FieldQueryResult `json:"field_result,omitempty" yaml:"field_result,omitempty"`
	Vendors         []types.Vendor          `json:"vendors,omitempty" yaml:"vendors,omitempty"`
	CorrectionDraft string                  `json:"correction_draft,omitempty" yaml:"correction_draft,omitempty"`
	Generation      uint64                  `json:"generation" yaml:"generation"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Populated:       len(s.pages) > 0,
		TotalPages:      len(s.pages),
		PreviewMode:     s.previewMode,
		Pending:         s.inflight > 0,
		LastError:       UserMessage(s.lastErr),
		Vendors:         s.vendors.List(),
		CorrectionDraft: s.draft,
		Generation:      s.generation,
	}
	if st.Populated {
		st.ActiveIndex = s.active
		rec := s.pages[s.active]
		st.Active = &rec
	}
	if s.source != nil {
		src := *s.source
		st.Source = &src
	}
	if s.field != nil {
		f := *s.field
		st.FieldResult = &f
	}
	return st
}

// Pages returns a copy of the page records in page order.
func (s *Session) Pages() []types.PageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pages)
}

// Populated reports whether a processed document is loaded.
func (s *Session) Populated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages) > 0
}

// Pending reports whether any service request issued through this session
// is still outstanding. It is advisory: the session does not refuse new
// requests while pending.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// LastErr returns the last surfaced error, or nil.
func (s *Session) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// FieldResult returns the latest field query answer, or nil.
func (s *Session) FieldResult() *types.FieldQueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.field == nil {
		return nil
	}
	f := *s.field
	return &f
}

// CorrectionDraft returns the text of the last correction that did not
// succeed, so it can be offered for retry.
func (s *Session) CorrectionDraft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Samples returns the configured sample catalogue.
func (s *Session) Samples() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.samples)
}

// SetSamples replaces the sample catalogue, e.g. after a config reload.
func (s *Session) SetSamples(samples []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = slices.Clone(samples)
}

// Reset starts over: pages, field result, vendor cache and last error are
// discarded, and any outstanding response becomes stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.vendors.Clear()
	s.lastErr = nil
	s.draft = ""
	s.logger.Debug("session reset", "generation", s.generation)
}

// clearLocked empties the page state and invalidates outstanding responses.
func (s *Session) clearLocked() {
	s.pages = nil
	s.active = 0
	s.source = nil
	s.previewMode = PreviewNone
	s.field = nil
	s.generation++
}

// beginLocked marks a request as in flight and returns the generation it
// belongs to. Callers call s.end when the request completes.
func (s *Session) beginLocked() uint64 {
	s.inflight++
	return s.generation
}

func (s *Session) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// failLocked records err as the surfaced error unless the request it came
// from has gone stale.
func (s *Session) failLocked(gen uint64, err error) error {
	if gen != s.generation {
		return ErrStaleResponse
	}
	s.lastErr = err
	return err
}
