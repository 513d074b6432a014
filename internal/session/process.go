package session

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackzampolin/invoicedesk/internal/api"
	"github.com/jackzampolin/invoicedesk/internal/intake"
	"github.com/jackzampolin/invoicedesk/internal/types"
)

// Admit validates a candidate file. Acceptance clears the surfaced error;
// rejection replaces it. No request is issued either way.
func (s *Session) Admit(c intake.Candidate) (*intake.Document, error) {
	doc, err := intake.Validate(c, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.lastErr = nil
	return doc, nil
}

// Process submits an admitted document and installs the resulting pages.
// On failure the previous session is left as it was.
func (s *Session) Process(ctx context.Context, doc *intake.Document) error {
	if doc == nil {
		return ErrNoDocument
	}

	s.mu.Lock()
	s.lastErr = nil
	s.ticket++
	ticket := s.ticket
	gen := s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	s.logger.Info("processing document", "file", doc.Filename, "content_type", doc.ContentType, "local_pages", doc.PageCount)

	resp, err := s.backend.ProcessDocument(ctx, doc.Filename, doc.ContentType, doc.Data)
	if err != nil {
		return s.failProcessing(ticket, gen, err)
	}

	mode := PreviewDocument
	if doc.IsImage() || strings.HasPrefix(doc.ContentType, "image/") {
		mode = PreviewImage
	}
	src := &Source{
		Kind:        SourceUpload,
		Name:        doc.Filename,
		ContentType: doc.ContentType,
		LocalPages:  doc.PageCount,
	}
	return s.install(ctx, ticket, gen, resp, src, mode)
}

// ProcessSample asks the service to process a named sample. The current
// session is cleared before the request is issued, so a failed attempt
// leaves the session empty.
func (s *Session) ProcessSample(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if len(s.samples) > 0 && !slices.Contains(s.samples, name) {
		err := fmt.Errorf("%w: %s (available: %s)", ErrUnknownSample, name, strings.Join(s.samples, ", "))
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	s.lastErr = nil
	s.clearLocked()
	s.ticket++
	ticket := s.ticket
	gen := s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	s.logger.Info("processing sample", "sample", name)

	resp, err := s.backend.ProcessSample(ctx, name)
	if err != nil {
		return s.failProcessing(ticket, gen, err)
	}

	src := &Source{Kind: SourceSample, Name: name, ContentType: "application/pdf"}
	return s.install(ctx, ticket, gen, resp, src, PreviewDocument)
}

func (s *Session) failProcessing(ticket, gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.ticket {
		return ErrStaleResponse
	}
	if err := s.failLocked(gen, err); err == ErrStaleResponse {
		return err
	}
	s.logger.Warn("processing failed", "error", err)
	return err
}

// install replaces the session with the pages of resp in one step and then
// refreshes the vendor cache.
func (s *Session) install(ctx context.Context, ticket, gen uint64, resp *types.ProcessResponse, src *Source, mode PreviewMode) error {
	pages, err := normalizePages(resp)
	if err != nil {
		return s.failProcessing(ticket, gen, err)
	}

	s.mu.Lock()
	if ticket != s.ticket || gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale processing response", "ticket", ticket, "generation", gen)
		return ErrStaleResponse
	}
	s.pages = pages
	s.active = 0
	s.source = src
	s.previewMode = mode
	s.field = nil
	s.draft = ""
	s.generation++
	newGen := s.generation
	s.mu.Unlock()

	s.logger.Info("session installed", "source", src.Name, "pages", len(pages), "generation", newGen)
	if src.LocalPages > 0 && src.LocalPages != len(pages) {
		s.logger.Warn("service page count differs from local count",
			"file", src.Name, "local_pages", src.LocalPages, "service_pages", len(pages))
	}

	// Best effort. Failures keep the previous vendor list.
	_, _ = s.RefreshVendors(ctx)
	return nil
}

// normalizePages orders the records of a processing response and checks
// that they cover pages 1..n with n equal to the reported total. Records
// without a page number take their 1-based position.
func normalizePages(resp *types.ProcessResponse) ([]types.PageRecord, error) {
	if resp == nil || len(resp.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages returned", api.ErrMalformedResponse)
	}

	pages := slices.Clone(resp.Pages)
	for i := range pages {
		if pages[i].PageNumber == 0 {
			pages[i].PageNumber = i + 1
		}
	}
	slices.SortStableFunc(pages, func(a, b types.PageRecord) int {
		return cmp.Compare(a.PageNumber, b.PageNumber)
	})

	for i, p := range pages {
		if p.PageNumber != i+1 {
			return nil, fmt.Errorf("%w: expected page %d, got %d", api.ErrMalformedResponse, i+1, p.PageNumber)
		}
	}

	total := resp.TotalPages
	if total == 0 {
		total = len(pages)
	}
	if total != len(pages) {
		return nil, fmt.Errorf("%w: %d pages returned for total_pages %d", api.ErrMalformedResponse, len(pages), total)
	}
	return pages, nil
}
