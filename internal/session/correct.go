package session

import (
	"context"
	"strings"
)

// Correct sends a natural-language correction for the page at pageIndex and
// merges the answer into that page. Only the invoice data and, when the
// service returns one, the vendor match are replaced. The page number and
// error state are kept, so a corrected page that had failed stays failed.
//
// merged is false when the service returned no invoice data. The query is
// kept as the correction draft until a correction succeeds.
func (s *Session) Correct(ctx context.Context, query string, pageIndex int) (merged bool, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return false, ErrEmptyInput
	}

	s.mu.Lock()
	if err := s.checkPageLocked(pageIndex); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.lastErr = nil
	s.draft = query
	gen := s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	resp, err := s.backend.Correct(ctx, query, pageIndex)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if err := s.failLocked(gen, err); err == ErrStaleResponse {
			return false, err
		}
		s.logger.Warn("correction failed", "page_index", pageIndex, "error", err)
		return false, err
	}
	if gen != s.generation {
		s.logger.Debug("discarding stale correction", "page_index", pageIndex, "generation", gen)
		return false, ErrStaleResponse
	}

	s.draft = ""
	if resp == nil || resp.InvoiceData == nil {
		s.logger.Debug("correction returned no data", "page_index", pageIndex)
		return false, nil
	}

	rec := s.pages[pageIndex]
	rec.InvoiceData = resp.InvoiceData
	if resp.Vendor != nil {
		rec.Vendor = resp.Vendor
	}
	s.pages[pageIndex] = rec
	s.logger.Info("correction applied", "page", rec.PageNumber)
	return true, nil
}
