package session

import (
	"context"
	"strings"

	"github.com/jackzampolin/invoicedesk/internal/types"
)

// ExtractField asks the service for one named field on the page at
// pageIndex. The answer replaces the previous field result; no page record
// is changed.
func (s *Session) ExtractField(ctx context.Context, fieldName string, pageIndex int) (*types.FieldQueryResult, error) {
	fieldName = strings.TrimSpace(fieldName)
	if fieldName == "" {
		return nil, ErrEmptyInput
	}

	s.mu.Lock()
	if err := s.checkPageLocked(pageIndex); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gen := s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	value, err := s.backend.ExtractField(ctx, fieldName, pageIndex)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if err := s.failLocked(gen, err); err == ErrStaleResponse {
			return nil, err
		}
		s.logger.Warn("field extraction failed", "field", fieldName, "page_index", pageIndex, "error", err)
		return nil, err
	}
	if gen != s.generation {
		return nil, ErrStaleResponse
	}

	s.field = &types.FieldQueryResult{FieldName: fieldName, PageIndex: pageIndex, Value: value}
	out := *s.field
	return &out, nil
}
