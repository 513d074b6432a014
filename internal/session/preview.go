package session

import (
	"context"
	"strconv"
)

// Preview is the rendered source of the current session.
type Preview struct {
	Mode        PreviewMode
	ContentType string
	Data        []byte
}

// Preview fetches the rendered document or image for the current session.
// The mode was fixed when the session was installed. The request is keyed by
// session generation so caches never serve a previous document.
func (s *Session) Preview(ctx context.Context) (*Preview, error) {
	s.mu.Lock()
	if len(s.pages) == 0 {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	mode := s.previewMode
	gen := s.generation
	s.mu.Unlock()

	data, contentType, err := s.backend.Preview(ctx, strconv.FormatUint(gen, 10))
	if err != nil {
		return nil, err
	}
	if gen != s.currentGeneration() {
		return nil, ErrStaleResponse
	}
	return &Preview{Mode: mode, ContentType: contentType, Data: data}, nil
}

func (s *Session) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
