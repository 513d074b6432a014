package session

import "github.com/jackzampolin/invoicedesk/internal/types"

// GoTo makes index the active page. Out-of-range indexes are ignored; the
// return value reports whether the active page changed.
func (s *Session) GoTo(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pages) {
		return false
	}
	s.active = index
	return true
}

// Next moves to the following page, staying put on the last one.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active < len(s.pages)-1 {
		s.active++
	}
}

// Prev moves to the preceding page, staying put on the first one.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active > 0 {
		s.active--
	}
}

// Active returns the active page record. ok is false when the session is empty.
func (s *Session) Active() (rec types.PageRecord, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return types.PageRecord{}, false
	}
	return s.pages[s.active], true
}

// ActiveIndex returns the zero-based index of the active page.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// TotalPages returns the number of pages in the session.
func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// checkPageLocked validates a page index against the current session.
func (s *Session) checkPageLocked(index int) error {
	if len(s.pages) == 0 {
		return ErrNoSession
	}
	if index < 0 || index >= len(s.pages) {
		return ErrPageOutOfRange
	}
	return nil
}
