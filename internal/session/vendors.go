package session

import (
	"context"
	"slices"
	"time"

	"github.com/jackzampolin/invoicedesk/internal/types"
)

// VendorCache holds the last vendor list the service returned. It is
// replaced wholesale on a successful refresh and left alone on failure.
type VendorCache struct {
	vendors   []types.Vendor
	updatedAt time.Time
}

// List returns a copy of the cached vendors.
func (c *VendorCache) List() []types.Vendor {
	return slices.Clone(c.vendors)
}

// Replace installs a fresh vendor list.
func (c *VendorCache) Replace(vendors []types.Vendor) {
	c.vendors = slices.Clone(vendors)
	c.updatedAt = time.Now()
}

// Clear drops the cached list.
func (c *VendorCache) Clear() {
	c.vendors = nil
	c.updatedAt = time.Time{}
}

// UpdatedAt returns when the list was last replaced, zero if never.
func (c *VendorCache) UpdatedAt() time.Time {
	return c.updatedAt
}

// Vendors returns the cached vendor list.
func (s *Session) Vendors() []types.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vendors.List()
}

// RefreshVendors reloads the vendor cache from the service. On failure the
// cached list is kept and the error is returned to the caller only; it is
// never surfaced as the session's last error.
func (s *Session) RefreshVendors(ctx context.Context) ([]types.Vendor, error) {
	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	vendors, err := s.backend.ListVendors(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Debug("vendor refresh failed, keeping cached list", "cached", len(s.vendors.vendors), "error", err)
		return s.vendors.List(), err
	}
	if gen != s.generation {
		return s.vendors.List(), ErrStaleResponse
	}
	s.vendors.Replace(vendors)
	s.logger.Debug("vendor cache refreshed", "vendors", len(vendors))
	return s.vendors.List(), nil
}
