package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/invoicedesk/internal/api"
	"github.com/jackzampolin/invoicedesk/internal/export"
	"github.com/jackzampolin/invoicedesk/internal/types"
)

// Export builds a downloadable artifact from the service's current snapshot.
// Local page records are never used, so the artifact reflects what the
// service holds even if this session missed an update.
func (s *Session) Export(ctx context.Context, format export.Format) (*export.Artifact, error) {
	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()
	defer s.end()

	art, err := s.buildExport(ctx, format)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return nil, s.failLocked(gen, err)
	}
	s.logger.Info("export ready", "name", art.Name, "bytes", len(art.Data))
	return art, nil
}

func (s *Session) buildExport(ctx context.Context, format export.Format) (*export.Artifact, error) {
	raw, err := s.backend.CurrentSnapshot(ctx)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %v", ErrNoCurrentData, err)
		}
		return nil, err
	}

	var snap types.ProcessResponse
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrMalformedResponse, err)
	}
	if len(snap.Pages) == 0 {
		return nil, ErrNoCurrentData
	}

	switch format {
	case export.FormatXLSX:
		return export.XLSX(&snap)
	case export.FormatJSON, "":
		return export.JSON(raw)
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}
