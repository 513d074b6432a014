package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/jackzampolin/invoicedesk/internal/types"
)

// Service paths.
const (
	PathProcess       = "/process"
	PathProcessSample = "/process-sample"
	PathCorrect       = "/correct"
	PathExtract       = "/extract"
	PathVendors       = "/vendors"
	PathCurrent       = "/current"
	PathPreview       = "/pdf"
)

// Service is the typed surface of the extraction service.
type Service struct {
	client *Client
}

// NewService wraps a Client with the extraction service operations.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// Client returns the underlying HTTP client.
func (s *Service) Client() *Client {
	return s.client
}

// ProcessDocument uploads a document and returns one record per page.
func (s *Service) ProcessDocument(ctx context.Context, filename, contentType string, data []byte) (*types.ProcessResponse, error) {
	var raw json.RawMessage
	err := s.client.PostFile(ctx, PathProcess, Upload{
		Field:       "file",
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodePages(raw)
}

// ProcessSample asks the service to process one of its built-in samples.
func (s *Service) ProcessSample(ctx context.Context, name string) (*types.ProcessResponse, error) {
	var raw json.RawMessage
	form := url.Values{"sample_name": {name}}
	if err := s.client.PostForm(ctx, PathProcessSample, form, &raw); err != nil {
		return nil, err
	}
	return decodePages(raw)
}

// Correct applies a natural-language correction to one page.
func (s *Service) Correct(ctx context.Context, query string, pageIndex int) (*types.CorrectionResponse, error) {
	var raw json.RawMessage
	req := types.CorrectionRequest{Query: query, PageIndex: pageIndex}
	if err := s.client.Post(ctx, PathCorrect, req, &raw); err != nil {
		return nil, err
	}
	if err := Validate(SchemaCorrection, raw); err != nil {
		return nil, err
	}

	var resp types.CorrectionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// ExtractField queries a single named field on one page. The answer is
// returned as decoded JSON without further interpretation.
func (s *Service) ExtractField(ctx context.Context, fieldName string, pageIndex int) (any, error) {
	var result any
	req := types.ExtractionRequest{FieldName: fieldName, PageIndex: pageIndex}
	if err := s.client.Post(ctx, PathExtract, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListVendors returns the full vendor registry.
func (s *Service) ListVendors(ctx context.Context) ([]types.Vendor, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, PathVendors, &raw); err != nil {
		return nil, err
	}
	if err := Validate(SchemaVendors, raw); err != nil {
		return nil, err
	}

	var vendors []types.Vendor
	if err := json.Unmarshal(raw, &vendors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return vendors, nil
}

// CurrentSnapshot returns the service's view of the current session as raw
// JSON. A service with nothing loaded answers 404 (see IsNotFound).
func (s *Service) CurrentSnapshot(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, PathCurrent, &raw); err != nil {
		return nil, err
	}
	if err := Validate(SchemaPages, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Preview fetches the rendered document or image for the current session.
// recency is only used to defeat intermediate caches.
func (s *Service) Preview(ctx context.Context, recency string) ([]byte, string, error) {
	path := PathPreview
	if recency != "" {
		path += "?t=" + url.QueryEscape(recency)
	}
	return s.client.GetRaw(ctx, path)
}

func decodePages(raw json.RawMessage) (*types.ProcessResponse, error) {
	if err := Validate(SchemaPages, raw); err != nil {
		return nil, err
	}
	var resp types.ProcessResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}
