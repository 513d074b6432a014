// Package intake decides whether a candidate file may be submitted for extraction.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnsupportedType is returned for candidates that are neither a PDF nor a
// supported image, judged by content type and by file extension.
var ErrUnsupportedType = errors.New("unsupported document type")

// SupportedFormats is the user-facing list of accepted formats.
const SupportedFormats = "PDF, PNG, JPG, WebP"

// Kind is the coarse category of an admitted document.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// contentTypes maps accepted declared content types to their kind.
var contentTypes = map[string]Kind{
	"application/pdf": KindPDF,
	"image/webp":      KindImage,
	"image/png":       KindImage,
	"image/jpeg":      KindImage,
}

// extensions maps accepted file extensions to the content type sent upstream.
var extensions = map[string]string{
	"pdf":  "application/pdf",
	"webp": "image/webp",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// Candidate is a file offered for submission.
type Candidate struct {
	Filename string
	// ContentType is the declared media type. It may be empty or generic
	// (application/octet-stream), in which case the extension decides.
	ContentType string
	Data        []byte
}

// Document is an admitted candidate.
type Document struct {
	Filename    string
	ContentType string
	Kind        Kind
	Data        []byte
	// PageCount is the locally counted number of pages: 1 for images, the
	// PDF page count when it could be read, 0 otherwise.
	PageCount int
}

// IsImage reports whether the document is an image.
func (d *Document) IsImage() bool {
	return d.Kind == KindImage
}

// Validate admits or rejects a candidate. A candidate is accepted when its
// declared content type or its filename extension is supported.
func Validate(c Candidate, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	contentType, kind, ok := resolve(c)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedType, c.Filename, SupportedFormats)
	}

	doc := &Document{
		Filename:    c.Filename,
		ContentType: contentType,
		Kind:        kind,
		Data:        c.Data,
		PageCount:   1,
	}

	if kind == KindPDF {
		count, err := countPages(c.Data)
		if err != nil {
			// Informational only; the service decides readability.
			logger.Debug("could not count PDF pages", "file", c.Filename, "error", err)
			count = 0
		}
		doc.PageCount = count
	}

	logger.Debug("document admitted",
		"file", c.Filename, "content_type", contentType, "kind", kind, "pages", doc.PageCount)
	return doc, nil
}

// countPages reads the PDF page count. pdfcpu can panic on badly damaged
// files, so the panic is turned into an error.
func countPages(data []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	return api.PageCount(bytes.NewReader(data), nil)
}

// resolve picks the content type and kind for a candidate.
func resolve(c Candidate) (string, Kind, bool) {
	declared := normalizeContentType(c.ContentType)
	if kind, ok := contentTypes[declared]; ok {
		return declared, kind, true
	}

	ext := NormalizeExt(filepath.Ext(c.Filename))
	if ct, ok := extensions[ext]; ok {
		return ct, contentTypes[ct], true
	}
	return "", "", false
}

// normalizeContentType lowercases a media type and strips parameters.
func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(ct)
	}
	return mediaType
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FromFile reads a candidate from disk. The declared content type is guessed
// from the extension, as a browser would when picking a file.
func FromFile(path string) (Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Candidate{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	}, nil
}
