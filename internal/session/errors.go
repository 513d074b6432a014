package session

import (
	"context"
	"errors"

	"github.com/jackzampolin/invoicedesk/internal/api"
	"github.com/jackzampolin/invoicedesk/internal/intake"
)

var (
	// ErrEmptyInput is returned when a query, field name or sample name is
	// blank. No request is issued and no state changes.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoDocument is returned when processing is requested without an
	// admitted document.
	ErrNoDocument = errors.New("no document selected")

	// ErrNoSession is returned for page-scoped operations on an empty session.
	ErrNoSession = errors.New("no document loaded")

	// ErrPageOutOfRange is returned when a page index does not name a page of
	// the current session.
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrNoCurrentData is returned by Export when the service has nothing loaded.
	ErrNoCurrentData = errors.New("no current data")

	// ErrStaleResponse is returned when a response arrives for a session that
	// has since been replaced or reset. The response is discarded.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrUnknownSample is returned for sample names outside the configured catalogue.
	ErrUnknownSample = errors.New("unknown sample")
)

const msgUnreachable = "Backend not reachable."

// UserMessage turns any error from this package into the single message
// shown to the user. It returns "" for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *api.ServiceError
	switch {
	case errors.As(err, &se):
		// Bodies without a detail are often proxy error pages.
		if se.Detail != "" {
			return se.Detail
		}
		return msgUnreachable
	case errors.Is(err, api.ErrServiceUnreachable):
		return msgUnreachable
	case errors.Is(err, api.ErrMalformedResponse):
		return "The service returned an unexpected response."
	case errors.Is(err, intake.ErrUnsupportedType):
		return "Supported: " + intake.SupportedFormats
	case errors.Is(err, ErrNoCurrentData):
		return "No data to download."
	case errors.Is(err, ErrNoDocument):
		return "Choose a document first."
	case errors.Is(err, ErrNoSession):
		return "No document loaded."
	case errors.Is(err, ErrPageOutOfRange):
		return "No such page."
	case errors.Is(err, ErrEmptyInput):
		return "Nothing to submit."
	case errors.Is(err, context.Canceled):
		return "Request canceled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out."
	default:
		return err.Error()
	}
}
