package adapters

import (
	"context"
	"errors"
	"fmt"
	"net"

	"spice-scraper/utils"
)

// FetchKind classifies why a page retrieval failed.
type FetchKind string

const (
	FetchUnreachable FetchKind = "unreachable"
	FetchBadStatus   FetchKind = "bad_status"
	FetchTimeout     FetchKind = "timeout"
)

// FetchError reports a failed page retrieval. Fetch failures on a
// product page are recoverable: the crawl skips that product and
// continues.
type FetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchBadStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseKind classifies why a page could not be interpreted.
type ParseKind string

const (
	ParseNoName       ParseKind = "no_name"
	ParseMalformedDOM ParseKind = "malformed_dom"
)

// ParseError reports a page whose markup broke the dialect's structural
// assumptions. A product without a name is unusable; anything less is
// tolerated and degrades to "N/A" fields instead.
type ParseError struct {
	Kind ParseKind
	URL  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s (%s): %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.URL, e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// classifyFetch wraps a transport-level failure in a FetchError with the
// closest matching kind.
func classifyFetch(pageURL string, err error) *FetchError {
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		return &FetchError{Kind: FetchBadStatus, URL: pageURL, StatusCode: statusErr.Code, Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{Kind: FetchTimeout, URL: pageURL, Err: err}
	}

	return &FetchError{Kind: FetchUnreachable, URL: pageURL, Err: err}
}
