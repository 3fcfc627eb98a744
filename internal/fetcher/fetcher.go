// Package fetcher performs rate-limited, retried JSON GETs against the
// upstream timing APIs and converts every failure into a typed error.
package fetcher

import (
	"context"
	"io"
)

// Getter fetches a URL and returns the body of a successful response.
type Getter interface {
	Get(ctx context.Context, rawURL string) (io.ReadCloser, error)
}
