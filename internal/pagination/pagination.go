// Package pagination follows bookmark cursors across pages of a GET endpoint
// and accumulates their items into a single {"items": [...]} envelope.
package pagination

import (
	"context"
	"fmt"
	"net/http"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"go.uber.org/zap"
)

// BookmarkKey is the cursor parameter and response field.
const BookmarkKey = "bookmark"

// Fetcher issues a single GET and returns the decoded JSON response.
type Fetcher interface {
	Get(ctx context.Context, url string, cred *auth.Credential, query encoder.Query) (any, error)
}

// Options bound a sweep. Zero means unbounded.
type Options struct {
	MaxPages int
	MaxItems int
}

// Paginator walks bookmark-paginated endpoints.
type Paginator struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// New creates a paginator.
func New(fetcher Fetcher, logger *zap.Logger) *Paginator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginator{fetcher: fetcher, logger: logger}
}

// All fetches pages until the bookmark runs out or a bound is reached. A
// bookmark in the initial query is the first cursor; every other initial
// pair is repeated on each page. When MaxItems is reached mid-page the rest
// of that page is discarded.
func (p *Paginator) All(ctx context.Context, method, url string, cred *auth.Credential, initial encoder.Query, opts Options) (map[string]any, error) {
	if method != http.MethodGet {
		return nil, fmt.Errorf("%w: %s %s", errs.ErrPaginationUnsupported, method, url)
	}

	var base encoder.Query
	var bookmark string
	hasBookmark := false
	for _, pair := range initial {
		if pair.Key == BookmarkKey {
			bookmark = pair.Value
			hasBookmark = true
			continue
		}
		base = append(base, pair)
	}

	items := []any{}
	for page := 1; opts.MaxPages <= 0 || page <= opts.MaxPages; page++ {
		query := base.Clone()
		if hasBookmark {
			query.Add(BookmarkKey, bookmark)
		}

		resp, err := p.fetcher.Get(ctx, url, cred, query)
		if err != nil {
			return nil, err
		}

		obj, _ := resp.(map[string]any)
		data, ok := obj["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s page %d", errs.ErrMalformedPaginatedResponse, url, page)
		}

		p.logger.Debug("fetched page",
			zap.String("url", url),
			zap.Int("page", page),
			zap.Int("items", len(data)),
		)

		for _, item := range data {
			items = append(items, item)
			if opts.MaxItems > 0 && len(items) >= opts.MaxItems {
				return envelope(items), nil
			}
		}

		next, _ := obj[BookmarkKey].(string)
		if next == "" {
			break
		}
		bookmark = next
		hasBookmark = true
	}

	return envelope(items), nil
}

func envelope(items []any) map[string]any {
	return map[string]any{"items": items}
}
