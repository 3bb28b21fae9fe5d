// Package providers contains the external search clients that feed the
// curation pipeline: web search (Serper with a Google Custom Search
// fallback), YouTube video search, and Rakuten Ichiba product statistics.
package providers

import (
	"context"
	"fmt"
	"time"
)

// WebResult is one organic web search hit.
type WebResult struct {
	Title      string
	URL        string
	Snippet    string
	DisplayURL string
}

// VideoResult is one video search hit.
type VideoResult struct {
	VideoID      string
	Title        string
	ChannelTitle string
	Description  string
	PublishedAt  time.Time
	ThumbnailURL string
	URL          string
}

// ProductStat is a marketplace product with its review rollup. Review text
// is never fetched, only the statistics and the link back to the listing.
type ProductStat struct {
	ProductName      string
	ProductURL       string
	ShopName         string
	Price            int
	ImageURL         string
	ReviewCount      int
	AverageRating    float64 // provider scale, 0-5 for Rakuten
	NormalizedRating float64 // 0-10
}

// WebSearcher searches the open web for review articles.
type WebSearcher interface {
	Name() string
	SearchWeb(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}

// VideoSearcher searches for review videos.
type VideoSearcher interface {
	Name() string
	SearchVideos(ctx context.Context, query string, maxResults int) ([]VideoResult, error)
}

// ProductSearcher searches a marketplace for product review statistics.
type ProductSearcher interface {
	Name() string
	SearchProducts(ctx context.Context, keyword string, maxResults int) ([]ProductStat, error)
}

// Error wraps a provider failure with the provider name so the collector
// can report which upstream broke without aborting the whole run.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Provider, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: provider, Err: err}
}
