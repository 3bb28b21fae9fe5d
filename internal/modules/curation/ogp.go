package curation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const ogpFetchTimeout = 5 * time.Second

// OGPEnricher backfills thumbnails for article sources by reading Open
// Graph metadata from the page head. Failures are non-fatal, sources just
// stay without a thumbnail.
type OGPEnricher struct {
	client *http.Client
}

func NewOGPEnricher() *OGPEnricher {
	return &OGPEnricher{client: &http.Client{Timeout: ogpFetchTimeout}}
}

// FetchThumbnail returns the og:image (or twitter:image) URL of a page.
func (e *OGPEnricher) FetchThumbnail(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; runreview-bot/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	for _, selector := range []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if url := strings.TrimSpace(content); url != "" {
				return url, nil
			}
		}
	}
	return "", nil
}

// Enrich fills missing thumbnails in place. Only article-like candidates
// are worth a page fetch; videos and marketplace items already carry one.
func (e *OGPEnricher) Enrich(ctx context.Context, candidates []CandidateSource) {
	for i := range candidates {
		if candidates[i].ThumbnailURL != "" {
			continue
		}
		thumbnail, err := e.FetchThumbnail(ctx, candidates[i].URL)
		if err != nil || thumbnail == "" {
			continue
		}
		candidates[i].ThumbnailURL = thumbnail
	}
}
