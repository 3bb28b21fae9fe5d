package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"
)

const defaultGoogleCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleCSE is a web search client backed by Google Custom Search. It is
// the fallback when no Serper key is configured. The API caps a single
// request at 10 results.
type GoogleCSE struct {
	apiKey   string
	engineID string
	endpoint string
	client   *http.Client
}

func NewGoogleCSE(apiKey, engineID string, timeout time.Duration) *GoogleCSE {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleCSE{
		apiKey:   strings.TrimSpace(apiKey),
		engineID: strings.TrimSpace(engineID),
		endpoint: defaultGoogleCSEEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the API endpoint, used in tests.
func (g *GoogleCSE) WithEndpoint(endpoint string) *GoogleCSE {
	g.endpoint = strings.TrimRight(endpoint, "/")
	return g
}

func (g *GoogleCSE) Name() string { return "google-cse" }

func (g *GoogleCSE) SearchWeb(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	if g.apiKey == "" || g.engineID == "" {
		return nil, wrapErr(g.Name(), fmt.Errorf("api key or engine id is empty"))
	}
	if maxResults > 10 {
		maxResults = 10
	}
	if maxResults < 1 {
		maxResults = 10
	}

	params := neturl.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, wrapErr(g.Name(), err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, wrapErr(g.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr(g.Name(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, wrapErr(g.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var payload struct {
		Items []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Snippet     string `json:"snippet"`
			DisplayLink string `json:"displayLink"`
		} `json:"items"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, wrapErr(g.Name(), err)
	}

	results := make([]WebResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if strings.TrimSpace(item.Link) == "" {
			continue
		}
		results = append(results, WebResult{
			Title:      item.Title,
			URL:        item.Link,
			Snippet:    item.Snippet,
			DisplayURL: item.DisplayLink,
		})
	}
	return results, nil
}
