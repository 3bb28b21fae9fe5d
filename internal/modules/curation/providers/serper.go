package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultSerperEndpoint = "https://google.serper.dev"

// Serper is a web search client backed by the Serper API.
type Serper struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSerper(apiKey string, timeout time.Duration) *Serper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Serper{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: defaultSerperEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the API endpoint, used in tests.
func (s *Serper) WithEndpoint(endpoint string) *Serper {
	s.endpoint = strings.TrimRight(endpoint, "/")
	return s
}

func (s *Serper) Name() string { return "serper" }

func (s *Serper) SearchWeb(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	if s.apiKey == "" {
		return nil, wrapErr(s.Name(), fmt.Errorf("api key is empty"))
	}

	body, _ := json.Marshal(map[string]interface{}{
		"q":   query,
		"num": maxResults,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, wrapErr(s.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, wrapErr(s.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr(s.Name(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, wrapErr(s.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var payload struct {
		Organic []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Snippet     string `json:"snippet"`
			DisplayLink string `json:"displayLink"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, wrapErr(s.Name(), err)
	}

	results := make([]WebResult, 0, len(payload.Organic))
	for _, item := range payload.Organic {
		if strings.TrimSpace(item.Link) == "" {
			continue
		}
		display := item.DisplayLink
		if display == "" {
			display = item.Link
		}
		results = append(results, WebResult{
			Title:      item.Title,
			URL:        item.Link,
			Snippet:    item.Snippet,
			DisplayURL: display,
		})
	}
	return results, nil
}
