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

const defaultYouTubeEndpoint = "https://www.googleapis.com/youtube/v3/search"

// YouTube is a video search client backed by the YouTube Data API v3.
// Only snippet metadata is fetched, never transcripts or comments.
type YouTube struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewYouTube(apiKey string, timeout time.Duration) *YouTube {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YouTube{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: defaultYouTubeEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the API endpoint, used in tests.
func (y *YouTube) WithEndpoint(endpoint string) *YouTube {
	y.endpoint = strings.TrimRight(endpoint, "/")
	return y
}

func (y *YouTube) Name() string { return "youtube" }

func (y *YouTube) SearchVideos(ctx context.Context, query string, maxResults int) ([]VideoResult, error) {
	if y.apiKey == "" {
		return nil, wrapErr(y.Name(), fmt.Errorf("api key is empty"))
	}
	if maxResults < 1 {
		maxResults = 10
	}

	params := neturl.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("order", "relevance")
	params.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, wrapErr(y.Name(), err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, wrapErr(y.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr(y.Name(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, wrapErr(y.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				Description  string `json:"description"`
				PublishedAt  string `json:"publishedAt"`
				Thumbnails   struct {
					Medium struct {
						URL string `json:"url"`
					} `json:"medium"`
					Default struct {
						URL string `json:"url"`
					} `json:"default"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, wrapErr(y.Name(), err)
	}

	results := make([]VideoResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		videoID := strings.TrimSpace(item.ID.VideoID)
		if videoID == "" {
			continue
		}
		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}
		var publishedAt time.Time
		if item.Snippet.PublishedAt != "" {
			publishedAt, _ = time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		}
		results = append(results, VideoResult{
			VideoID:      videoID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			Description:  item.Snippet.Description,
			PublishedAt:  publishedAt,
			ThumbnailURL: thumbnail,
			URL:          "https://www.youtube.com/watch?v=" + videoID,
		})
	}
	return results, nil
}
