package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestYouTubeSearchVideos(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": {"videoId": "abc123"},
					"snippet": {
						"title": "ペガサス41 レビュー",
						"channelTitle": "ランチャンネル",
						"description": "100km走った感想",
						"publishedAt": "2026-04-01T10:00:00Z",
						"thumbnails": {
							"medium": {"url": "https://i.ytimg.com/vi/abc123/mqdefault.jpg"},
							"default": {"url": "https://i.ytimg.com/vi/abc123/default.jpg"}
						}
					}
				},
				{
					"id": {"videoId": "def456"},
					"snippet": {
						"title": "fallback thumbnail",
						"thumbnails": {"default": {"url": "https://i.ytimg.com/vi/def456/default.jpg"}}
					}
				},
				{"id": {}, "snippet": {"title": "channel result, dropped"}}
			]
		}`))
	}))
	defer server.Close()

	y := NewYouTube("yt-key", time.Second).WithEndpoint(server.URL)
	results, err := y.SearchVideos(context.Background(), "Nike Pegasus 41 レビュー", 5)
	if err != nil {
		t.Fatalf("SearchVideos() error = %v", err)
	}

	if got := gotQuery.Get("type"); got != "video" {
		t.Errorf("type = %q, want video", got)
	}
	if got := gotQuery.Get("part"); got != "snippet" {
		t.Errorf("part = %q", got)
	}
	if got := gotQuery.Get("key"); got != "yt-key" {
		t.Errorf("key = %q", got)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 (missing videoId dropped)", len(results))
	}

	first := results[0]
	if first.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.ThumbnailURL != "https://i.ytimg.com/vi/abc123/mqdefault.jpg" {
		t.Errorf("ThumbnailURL = %q, medium must win", first.ThumbnailURL)
	}
	if first.PublishedAt.IsZero() {
		t.Error("PublishedAt not parsed")
	}
	if results[1].ThumbnailURL != "https://i.ytimg.com/vi/def456/default.jpg" {
		t.Errorf("thumbnail fallback = %q", results[1].ThumbnailURL)
	}
}
