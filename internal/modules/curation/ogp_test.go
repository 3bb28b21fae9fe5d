package curation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchThumbnail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og:image",
			html: `<html><head><meta property="og:image" content="https://cdn.example.com/shoe.jpg"></head></html>`,
			want: "https://cdn.example.com/shoe.jpg",
		},
		{
			name: "twitter:image fallback",
			html: `<html><head><meta name="twitter:image" content="https://cdn.example.com/card.jpg"></head></html>`,
			want: "https://cdn.example.com/card.jpg",
		},
		{
			name: "og:image wins over twitter:image",
			html: `<html><head>
				<meta name="twitter:image" content="https://cdn.example.com/card.jpg">
				<meta property="og:image" content="https://cdn.example.com/og.jpg">
			</head></html>`,
			want: "https://cdn.example.com/og.jpg",
		},
		{
			name: "no metadata",
			html: `<html><head><title>review</title></head></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte(tt.html))
			}))
			defer server.Close()

			got, err := NewOGPEnricher().FetchThumbnail(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("FetchThumbnail() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FetchThumbnail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnrichSkipsExistingThumbnails(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="https://cdn.example.com/x.jpg"></head></html>`))
	}))
	defer server.Close()

	candidates := []CandidateSource{
		{URL: server.URL + "/a", ThumbnailURL: "https://already.example.com/a.jpg"},
		{URL: server.URL + "/b"},
	}
	NewOGPEnricher().Enrich(context.Background(), candidates)

	if hits != 1 {
		t.Errorf("hits = %d, candidates with thumbnails must not be fetched", hits)
	}
	if candidates[0].ThumbnailURL != "https://already.example.com/a.jpg" {
		t.Errorf("existing thumbnail overwritten: %q", candidates[0].ThumbnailURL)
	}
	if candidates[1].ThumbnailURL != "https://cdn.example.com/x.jpg" {
		t.Errorf("missing thumbnail not filled: %q", candidates[1].ThumbnailURL)
	}
}
