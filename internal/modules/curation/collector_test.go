package curation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/runreview/core/internal/models"
	"github.com/runreview/core/internal/modules/curation/providers"
)

type fakeWeb struct {
	queries []string
	results []providers.WebResult
	err     error
}

func (f *fakeWeb) Name() string { return "fake-web" }

func (f *fakeWeb) SearchWeb(_ context.Context, query string, _ int) ([]providers.WebResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeVideo struct {
	queries []string
	results []providers.VideoResult
	err     error
}

func (f *fakeVideo) Name() string { return "fake-video" }

func (f *fakeVideo) SearchVideos(_ context.Context, query string, _ int) ([]providers.VideoResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeProduct struct {
	keywords []string
	results  []providers.ProductStat
	err      error
}

func (f *fakeProduct) Name() string { return "fake-product" }

func (f *fakeProduct) SearchProducts(_ context.Context, keyword string, _ int) ([]providers.ProductStat, error) {
	f.keywords = append(f.keywords, keyword)
	return f.results, f.err
}

var testItem = ItemDescriptor{Brand: "Nike", Model: "Pegasus 41", Category: "daily"}

func TestCollectMergesAndSortsByReliability(t *testing.T) {
	web := &fakeWeb{results: []providers.WebResult{
		{Title: "ペガサス41を履いてみた", URL: "https://runlab.example.com/pegasus-41", Snippet: "クッション性が高い"},
		{Title: "ペガサス41", URL: "https://www.nike.com/jp/t/pegasus-41", Snippet: "公式ストア"},
	}}
	video := &fakeVideo{results: []providers.VideoResult{
		{VideoID: "abc123", Title: "Pegasus 41 review", ChannelTitle: "RunTube", URL: "https://www.youtube.com/watch?v=abc123"},
	}}

	c := NewCollector(web, video, nil, nil)
	result, err := c.Collect(context.Background(), testItem, CollectOptions{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if len(result.Candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(result.Candidates))
	}

	// Marketplace 0.85 > video 0.80 > article 0.75.
	if result.Candidates[0].Type != models.SourceMarketplace ||
		result.Candidates[1].Type != models.SourceVideo ||
		result.Candidates[2].Type != models.SourceArticle {
		for _, c := range result.Candidates {
			t.Logf("%s %s %v", c.Type, c.URL, c.Reliability)
		}
		t.Fatal("candidates not ordered by reliability")
	}

	if web.queries[0] != "Nike Pegasus 41 レビュー 最新" {
		t.Errorf("web query = %q", web.queries[0])
	}
	if len(video.queries) != 2 || video.queries[0] != "Nike Pegasus 41 レビュー" || video.queries[1] != "Nike Pegasus 41 review" {
		t.Errorf("video queries = %v", video.queries)
	}

	v := result.Candidates[1]
	if v.Rating != neutralVideoRating {
		t.Errorf("video rating = %v, want neutral %v", v.Rating, neutralVideoRating)
	}
	if v.Platform != "youtube.com" {
		t.Errorf("video platform = %q", v.Platform)
	}
}

func TestCollectProviderFailureIsWarning(t *testing.T) {
	web := &fakeWeb{err: errors.New("quota exceeded")}
	video := &fakeVideo{results: []providers.VideoResult{
		{VideoID: "abc", Title: "review", URL: "https://www.youtube.com/watch?v=abc"},
	}}

	c := NewCollector(web, video, nil, nil)
	result, err := c.Collect(context.Background(), testItem, CollectOptions{})
	if err != nil {
		t.Fatalf("Collect() error = %v, one healthy provider must carry the run", err)
	}
	if len(result.Candidates) != 1 {
		t.Errorf("candidates = %d, want 1", len(result.Candidates))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "quota exceeded") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestCollectMarksStatsOnlyProducts(t *testing.T) {
	product := &fakeProduct{results: []providers.ProductStat{
		{ProductName: "ペガサス41 メンズ", ProductURL: "https://item.rakuten.co.jp/shop/1/", ShopName: "ランナーズ本舗", ReviewCount: 12, AverageRating: 4.3, NormalizedRating: 8.6},
		{ProductName: "ペガサス41 レディース", ProductURL: "https://item.rakuten.co.jp/shop/2/", ShopName: "スポーツマート", ReviewCount: 0},
	}}

	c := NewCollector(nil, nil, product, nil)
	result, err := c.Collect(context.Background(), testItem, CollectOptions{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(result.Candidates))
	}
	if product.keywords[0] != "Nike Pegasus 41 シューズ" {
		t.Errorf("keyword = %q", product.keywords[0])
	}

	for _, cand := range result.Candidates {
		switch cand.URL {
		case "https://item.rakuten.co.jp/shop/1/":
			if cand.StatsOnly {
				t.Error("reviewed product must be persistable")
			}
			if cand.Rating != 8.6 {
				t.Errorf("rating = %v, want normalized 8.6", cand.Rating)
			}
		case "https://item.rakuten.co.jp/shop/2/":
			if !cand.StatsOnly {
				t.Error("product without reviews must be stats-only")
			}
		}
	}
}

func TestCollectTruncatesToMaxResults(t *testing.T) {
	var results []providers.WebResult
	for i := 0; i < 20; i++ {
		results = append(results, providers.WebResult{
			Title:   strings.Repeat("x", i+1),
			URL:     "https://runlab.example.com/" + strings.Repeat("a", i+1),
			Snippet: strings.Repeat("y", i+1), // distinct fingerprints
		})
	}
	c := NewCollector(&fakeWeb{results: results}, nil, nil, nil)

	result, err := c.Collect(context.Background(), testItem, CollectOptions{MaxResults: 3})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(result.Candidates) != 3 {
		t.Errorf("candidates = %d, want 3", len(result.Candidates))
	}
}

func TestCollectSkipFlags(t *testing.T) {
	web := &fakeWeb{results: []providers.WebResult{{Title: "t", URL: "https://a.example.com/1"}}}
	video := &fakeVideo{results: []providers.VideoResult{{VideoID: "v", URL: "https://www.youtube.com/watch?v=v", Title: "vt"}}}

	c := NewCollector(web, video, nil, nil)
	result, err := c.Collect(context.Background(), testItem, CollectOptions{SkipVideos: true})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(video.queries) != 0 {
		t.Error("video provider must not be called when skipped")
	}
	if len(result.Candidates) != 1 {
		t.Errorf("candidates = %d, want 1", len(result.Candidates))
	}
}
