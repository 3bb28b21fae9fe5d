package curation

import (
	"testing"

	"github.com/runreview/core/internal/models"
)

func src(t models.SourceType, rating float64, meta models.JSONMap) models.CuratedSourceModel {
	return models.CuratedSourceModel{Type: t, Rating: rating, Metadata: meta}
}

func TestAggregateRatings(t *testing.T) {
	t.Parallel()

	sources := []models.CuratedSourceModel{
		src(models.SourceArticle, 8.5, nil),
		src(models.SourceVideo, 7.0, nil),
		src(models.SourceMarketplace, 9.2, nil),
		src(models.SourceSNS, 0, nil), // unrated
	}

	data := Aggregate(sources)
	if data.SourceCount != 4 {
		t.Errorf("SourceCount = %d, want 4", data.SourceCount)
	}
	if data.RatedCount != 3 {
		t.Errorf("RatedCount = %d, want 3", data.RatedCount)
	}
	// (8.5 + 7.0 + 9.2) / 3 = 8.233... → 8.2
	if data.AverageRating != 8.2 {
		t.Errorf("AverageRating = %v, want 8.2", data.AverageRating)
	}
	if len(data.SourceStats) != 4 {
		t.Errorf("SourceStats = %+v, want one entry per type", data.SourceStats)
	}
	if data.LastUpdated.IsZero() {
		t.Error("LastUpdated not set")
	}
}

func TestSourceTypeStats(t *testing.T) {
	t.Parallel()

	sources := []models.CuratedSourceModel{
		{Type: models.SourceArticle, Rating: 8.0, URL: "https://example.com/first"},
		{Type: models.SourceArticle, Rating: 0, URL: "https://example.com/second"}, // unrated
		{Type: models.SourceVideo, Rating: 6.5, URL: "https://youtube.com/watch?v=a"},
	}

	data := Aggregate(sources)
	if len(data.SourceStats) != 2 {
		t.Fatalf("SourceStats = %+v, want 2 entries", data.SourceStats)
	}

	article := data.SourceStats[0]
	if article.Type != "ARTICLE" || article.Count != 2 {
		t.Errorf("article stat = %+v", article)
	}
	// The unrated source still counts toward the denominator: 8.0 / 2 = 4.0.
	if article.AverageRating != 4.0 {
		t.Errorf("article avg = %v, want 4.0", article.AverageRating)
	}
	if article.URL != "https://example.com/first" {
		t.Errorf("article URL = %q, want first-seen source", article.URL)
	}

	video := data.SourceStats[1]
	if video.Type != "VIDEO" || video.Count != 1 || video.AverageRating != 6.5 {
		t.Errorf("video stat = %+v", video)
	}
}

func TestRatingDistributionBuckets(t *testing.T) {
	t.Parallel()

	sources := []models.CuratedSourceModel{
		src(models.SourceArticle, 8.5, nil), // ceil → 9
		src(models.SourceArticle, 8.0, nil), // ceil → 8
		src(models.SourceArticle, 0.3, nil), // clamp → 1
		src(models.SourceArticle, 10, nil),  // → 10
	}

	data := Aggregate(sources)
	if len(data.RatingDistribution) != 10 {
		t.Fatalf("got %d buckets, want 10 (empty buckets included)", len(data.RatingDistribution))
	}

	byBucket := make(map[int]SourceStat, 10)
	for _, s := range data.RatingDistribution {
		byBucket[s.Rating] = s
	}
	if byBucket[9].Count != 1 || byBucket[8].Count != 1 || byBucket[1].Count != 1 || byBucket[10].Count != 1 {
		t.Errorf("distribution = %+v", data.RatingDistribution)
	}
	if byBucket[5].Count != 0 || byBucket[5].Percentage != 0 {
		t.Errorf("empty bucket 5 = %+v", byBucket[5])
	}
	if byBucket[9].Percentage != 25 {
		t.Errorf("bucket 9 percentage = %v, want 25", byBucket[9].Percentage)
	}
}

func TestTopProsAndCons(t *testing.T) {
	t.Parallel()

	pros := func(terms ...string) models.JSONMap {
		list := make([]interface{}, len(terms))
		for i, s := range terms {
			list[i] = s
		}
		return models.JSONMap{"pros": list}
	}

	sources := []models.CuratedSourceModel{
		src(models.SourceArticle, 0, pros("クッション性", "軽量")),
		src(models.SourceArticle, 0, pros("クッション性!", "耐久性")),
		src(models.SourceVideo, 0, pros("クッション性", "軽量", "グリップ", "通気性", "反発", "フィット感")),
	}

	data := Aggregate(sources)
	if len(data.TopPros) != 5 {
		t.Fatalf("TopPros = %v, want capped at 5", data.TopPros)
	}
	// Punctuation is stripped during normalization, so the three variants of
	// クッション性 count as one term.
	if data.TopPros[0].Term != "クッション性" || data.TopPros[0].Count != 3 {
		t.Errorf("TopPros[0] = %+v, want クッション性 x3", data.TopPros[0])
	}
	if data.TopPros[1].Term != "軽量" || data.TopPros[1].Count != 2 {
		t.Errorf("TopPros[1] = %+v, want 軽量 x2", data.TopPros[1])
	}
}

func TestNormalizeTerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Lightweight!", "lightweight"},
		{"クッション性◎", "クッション性"},
		{"  padded  ", "padded"},
		{"драйв", ""},
	}
	for _, tt := range tests {
		if got := normalizeTerm(tt.in); got != tt.want {
			t.Errorf("normalizeTerm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInferAudiences(t *testing.T) {
	t.Parallel()

	sources := []models.CuratedSourceModel{
		{Type: models.SourceArticle, Title: "初心者にもおすすめのデイリートレーナー", Excerpt: "daily training にぴったり"},
		{Type: models.SourceVideo, Title: "マラソン向けロングランレビュー", Excerpt: "long run distance test"},
		{Type: models.SourceArticle, Title: "everyday shoe for beginner runners", Excerpt: ""},
	}

	data := Aggregate(sources)
	if len(data.RecommendedFor) == 0 || len(data.RecommendedFor) > 3 {
		t.Fatalf("RecommendedFor = %v, want 1..3 entries", data.RecommendedFor)
	}
	for i := 1; i < len(data.RecommendedFor); i++ {
		if data.RecommendedFor[i].Score > data.RecommendedFor[i-1].Score {
			t.Errorf("audiences not sorted by score: %v", data.RecommendedFor)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	data := Aggregate(nil)
	if data.SourceCount != 0 || data.AverageRating != 0 {
		t.Errorf("empty aggregate = %+v", data)
	}
	if len(data.RatingDistribution) != 10 {
		t.Errorf("empty aggregate still emits 10 buckets, got %d", len(data.RatingDistribution))
	}
	if len(data.TopPros) != 0 || len(data.RecommendedFor) != 0 {
		t.Errorf("empty aggregate lists = %v / %v", data.TopPros, data.RecommendedFor)
	}
}
