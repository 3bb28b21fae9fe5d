package curation

import (
	"time"

	"github.com/runreview/core/internal/models"
)

// CandidateSource is a provider result before classification and persistence.
type CandidateSource struct {
	URL          string
	Title        string
	Excerpt      string
	Author       string
	Platform     string
	Language     string
	Country      string
	PublishedAt  *time.Time
	ThumbnailURL string
	Rating       float64 // 0 means unrated
	Type         models.SourceType
	Reliability  float64
	Tags         []string
	Metadata     map[string]interface{}

	// StatsOnly marks candidates that feed aggregation but are not worth
	// persisting as a browsable source (e.g. marketplace rating rollups).
	StatsOnly bool
}

// ItemDescriptor identifies the shoe a collection run is for.
type ItemDescriptor struct {
	Brand    string
	Model    string
	Category string
	Keywords []string
}

// CollectOptions tunes one collection run. The skip flags disable a
// provider branch for this run even when the provider is configured.
type CollectOptions struct {
	MaxResults      int
	Timeout         time.Duration
	SkipWeb         bool
	SkipVideos      bool
	SkipMarketplace bool
}

// SourceStat is one bucket of the rating distribution.
type SourceStat struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TermCount is a pro/con term with its mention frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// AudienceMatch is a recommended audience with its keyword hit count.
type AudienceMatch struct {
	Audience string `json:"audience"`
	Score    int    `json:"score"`
}

// TypeStat summarizes the sources of one type: how many there are, their
// average rating and a representative link.
type TypeStat struct {
	Type          string  `json:"type"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"avg_rating"`
	URL           string  `json:"url,omitempty"`
}

// AggregatedReviewData is the statistical rollup over a shoe's sources.
type AggregatedReviewData struct {
	SourceCount        int             `json:"source_count"`
	RatedCount         int             `json:"rated_count"`
	AverageRating      float64         `json:"average_rating"`
	RatingDistribution []SourceStat    `json:"rating_distribution"`
	TopPros            []TermCount     `json:"top_pros"`
	TopCons            []TermCount     `json:"top_cons"`
	RecommendedFor     []AudienceMatch `json:"recommended_for"`
	SourceStats        []TypeStat      `json:"source_stats"`
	LastUpdated        time.Time       `json:"last_updated"`
}
