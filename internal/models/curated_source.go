package models

import "time"

// SourceType categorizes where a curated source came from.
type SourceType string

const (
	SourceOfficial    SourceType = "OFFICIAL"
	SourceMarketplace SourceType = "MARKETPLACE"
	SourceSNS         SourceType = "SNS"
	SourceVideo       SourceType = "VIDEO"
	SourceArticle     SourceType = "ARTICLE"
	SourceCommunity   SourceType = "COMMUNITY"
)

// SourceStatus is the publication state of a curated source.
type SourceStatus string

const (
	SourceDraft     SourceStatus = "DRAFT"
	SourcePublished SourceStatus = "PUBLISHED"
	SourceArchived  SourceStatus = "ARCHIVED"
)

// CuratedSourceModel is a persisted, deduplicated, reliability-scored source
// for one shoe. URL is unique per shoe; rows are never re-classified after
// creation.
type CuratedSourceModel struct {
	Base
	ShoeID       string       `json:"shoe_id"       gorm:"index:idx_sources_shoe_url,unique;not null"`
	URL          string       `json:"url"           gorm:"index:idx_sources_shoe_url,unique;size:500;not null"`
	Type         SourceType   `json:"type"          gorm:"index;not null"`
	Platform     string       `json:"platform"`
	Title        string       `json:"title"         gorm:"not null"`
	Excerpt      string       `json:"excerpt"       gorm:"type:text"`
	Author       string       `json:"author"`
	Language     string       `json:"language"      gorm:"default:'ja'"`
	Country      string       `json:"country"`
	PublishedAt  *time.Time   `json:"published_at"`
	ThumbnailURL string       `json:"thumbnail_url"`
	Tags         StringSlice  `json:"tags"          gorm:"type:json"`
	Reliability  float64      `json:"reliability"   gorm:"not null"`
	Rating       float64      `json:"rating"` // normalized 0-10, 0 = unrated
	Status       SourceStatus `json:"status"        gorm:"default:'PUBLISHED';index"`
	Metadata     JSONMap      `json:"metadata"      gorm:"type:json"`
}

func (CuratedSourceModel) TableName() string { return "curated_sources" }
