package models

import "time"

// ReviewType distinguishes synthesis flavors. At most one review of a given
// type exists per shoe, enforced by the composite unique index.
type ReviewType string

const (
	ReviewAISummary ReviewType = "AI_SUMMARY"
)

// ReviewModel is a synthesized consensus review for one shoe.
type ReviewModel struct {
	Base
	ShoeID         string      `json:"shoe_id"         gorm:"uniqueIndex:idx_reviews_shoe_type;not null"`
	Type           ReviewType  `json:"type"            gorm:"uniqueIndex:idx_reviews_shoe_type;not null"`
	Title          string      `json:"title"           gorm:"not null"`
	Content        string      `json:"content"         gorm:"type:text"`
	OverallRating  float64     `json:"overall_rating"`
	Pros           StringSlice `json:"pros"            gorm:"type:json"`
	Cons           StringSlice `json:"cons"            gorm:"type:json"`
	RecommendedFor string      `json:"recommended_for"`
	IsRunningShoe  bool        `json:"is_running_shoe" gorm:"default:true"`
	SourceCount    int         `json:"source_count"`
	IsPublished    bool        `json:"is_published"    gorm:"default:true;index"`

	Sources []AISourceModel `json:"ai_sources,omitempty" gorm:"foreignKey:ReviewID"`
}

func (ReviewModel) TableName() string { return "reviews" }

// AISourceModel is one provenance record: the exact curated source a
// synthesized review consumed.
type AISourceModel struct {
	Base
	ReviewID     string     `json:"review_id"     gorm:"index;not null"`
	SourceType   SourceType `json:"source_type"`
	SourceURL    string     `json:"source_url"    gorm:"size:500;not null"`
	SourceTitle  string     `json:"source_title"`
	SourceAuthor string     `json:"source_author"`
	Reliability  float64    `json:"reliability"`
	CollectedAt  time.Time  `json:"collected_at"`
}

func (AISourceModel) TableName() string { return "ai_sources" }
