package models

// ShoeModel is one catalog item: a running shoe model sold under a brand.
type ShoeModel struct {
	Base
	Brand       string      `json:"brand"        gorm:"index;not null"`
	ModelName   string      `json:"model_name"   gorm:"index;not null"`
	Category    string      `json:"category"` // e.g. "Daily Trainer", "Racing", "Trail"
	Keywords    StringSlice `json:"keywords"     gorm:"type:json"`
	Locale      string      `json:"locale"       gorm:"default:'ja-JP'"`
	Region      string      `json:"region"`
	ReleaseYear *int        `json:"release_year"`

	Sources []CuratedSourceModel `json:"sources,omitempty" gorm:"foreignKey:ShoeID"`
	Reviews []ReviewModel        `json:"reviews,omitempty" gorm:"foreignKey:ShoeID"`
}

func (ShoeModel) TableName() string { return "shoes" }

// Label is the human-readable identifier used in logs and batch results.
func (s ShoeModel) Label() string {
	return s.Brand + " " + s.ModelName
}
