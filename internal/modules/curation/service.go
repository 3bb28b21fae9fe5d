package curation

import (
	"context"
	"errors"
	"strings"

	"github.com/runreview/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxSourceTags    = 8
	maxListedSources = 30
)

var (
	ErrItemNotFound = errors.New("shoe not found")
	ErrNoSources    = errors.New("no sources collected from any provider")

	// ErrInsufficientSources means a shoe has fewer stored sources than the
	// configured synthesis threshold.
	ErrInsufficientSources = errors.New("insufficient sources")
)

// RefreshSummary reports what one refresh run did.
type RefreshSummary struct {
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Service drives collection runs and owns curated source persistence.
type Service struct {
	db        *gorm.DB
	collector *Collector
	enricher  *OGPEnricher
	log       *zap.Logger
}

func NewService(db *gorm.DB, collector *Collector, enricher *OGPEnricher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, collector: collector, enricher: enricher, log: log}
}

func (s *Service) DB() *gorm.DB { return s.db }

// GetShoe loads a shoe by ID.
func (s *Service) GetShoe(id string) (*models.ShoeModel, error) {
	var shoe models.ShoeModel
	if err := s.db.First(&shoe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &shoe, nil
}

// RefreshSources collects fresh candidates for a shoe and persists the ones
// not already known. Existing URLs are never touched, a refresh only adds.
func (s *Service) RefreshSources(ctx context.Context, shoeID string, opts CollectOptions) (RefreshSummary, error) {
	shoe, err := s.GetShoe(shoeID)
	if err != nil {
		return RefreshSummary{}, err
	}

	item := ItemDescriptor{
		Brand:    shoe.Brand,
		Model:    shoe.ModelName,
		Category: shoe.Category,
		Keywords: shoe.Keywords,
	}

	result, err := s.collector.Collect(ctx, item, opts)
	if err != nil {
		return RefreshSummary{}, err
	}
	if len(result.Candidates) == 0 {
		return RefreshSummary{Warnings: result.Warnings}, ErrNoSources
	}

	if s.enricher != nil {
		s.enricher.Enrich(ctx, result.Candidates)
	}

	existing, err := s.existingURLs(shoeID)
	if err != nil {
		return RefreshSummary{}, err
	}

	language := languageOf(shoe.Locale)
	tags := sourceTags(shoe)

	summary := RefreshSummary{Warnings: result.Warnings}
	rows := make([]models.CuratedSourceModel, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		if c.StatsOnly {
			summary.Skipped++
			continue
		}
		if _, ok := existing[c.URL]; ok {
			summary.Skipped++
			continue
		}
		lang := c.Language
		if lang == "" {
			lang = language
		}
		rows = append(rows, models.CuratedSourceModel{
			ShoeID:       shoeID,
			URL:          c.URL,
			Type:         c.Type,
			Platform:     c.Platform,
			Title:        c.Title,
			Excerpt:      c.Excerpt,
			Author:       c.Author,
			Language:     lang,
			Country:      shoe.Region,
			PublishedAt:  c.PublishedAt,
			ThumbnailURL: c.ThumbnailURL,
			Tags:         tags,
			Reliability:  c.Reliability,
			Rating:       c.Rating,
			Status:       models.SourcePublished,
			Metadata:     models.JSONMap(c.Metadata),
		})
	}

	if len(rows) > 0 {
		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows).Error; err != nil {
			return summary, err
		}
		summary.Created = len(rows)
	}

	s.log.Info("sources refreshed",
		zap.String("shoe_id", shoeID),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// GetSources lists the published sources of a shoe, most reliable first.
func (s *Service) GetSources(shoeID string, sourceType models.SourceType) ([]models.CuratedSourceModel, error) {
	tx := s.db.
		Where("shoe_id = ? AND status = ?", shoeID, models.SourcePublished).
		Order("reliability DESC").
		Order("published_at DESC").
		Order("created_at DESC").
		Limit(maxListedSources)
	if sourceType != "" {
		tx = tx.Where("type = ?", sourceType)
	}

	var sources []models.CuratedSourceModel
	if err := tx.Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// AggregateForShoe rolls the shoe's published sources up into statistics.
func (s *Service) AggregateForShoe(shoeID string) (AggregatedReviewData, error) {
	if _, err := s.GetShoe(shoeID); err != nil {
		return AggregatedReviewData{}, err
	}

	var sources []models.CuratedSourceModel
	if err := s.db.
		Where("shoe_id = ? AND status = ?", shoeID, models.SourcePublished).
		Find(&sources).Error; err != nil {
		return AggregatedReviewData{}, err
	}
	return Aggregate(sources), nil
}

func (s *Service) existingURLs(shoeID string) (map[string]struct{}, error) {
	var urls []string
	if err := s.db.Model(&models.CuratedSourceModel{}).
		Where("shoe_id = ?", shoeID).
		Pluck("url", &urls).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		out[u] = struct{}{}
	}
	return out, nil
}

func languageOf(locale string) string {
	lang := strings.TrimSpace(locale)
	if idx := strings.Index(lang, "-"); idx >= 0 {
		lang = lang[:idx]
	}
	if lang == "" {
		return "ja"
	}
	return strings.ToLower(lang)
}

// sourceTags builds the tag set for persisted sources: identity fields and
// keywords plus the two fixed discovery tags, capped at eight.
func sourceTags(shoe *models.ShoeModel) models.StringSlice {
	seen := make(map[string]struct{})
	tags := make(models.StringSlice, 0, maxSourceTags)
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || len(tags) >= maxSourceTags {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	add(shoe.Brand)
	add(shoe.ModelName)
	add(shoe.Category)
	for _, kw := range shoe.Keywords {
		add(kw)
	}
	add("ランニング")
	add("レビュー")
	return tags
}
