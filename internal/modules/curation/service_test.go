package curation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/runreview/core/internal/database"
	"github.com/runreview/core/internal/models"
	"github.com/runreview/core/internal/modules/curation/providers"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedShoe(t *testing.T, db *gorm.DB) models.ShoeModel {
	t.Helper()
	shoe := models.ShoeModel{
		Brand:     "Nike",
		ModelName: "Pegasus 41",
		Category:  "デイリートレーナー",
		Keywords:  models.StringSlice{"クッション"},
	}
	if err := db.Create(&shoe).Error; err != nil {
		t.Fatalf("create shoe: %v", err)
	}
	return shoe
}

func newRefreshService(t *testing.T, db *gorm.DB, web providers.WebSearcher, product providers.ProductSearcher) *Service {
	t.Helper()
	collector := NewCollector(web, nil, product, zap.NewNop())
	return NewService(db, collector, nil, zap.NewNop())
}

func TestRefreshSourcesPersistsNewCandidates(t *testing.T) {
	db := newTestDB(t)
	shoe := seedShoe(t, db)

	web := &fakeWeb{results: []providers.WebResult{
		{Title: "ペガサス41を履いてみた", URL: "https://runlab.example.com/pegasus-41", Snippet: "柔らかいクッション"},
		{Title: "ペガサス41 official news", URL: "https://news.example.com/pegasus", Snippet: "発売情報"},
	}}
	product := &fakeProduct{results: []providers.ProductStat{
		{ProductName: "ペガサス41 メンズ", ProductURL: "https://item.rakuten.co.jp/shop/1/", ShopName: "shopA", ReviewCount: 5, NormalizedRating: 8.8},
		{ProductName: "ペガサス41 箱なし", ProductURL: "https://item.rakuten.co.jp/shop/2/", ShopName: "shopB", ReviewCount: 0},
	}}

	svc := newRefreshService(t, db, web, product)
	summary, err := svc.RefreshSources(context.Background(), shoe.ID, CollectOptions{})
	if err != nil {
		t.Fatalf("RefreshSources() error = %v", err)
	}
	if summary.Created != 3 {
		t.Errorf("Created = %d, want 3 (stats-only product not persisted)", summary.Created)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}

	var rows []models.CuratedSourceModel
	if err := db.Where("shoe_id = ?", shoe.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, row := range rows {
		if row.Status != models.SourcePublished {
			t.Errorf("row %s status = %q", row.URL, row.Status)
		}
		if len(row.Tags) == 0 || len(row.Tags) > 8 {
			t.Errorf("row %s tags = %v", row.URL, row.Tags)
		}
		if row.URL == "https://news.example.com/pegasus" && row.Type != models.SourceOfficial {
			t.Errorf("official title classified as %q", row.Type)
		}
	}
}

func TestRefreshSourcesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	shoe := seedShoe(t, db)

	web := &fakeWeb{results: []providers.WebResult{
		{Title: "ペガサス41レビュー", URL: "https://runlab.example.com/pegasus-41", Snippet: "良い"},
	}}
	svc := newRefreshService(t, db, web, nil)

	if _, err := svc.RefreshSources(context.Background(), shoe.ID, CollectOptions{}); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	summary, err := svc.RefreshSources(context.Background(), shoe.ID, CollectOptions{})
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if summary.Created != 0 || summary.Skipped != 1 {
		t.Errorf("second refresh = %+v, want 0 created 1 skipped", summary)
	}

	var count int64
	db.Model(&models.CuratedSourceModel{}).Where("shoe_id = ?", shoe.ID).Count(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestRefreshSourcesUnknownShoe(t *testing.T) {
	db := newTestDB(t)
	svc := newRefreshService(t, db, &fakeWeb{}, nil)

	_, err := svc.RefreshSources(context.Background(), "missing", CollectOptions{})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("error = %v, want ErrItemNotFound", err)
	}
}

func TestRefreshSourcesNoCandidates(t *testing.T) {
	db := newTestDB(t)
	shoe := seedShoe(t, db)
	svc := newRefreshService(t, db, &fakeWeb{err: errors.New("down")}, nil)

	summary, err := svc.RefreshSources(context.Background(), shoe.ID, CollectOptions{})
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("error = %v, want ErrNoSources", err)
	}
	if len(summary.Warnings) != 1 {
		t.Errorf("warnings = %v, provider failure must surface", summary.Warnings)
	}
}

func TestGetSourcesOrderingAndFilter(t *testing.T) {
	db := newTestDB(t)
	shoe := seedShoe(t, db)

	rows := []models.CuratedSourceModel{
		{ShoeID: shoe.ID, URL: "https://a.example.com/1", Type: models.SourceArticle, Title: "a", Reliability: 0.75, Status: models.SourcePublished},
		{ShoeID: shoe.ID, URL: "https://b.example.com/2", Type: models.SourceMarketplace, Title: "b", Reliability: 0.85, Status: models.SourcePublished},
		{ShoeID: shoe.ID, URL: "https://c.example.com/3", Type: models.SourceSNS, Title: "c", Reliability: 0.65, Status: models.SourceDraft},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewService(db, NewCollector(nil, nil, nil, zap.NewNop()), nil, zap.NewNop())

	sources, err := svc.GetSources(shoe.ID, "")
	if err != nil {
		t.Fatalf("GetSources() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2 (draft excluded)", len(sources))
	}
	if sources[0].Reliability < sources[1].Reliability {
		t.Error("sources not ordered by reliability desc")
	}

	filtered, err := svc.GetSources(shoe.ID, models.SourceMarketplace)
	if err != nil {
		t.Fatalf("GetSources(type) error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Type != models.SourceMarketplace {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestAggregateForShoe(t *testing.T) {
	db := newTestDB(t)
	shoe := seedShoe(t, db)

	rows := []models.CuratedSourceModel{
		{ShoeID: shoe.ID, URL: "https://a.example.com/1", Type: models.SourceArticle, Title: "初心者におすすめ", Reliability: 0.75, Rating: 8, Status: models.SourcePublished},
		{ShoeID: shoe.ID, URL: "https://b.example.com/2", Type: models.SourceVideo, Title: "daily trainer review", Reliability: 0.80, Rating: 7, Status: models.SourcePublished},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewService(db, NewCollector(nil, nil, nil, zap.NewNop()), nil, zap.NewNop())
	data, err := svc.AggregateForShoe(shoe.ID)
	if err != nil {
		t.Fatalf("AggregateForShoe() error = %v", err)
	}
	if data.SourceCount != 2 || data.RatedCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", data.SourceCount, data.RatedCount)
	}
	if data.AverageRating != 7.5 {
		t.Errorf("AverageRating = %v, want 7.5", data.AverageRating)
	}
}
