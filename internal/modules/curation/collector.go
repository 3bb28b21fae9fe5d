package curation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/runreview/core/internal/models"
	"github.com/runreview/core/internal/modules/curation/providers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	videoResultsPerQuery = 5

	// YouTube carries no rating signal, videos enter aggregation at a
	// neutral score.
	neutralVideoRating = 7.0
)

// CollectResult carries the merged candidates of one collection run plus
// warnings for providers that failed. A run only errors out when nothing
// could be collected at all.
type CollectResult struct {
	Candidates []CandidateSource
	Warnings   []string
}

// Collector fans out to the configured providers and merges their results.
// Any provider may be nil, its branch is skipped.
type Collector struct {
	web     providers.WebSearcher
	video   providers.VideoSearcher
	product providers.ProductSearcher
	log     *zap.Logger
}

func NewCollector(web providers.WebSearcher, video providers.VideoSearcher, product providers.ProductSearcher, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{web: web, video: video, product: product, log: log}
}

// Collect runs all configured providers concurrently, classifies and dedups
// their candidates, and truncates to the most reliable MaxResults.
func (c *Collector) Collect(ctx context.Context, item ItemDescriptor, opts CollectOptions) (CollectResult, error) {
	if opts.MaxResults < 1 {
		opts.MaxResults = 12
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		mu         sync.Mutex
		candidates []CandidateSource
		warnings   []string
	)
	addCandidates := func(batch []CandidateSource) {
		mu.Lock()
		candidates = append(candidates, batch...)
		mu.Unlock()
	}
	addWarning := func(err error) {
		c.log.Warn("provider failed", zap.Error(err))
		mu.Lock()
		warnings = append(warnings, err.Error())
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	if c.web != nil && !opts.SkipWeb {
		g.Go(func() error {
			query := fmt.Sprintf("%s %s レビュー 最新", item.Brand, item.Model)
			results, err := c.web.SearchWeb(gctx, query, opts.MaxResults)
			if err != nil {
				addWarning(err)
				return nil
			}
			addCandidates(webCandidates(results, c.web.Name()))
			return nil
		})
	}

	if c.video != nil && !opts.SkipVideos {
		g.Go(func() error {
			queries := []string{
				fmt.Sprintf("%s %s レビュー", item.Brand, item.Model),
				fmt.Sprintf("%s %s review", item.Brand, item.Model),
			}
			var batch []CandidateSource
			for _, query := range queries {
				results, err := c.video.SearchVideos(gctx, query, videoResultsPerQuery)
				if err != nil {
					addWarning(err)
					continue
				}
				batch = append(batch, videoCandidates(results)...)
			}
			addCandidates(batch)
			return nil
		})
	}

	if c.product != nil && !opts.SkipMarketplace {
		g.Go(func() error {
			keyword := fmt.Sprintf("%s %s シューズ", item.Brand, item.Model)
			stats, err := c.product.SearchProducts(gctx, keyword, 10)
			if err != nil {
				addWarning(err)
				return nil
			}
			addCandidates(productCandidates(stats))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return CollectResult{}, err
	}

	merged := Deduplicate(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Reliability > merged[j].Reliability
	})
	if len(merged) > opts.MaxResults {
		merged = merged[:opts.MaxResults]
	}

	c.log.Info("collection finished",
		zap.String("brand", item.Brand),
		zap.String("model", item.Model),
		zap.Int("candidates", len(merged)),
		zap.Int("warnings", len(warnings)),
	)
	return CollectResult{Candidates: merged, Warnings: warnings}, nil
}

func webCandidates(results []providers.WebResult, providerName string) []CandidateSource {
	out := make([]CandidateSource, 0, len(results))
	for _, item := range results {
		host := hostOf(item.URL)
		if host == "" {
			continue
		}
		srcType := Classify(item.URL, item.Title)
		out = append(out, CandidateSource{
			URL:         item.URL,
			Title:       item.Title,
			Excerpt:     item.Snippet,
			Platform:    host,
			Language:    detectLanguage(item.Title + item.Snippet),
			Type:        srcType,
			Reliability: ReliabilityFor(srcType),
			Metadata: map[string]interface{}{
				"source":     providerName,
				"displayUrl": item.DisplayURL,
			},
		})
	}
	return out
}

func videoCandidates(results []providers.VideoResult) []CandidateSource {
	out := make([]CandidateSource, 0, len(results))
	for _, item := range results {
		excerpt := item.Description
		if excerpt == "" {
			excerpt = item.Title
		}
		var publishedAt *time.Time
		if !item.PublishedAt.IsZero() {
			t := item.PublishedAt
			publishedAt = &t
		}
		out = append(out, CandidateSource{
			URL:          item.URL,
			Title:        item.Title,
			Excerpt:      excerpt,
			Author:       item.ChannelTitle,
			Platform:     "youtube.com",
			Language:     detectLanguage(item.Title),
			PublishedAt:  publishedAt,
			ThumbnailURL: item.ThumbnailURL,
			Rating:       neutralVideoRating,
			Type:         models.SourceVideo,
			Reliability:  ReliabilityFor(models.SourceVideo),
			Metadata: map[string]interface{}{
				"videoId": item.VideoID,
			},
		})
	}
	return out
}

func productCandidates(stats []providers.ProductStat) []CandidateSource {
	out := make([]CandidateSource, 0, len(stats))
	for _, stat := range stats {
		out = append(out, CandidateSource{
			URL:          stat.ProductURL,
			Title:        stat.ProductName,
			Excerpt:      fmt.Sprintf("%s での商品情報。詳細は商品ページでご確認ください。", stat.ShopName),
			Author:       stat.ShopName,
			Platform:     "rakuten.co.jp",
			Language:     "ja",
			ThumbnailURL: stat.ImageURL,
			Rating:       stat.NormalizedRating,
			Type:         models.SourceMarketplace,
			Reliability:  ReliabilityFor(models.SourceMarketplace),
			StatsOnly:    stat.ReviewCount == 0,
			Metadata: map[string]interface{}{
				"price":       stat.Price,
				"reviewCount": stat.ReviewCount,
				"shopName":    stat.ShopName,
			},
		})
	}
	return out
}

func detectLanguage(text string) string {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return "ja"
		}
	}
	if strings.TrimSpace(text) == "" {
		return "ja"
	}
	return "en"
}
