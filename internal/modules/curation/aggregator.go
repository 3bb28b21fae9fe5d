package curation

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/runreview/core/internal/models"
)

const (
	topTermCount     = 5
	topAudienceCount = 3
	maxTermLength    = 50
)

// audienceCategories is ordered: ties in keyword score resolve to the
// earlier category.
var audienceCategories = []struct {
	Name     string
	Keywords []string
}{
	{"初心者", []string{"beginner", "first", "初心者", "入門", "easy"}},
	{"中級者", []string{"intermediate", "versatile", "中級", "all-around"}},
	{"上級者", []string{"advanced", "elite", "race", "上級", "プロ"}},
	{"デイリートレーナー", []string{"daily", "everyday", "training", "トレーニング", "練習用"}},
	{"レース用", []string{"race", "racing", "fast", "speed", "レース", "大会"}},
	{"ロング走", []string{"long run", "marathon", "distance", "ロング", "マラソン"}},
	{"リカバリー", []string{"recovery", "easy", "comfortable", "リカバリー", "回復"}},
	{"トレイル", []string{"trail", "off-road", "トレイル", "山"}},
}

// Aggregate rolls persisted sources up into rating statistics, frequent
// pros/cons and inferred target audiences.
func Aggregate(sources []models.CuratedSourceModel) AggregatedReviewData {
	data := AggregatedReviewData{
		SourceCount: len(sources),
		LastUpdated: time.Now().UTC(),
	}

	var ratingSum float64
	for _, src := range sources {
		if src.Rating > 0 {
			data.RatedCount++
			ratingSum += src.Rating
		}
	}
	if data.RatedCount > 0 {
		data.AverageRating = math.Round(ratingSum/float64(data.RatedCount)*10) / 10
	}

	data.RatingDistribution = ratingDistribution(sources, data.RatedCount)
	data.TopPros = topTerms(sources, "pros")
	data.TopCons = topTerms(sources, "cons")
	data.RecommendedFor = inferAudiences(sources)
	data.SourceStats = sourceTypeStats(sources)
	return data
}

// sourceTypeStats groups sources by type in first-seen order. The first
// source of a type provides the representative URL; the average divides the
// rated sum by every source of the type, unrated ones pull it down.
func sourceTypeStats(sources []models.CuratedSourceModel) []TypeStat {
	type acc struct {
		count int
		total float64
		url   string
	}
	byType := make(map[models.SourceType]*acc, 4)
	order := make([]models.SourceType, 0, 4)

	for _, src := range sources {
		a, ok := byType[src.Type]
		if !ok {
			a = &acc{url: src.URL}
			byType[src.Type] = a
			order = append(order, src.Type)
		}
		a.count++
		if src.Rating > 0 {
			a.total += src.Rating
		}
	}

	stats := make([]TypeStat, 0, len(order))
	for _, t := range order {
		a := byType[t]
		avg := 0.0
		if a.count > 0 {
			avg = math.Round(a.total/float64(a.count)*10) / 10
		}
		stats = append(stats, TypeStat{
			Type:          string(t),
			Count:         a.count,
			AverageRating: avg,
			URL:           a.url,
		})
	}
	return stats
}

// ratingDistribution buckets ratings into 1..10 by ceiling. Empty buckets
// are emitted so charts always get ten bars.
func ratingDistribution(sources []models.CuratedSourceModel, ratedCount int) []SourceStat {
	counts := make(map[int]int, 10)
	for _, src := range sources {
		if src.Rating <= 0 {
			continue
		}
		bucket := int(math.Ceil(src.Rating))
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 10 {
			bucket = 10
		}
		counts[bucket]++
	}

	stats := make([]SourceStat, 0, 10)
	for rating := 1; rating <= 10; rating++ {
		count := counts[rating]
		pct := 0.0
		if ratedCount > 0 {
			pct = math.Round(float64(count) / float64(ratedCount) * 100)
		}
		stats = append(stats, SourceStat{Rating: rating, Count: count, Percentage: pct})
	}
	return stats
}

func topTerms(sources []models.CuratedSourceModel, metadataKey string) []TermCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, src := range sources {
		for _, term := range metadataStrings(src.Metadata, metadataKey) {
			normalized := normalizeTerm(term)
			if normalized == "" {
				continue
			}
			if _, seen := counts[normalized]; !seen {
				order = append(order, normalized)
			}
			counts[normalized]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topTermCount {
		order = order[:topTermCount]
	}

	out := make([]TermCount, 0, len(order))
	for _, term := range order {
		out = append(out, TermCount{Term: term, Count: counts[term]})
	}
	return out
}

// normalizeTerm lowercases a term and strips everything that is neither
// word character, whitespace, nor Japanese script, then caps the length.
func normalizeTerm(term string) string {
	lowered := strings.ToLower(term)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isTermRune(r) {
			b.WriteRune(r)
		}
	}
	normalized := strings.TrimSpace(b.String())
	runes := []rune(normalized)
	if len(runes) > maxTermLength {
		normalized = string(runes[:maxTermLength])
	}
	return normalized
}

func isTermRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		return true
	case r == ' ', r == '\t', r == '\n':
		return true
	case r >= 0x3000 && r <= 0x303f: // CJK punctuation
		return true
	case r >= 0x3040 && r <= 0x309f: // hiragana
		return true
	case r >= 0x30a0 && r <= 0x30ff: // katakana
		return true
	case r >= 0x4e00 && r <= 0x9faf: // kanji
		return true
	}
	return false
}

func inferAudiences(sources []models.CuratedSourceModel) []AudienceMatch {
	scores := make(map[string]int, len(audienceCategories))

	for _, src := range sources {
		parts := []string{src.Title, src.Excerpt}
		parts = append(parts, metadataStrings(src.Metadata, "pros")...)
		parts = append(parts, metadataStrings(src.Metadata, "cons")...)
		text := strings.ToLower(strings.Join(parts, " "))

		for _, cat := range audienceCategories {
			for _, kw := range cat.Keywords {
				if strings.Contains(text, strings.ToLower(kw)) {
					scores[cat.Name]++
				}
			}
		}
	}

	matches := make([]AudienceMatch, 0, len(audienceCategories))
	for _, cat := range audienceCategories {
		if score := scores[cat.Name]; score > 0 {
			matches = append(matches, AudienceMatch{Audience: cat.Name, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topAudienceCount {
		matches = matches[:topAudienceCount]
	}
	return matches
}

func metadataStrings(meta models.JSONMap, key string) []string {
	if meta == nil {
		return nil
	}
	raw, ok := meta[key]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
