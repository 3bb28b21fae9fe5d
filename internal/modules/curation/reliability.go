package curation

import "github.com/runreview/core/internal/models"

var reliabilityByType = map[models.SourceType]float64{
	models.SourceOfficial:    0.95,
	models.SourceMarketplace: 0.85,
	models.SourceVideo:       0.80,
	models.SourceArticle:     0.75,
	models.SourceSNS:         0.65,
	models.SourceCommunity:   0.60,
}

const defaultReliability = 0.75

// ReliabilityFor returns the trust weight for a source type.
func ReliabilityFor(t models.SourceType) float64 {
	if score, ok := reliabilityByType[t]; ok {
		return score
	}
	return defaultReliability
}
