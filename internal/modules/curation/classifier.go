package curation

import (
	neturl "net/url"
	"strings"

	"github.com/runreview/core/internal/models"
)

var socialDomains = []string{
	"x.com",
	"twitter.com",
	"instagram.com",
	"threads.net",
	"facebook.com",
}

var marketplaceDomains = []string{
	"nike.com",
	"adidas.jp",
	"adidas.com",
	"asics.com",
	"mizunoshop.net",
	"newbalance.jp",
	"puma.com",
	"rakuten.co.jp",
	"yahoo.co.jp",
	"amazon.co.jp",
}

var officialKeywords = []string{
	"official",
	"ブランド",
	"キャンペーン",
	"プレスリリース",
}

// Classify assigns a source type from the URL host and title. Social hosts
// win over marketplace hosts, which win over official-looking titles;
// everything else is an article. Video results never pass through here,
// their providers tag them directly.
func Classify(rawURL, title string) models.SourceType {
	host := hostOf(rawURL)

	if matchesAnyDomain(host, socialDomains) {
		return models.SourceSNS
	}
	if matchesAnyDomain(host, marketplaceDomains) {
		return models.SourceMarketplace
	}

	lowerTitle := strings.ToLower(title)
	for _, kw := range officialKeywords {
		if strings.Contains(lowerTitle, kw) {
			return models.SourceOfficial
		}
	}
	return models.SourceArticle
}

func hostOf(rawURL string) string {
	u, err := neturl.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func matchesAnyDomain(host string, domains []string) bool {
	if host == "" {
		return false
	}
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
