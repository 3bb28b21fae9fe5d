package curation

import "strings"

const contentKeyLength = 100

// contentKey normalizes the leading runes of a candidate's excerpt down to a
// short fingerprint so that the same review syndicated under different URLs
// collapses to one. The window is taken before normalization, so trailing
// whitespace inside it shortens the key rather than pulling in more text.
func contentKey(excerpt string) string {
	runes := []rune(excerpt)
	if len(runes) > contentKeyLength {
		runes = runes[:contentKeyLength]
	}
	text := strings.ToLower(string(runes))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Deduplicate drops candidates whose URL or content fingerprint was already
// seen, keeping the first occurrence. Order is preserved.
func Deduplicate(candidates []CandidateSource) []CandidateSource {
	seenURL := make(map[string]struct{}, len(candidates))
	seenContent := make(map[string]struct{}, len(candidates))

	out := make([]CandidateSource, 0, len(candidates))
	for _, c := range candidates {
		url := strings.TrimSpace(c.URL)
		if url != "" {
			if _, ok := seenURL[url]; ok {
				continue
			}
			seenURL[url] = struct{}{}
		}
		if key := contentKey(c.Excerpt); key != "" {
			if _, ok := seenContent[key]; ok {
				continue
			}
			seenContent[key] = struct{}{}
		}
		out = append(out, c)
	}
	return out
}
