package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	appcfg "github.com/runreview/core/internal/config"
	"go.uber.org/zap"
)

// MaxSources caps how many sources feed a single prompt. Only the most
// reliable ones are worth the tokens; callers that persist provenance must
// apply the same window so provenance matches what the model saw.
const MaxSources = 5

// maxListItems caps the pros and cons lists in the final review.
const maxListItems = 5

// Engine turns a set of curated sources into one structured review.
type Engine struct {
	cfg *appcfg.AppConfig
	log *zap.Logger
}

func NewEngine(cfg *appcfg.AppConfig, log *zap.Logger) *Engine {
	return &Engine{cfg: cfg, log: log.Named("synthesis")}
}

// Synthesize builds the prompt, walks the configured providers in order and
// returns the first reply that satisfies the output contract. A provider
// failure moves on to the next one; a contract violation does not retry.
func (e *Engine) Synthesize(ctx context.Context, brand, model string, sources []SourceInput) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	picked := make([]SourceInput, len(sources))
	copy(picked, sources)
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Reliability > picked[j].Reliability
	})
	if len(picked) > MaxSources {
		picked = picked[:MaxSources]
	}

	systemPrompt, prompt := buildPrompt(brand, model, picked)

	var lastErr error
	for _, provider := range e.providerCandidates() {
		text, err := callModel(ctx, provider, systemPrompt, prompt)
		if err != nil {
			lastErr = err
			e.log.Warn("provider call failed",
				zap.String("provider", provider.ID),
				zap.Error(err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		result, err := ParseResult(text)
		if err != nil {
			e.log.Warn("provider reply rejected",
				zap.String("provider", provider.ID),
				zap.Error(err))
			return nil, err
		}
		return result, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all AI providers failed: %w", lastErr)
	}
	return nil, ErrNoProvider
}

// providerCandidates returns the assigned synthesis provider first, then the
// remaining enabled providers as fallbacks.
func (e *Engine) providerCandidates() []*appcfg.AIProvider {
	var out []*appcfg.AIProvider
	seen := map[string]bool{}

	if primary, model, err := e.cfg.ResolveSynthesisModel(); err == nil {
		p := *primary
		if model != "" {
			p.DefaultModel = model
		}
		out = append(out, &p)
		seen[primary.ID] = true
	}

	for i := range e.cfg.AI.Providers {
		p := &e.cfg.AI.Providers[i]
		if seen[p.ID] || !p.Enabled || strings.TrimSpace(p.APIKey) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseResult decodes a model reply into a Result. The reply must be exactly
// one JSON object, optionally wrapped in a markdown code fence. Anything
// after the closing brace fails the parse.
func ParseResult(raw string) (*Result, error) {
	text := stripCodeFence(raw)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(text))
	var result Result
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing content after JSON object", ErrParse)
	}

	if err := validateResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func validateResult(r *Result) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	if r.Title == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidResult)
	}
	if r.Summary == "" {
		return fmt.Errorf("%w: summary is empty", ErrInvalidResult)
	}

	r.OverallRating = clampRating(r.OverallRating)
	r.Pros = cleanTerms(r.Pros)
	r.Cons = cleanTerms(r.Cons)
	r.RecommendedFor = strings.TrimSpace(r.RecommendedFor)
	return nil
}

func clampRating(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return math.Round(v*10) / 10
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
