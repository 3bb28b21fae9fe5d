// Package synthesis turns a shoe's curated sources into one generated
// consensus review with a strict JSON output contract.
package synthesis

import (
	"errors"

	"github.com/runreview/core/internal/models"
)

var (
	// ErrParse means the model reply was not a single clean JSON object.
	ErrParse = errors.New("model reply is not valid JSON")
	// ErrEmptyResponse means the model returned no usable text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrNoProvider means no enabled provider could be used.
	ErrNoProvider = errors.New("no enabled AI provider")
	// ErrNoSources means synthesis was attempted without input material.
	ErrNoSources = errors.New("no sources to synthesize from")
	// ErrInvalidResult means the JSON parsed but violated the contract.
	ErrInvalidResult = errors.New("model reply violates the output contract")
)

// SourceInput is one piece of source material fed into the prompt.
type SourceInput struct {
	Type        models.SourceType
	Title       string
	Content     string
	Author      string
	URL         string
	Reliability float64
}

// Result is the structured review produced by the model.
type Result struct {
	Title          string   `json:"title"`
	OverallRating  float64  `json:"overall_rating"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	RecommendedFor string   `json:"recommended_for"`
	Summary        string   `json:"summary"`
	IsRunningShoe  *bool    `json:"is_running_shoe,omitempty"`
}

// RunningShoe reports the model's product-fit verdict, defaulting to true
// when the model omitted the field.
func (r *Result) RunningShoe() bool {
	if r.IsRunningShoe == nil {
		return true
	}
	return *r.IsRunningShoe
}
