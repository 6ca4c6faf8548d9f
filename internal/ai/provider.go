// Package ai wraps the generative AI providers behind three narrow
// operations: recommend a movie, tell a fun fact and draw a poster.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/abdulachik/cinetrivia/internal/config"
)

var (
	// ErrEmptyResponse is returned when the provider answered without a usable payload.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrUnsupported is returned when a provider cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by provider")

	// ErrInvalidResponse is returned when a payload is missing a required field.
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// Operation names, used for prompts, metrics and errors.
const (
	OpRecommend = "recommend"
	OpFunFact   = "funfact"
	OpPoster    = "poster"
)

// SchemaError reports a decoded payload that does not satisfy its schema.
type SchemaError struct {
	Op     string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s response: field %q %s", e.Op, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrInvalidResponse }

// Provider is a generative AI backend.
type Provider interface {
	Name() string
	Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error)
	FunFact(ctx context.Context, in FunFactInput) (*FunFact, error)
	GeneratePoster(ctx context.Context, in PosterInput) (*Poster, error)
}

// RecommendInput is the mood or genre phrase a recommendation is based on.
type RecommendInput struct {
	MoodOrGenre string `json:"moodOrGenre"`
}

// Recommendation is a movie suggested by the provider.
type Recommendation struct {
	Title       string  `json:"title" description:"The title of the recommended movie."`
	Year        int     `json:"year" description:"The release year of the movie."`
	Genre       string  `json:"genre" description:"The primary genre of the movie."`
	Description string  `json:"description" description:"A brief, compelling plot summary of the movie."`
	Rating      float64 `json:"rating" description:"The movie's critical rating out of 10, can be a decimal (e.g., 8.5)."`
	AgeRating   string  `json:"ageRating" description:"The age rating of the movie (e.g., PG-13, R, G)."`
}

// Validate checks that every field the UI renders is present.
func (r *Recommendation) Validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return &SchemaError{Op: OpRecommend, Field: "title", Reason: "is missing"}
	case r.Year <= 0:
		return &SchemaError{Op: OpRecommend, Field: "year", Reason: "is missing"}
	case strings.TrimSpace(r.Genre) == "":
		return &SchemaError{Op: OpRecommend, Field: "genre", Reason: "is missing"}
	case strings.TrimSpace(r.Description) == "":
		return &SchemaError{Op: OpRecommend, Field: "description", Reason: "is missing"}
	case r.Rating < 0 || r.Rating > 10:
		return &SchemaError{Op: OpRecommend, Field: "rating", Reason: "is out of range"}
	case strings.TrimSpace(r.AgeRating) == "":
		return &SchemaError{Op: OpRecommend, Field: "ageRating", Reason: "is missing"}
	}
	return nil
}

// FunFactInput names the movie to tell a fact about.
type FunFactInput struct {
	MovieTitle string `json:"movieTitle"`
}

// FunFact is one piece of movie trivia.
type FunFact struct {
	Text string `json:"funFact" description:"An interesting fun fact about the movie."`
}

// Validate checks that the fact is not blank.
func (f *FunFact) Validate() error {
	if strings.TrimSpace(f.Text) == "" {
		return &SchemaError{Op: OpFunFact, Field: "funFact", Reason: "is missing"}
	}
	return nil
}

// PosterInput describes the movie to draw.
type PosterInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
}

// Poster is a generated image encoded as a data URI.
type Poster struct {
	DataURI string `json:"posterDataUri"`
}

// Validate checks that the poster is an inline image.
func (p *Poster) Validate() error {
	if p.DataURI == "" {
		return &SchemaError{Op: OpPoster, Field: "posterDataUri", Reason: "is missing"}
	}
	if !strings.HasPrefix(p.DataURI, "data:image/") || !strings.Contains(p.DataURI, ";base64,") {
		return &SchemaError{Op: OpPoster, Field: "posterDataUri", Reason: "is not an image data URI"}
	}
	return nil
}

// NewProvider builds the provider selected by cfg.AIProvider. The result
// records metrics for every call.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.AIProvider {
	case config.ProviderGemini:
		p, err = NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
		})
	case config.ProviderOpenAI:
		p = NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
		})
	case config.ProviderAnthropic:
		p = NewClaudeProvider(ClaudeConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.TextModel,
			Timeout: cfg.AITimeout,
		})
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.AIProvider, err)
	}

	return Instrument(p), nil
}

// DataURI encodes raw image bytes as a data URI.
func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
