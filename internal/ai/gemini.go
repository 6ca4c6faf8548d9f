package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiTextModel  = "gemini-2.0-flash"
	defaultGeminiImageModel = "gemini-2.0-flash-preview-image-generation"
)

// GeminiProvider uses the Gemini API through the genai SDK.
type GeminiProvider struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string // overrides the API endpoint, used by tests
}

// NewGeminiProvider creates a Gemini API client.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	textModel := cfg.TextModel
	if textModel == "" {
		textModel = defaultGeminiTextModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = defaultGeminiImageModel
	}

	return &GeminiProvider{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// Name returns the provider name.
func (g *GeminiProvider) Name() string { return "gemini" }

var recommendationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString, Description: "The title of the recommended movie."},
		"year":        {Type: genai.TypeInteger, Description: "The release year of the movie."},
		"genre":       {Type: genai.TypeString, Description: "The primary genre of the movie."},
		"description": {Type: genai.TypeString, Description: "A brief, compelling plot summary of the movie."},
		"rating":      {Type: genai.TypeNumber, Description: "The movie's critical rating out of 10, can be a decimal (e.g., 8.5)."},
		"ageRating":   {Type: genai.TypeString, Description: "The age rating of the movie (e.g., PG-13, R, G)."},
	},
	Required: []string{"title", "year", "genre", "description", "rating", "ageRating"},
}

var funFactSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"funFact": {Type: genai.TypeString, Description: "An interesting fun fact about the movie."},
	},
	Required: []string{"funFact"},
}

// posterSafetySettings relaxes every category except sexually explicit
// content so that violent or dark film themes can still be drawn.
var posterSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

// Recommend asks Gemini for one movie matching the phrase.
func (g *GeminiProvider) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	text, err := g.generateJSON(ctx, recommendPrompt(in), recommendationSchema)
	if err != nil {
		return nil, err
	}

	var rec Recommendation
	if err := decodeJSON(text, &rec); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FunFact asks Gemini for one piece of trivia.
func (g *GeminiProvider) FunFact(ctx context.Context, in FunFactInput) (*FunFact, error) {
	text, err := g.generateJSON(ctx, funFactPrompt(in), funFactSchema)
	if err != nil {
		return nil, err
	}

	var fact FunFact
	if err := decodeJSON(text, &fact); err != nil {
		return nil, err
	}
	if err := fact.Validate(); err != nil {
		return nil, err
	}
	return &fact, nil
}

// GeneratePoster draws a poster and returns the first inline image.
func (g *GeminiProvider) GeneratePoster(ctx context.Context, in PosterInput) (*Poster, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, genai.Text(posterPrompt(in)), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		SafetySettings:     posterSafetySettings,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	for _, part := range firstCandidateParts(resp) {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		poster := &Poster{DataURI: DataURI(part.InlineData.MIMEType, part.InlineData.Data)}
		if err := poster.Validate(); err != nil {
			return nil, err
		}
		return poster, nil
	}
	return nil, fmt.Errorf("image generation failed: %w", ErrEmptyResponse)
}

func (g *GeminiProvider) generateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var sb strings.Builder
	for _, part := range firstCandidateParts(resp) {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func firstCandidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return nil
	}
	return c.Content.Parts
}
