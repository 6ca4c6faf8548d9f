package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	defaultOpenAITextModel  = openai.GPT4oMini
	defaultOpenAIImageModel = openai.CreateImageModelDallE3
)

// OpenAIProvider uses chat completions with JSON schema output and the
// image generation endpoint.
type OpenAIProvider struct {
	client     *openai.Client
	textModel  string
	imageModel string
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string // overrides the API endpoint, used by tests
}

// NewOpenAIProvider creates an OpenAI API client.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	textModel := cfg.TextModel
	if textModel == "" {
		textModel = defaultOpenAITextModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = defaultOpenAIImageModel
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		textModel:  textModel,
		imageModel: imageModel,
	}
}

// Name returns the provider name.
func (o *OpenAIProvider) Name() string { return "openai" }

// Recommend asks the chat model for one movie matching the phrase.
func (o *OpenAIProvider) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	var rec Recommendation
	if err := o.completeJSON(ctx, "movie_recommendation", recommendPrompt(in), Recommendation{}, &rec); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FunFact asks the chat model for one piece of trivia.
func (o *OpenAIProvider) FunFact(ctx context.Context, in FunFactInput) (*FunFact, error) {
	var fact FunFact
	if err := o.completeJSON(ctx, "movie_fun_fact", funFactPrompt(in), FunFact{}, &fact); err != nil {
		return nil, err
	}
	if err := fact.Validate(); err != nil {
		return nil, err
	}
	return &fact, nil
}

// GeneratePoster draws a portrait poster and returns it base64 encoded.
func (o *OpenAIProvider) GeneratePoster(ctx context.Context, in PosterInput) (*Poster, error) {
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         posterPrompt(in),
		Model:          o.imageModel,
		Size:           openai.CreateImageSize1024x1792,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image generation failed: %w", ErrEmptyResponse)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	poster := &Poster{DataURI: DataURI("image/png", data)}
	if err := poster.Validate(); err != nil {
		return nil, err
	}
	return poster, nil
}

// completeJSON requests a response matching the schema of shape and decodes it into v.
func (o *OpenAIProvider) completeJSON(ctx context.Context, name, prompt string, shape, v any) error {
	schema, err := jsonschema.GenerateSchemaForType(shape)
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ErrEmptyResponse
	}

	return decodeJSON(resp.Choices[0].Message.Content, v)
}
