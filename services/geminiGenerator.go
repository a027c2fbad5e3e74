package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/WWJD/models"
)

// GeminiGenerator produces guidance with the Gemini API.
type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, maxTokens: 1024}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, situation string) (models.Guidance, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(guidanceUserPrompt(situation)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(guidanceSystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return models.Guidance{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return models.Guidance{}, fmt.Errorf("no response from gemini")
	}
	return ParseGuidance(text), nil
}
