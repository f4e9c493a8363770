package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// TextGenerator is the seam between the stage functions and the model
// service. Tests inject stubs; production uses Gemini.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int32) (string, error)
}

type GeminiService interface {
	TextGenerator
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(apiKey, model string) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &geminiService{
		client:     client,
		modelName:  model,
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements TextGenerator.
func (g *geminiService) GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int32) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		// Try to extract any content from candidates if available
		if len(resp.Candidates) > 0 {
			var textParts []string
			for _, candidate := range resp.Candidates {
				if candidate.Content != nil {
					textParts = append(textParts, fmt.Sprintf("%v", candidate.Content))
				}
			}

			if len(textParts) > 0 {
				return strings.Join(textParts, "\n"), nil
			}
		}

		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
