package recommend

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

const systemPrompt = "You are a media recommendation assistant. You only answer with JSON."

// Gemini asks a Gemini model for recommendations.
type Gemini struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

// NewGemini creates a client for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string, log logger.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: log}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

// Recommend sends the prompt and parses the reply.
func (g *Gemini) Recommend(ctx context.Context, category domain.Category, titles []string) ([]Recommendation, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(category, titles)), config)
	if err != nil {
		g.logger.Warn("gemini request failed",
			logger.String("category", string(category)),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	g.logger.Debug("gemini replied",
		logger.String("category", string(category)),
		logger.Int("seed_titles", len(titles)),
		logger.Duration("elapsed", time.Since(start)))

	return ParseRecommendations(resp.Text())
}
