package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiService implements LLMService with the Gemini SDK. System messages
// become the model's system instruction; the rest is sent as one prompt.
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiService, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{client: client, modelName: modelName, logger: logger}, nil
}

func (g *GeminiService) Name() string { return "gemini/" + g.modelName }

func (g *GeminiService) Close() error {
	return g.client.Close()
}

func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	system, prompt := geminiPrompt(messages)
	if prompt == "" {
		return nil, fmt.Errorf("no messages provided")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(DefaultTemperature)
	model.SetMaxOutputTokens(DefaultMaxTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	text, err := geminiText(resp)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: text}, nil
}

// geminiPrompt folds a conversation into a system instruction and a single
// prompt, labelling earlier storyteller turns.
func geminiPrompt(messages []chat.ChatMessage) (string, string) {
	system, rest := splitChatMessages(messages)
	var parts []string
	for _, m := range rest {
		if m.Role == chat.ChatRoleAgent {
			parts = append(parts, "Storyteller: "+m.Content)
			continue
		}
		parts = append(parts, m.Content)
	}
	return system, strings.Join(parts, "\n\n")
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return b.String(), nil
}
