package encounter

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/textfilter"
)

//go:embed prompts/encounter.tmpl
var encounterPrompt string

var promptTemplate = template.Must(template.New("encounter").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(encounterPrompt))

// LLM is the text-generation capability the AI generator needs.
type LLM interface {
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}

// AIGenerator asks a storyteller model for an encounter. It makes exactly
// one call per Generate and returns any failure to the caller.
type AIGenerator struct {
	llm    LLM
	filter *textfilter.Filter
	rating textfilter.Rating
	logger *slog.Logger
}

var _ Generator = (*AIGenerator)(nil)

// NewAIGenerator builds a generator that scrubs scene text for ratings
// that call for it.
func NewAIGenerator(llm LLM, rating textfilter.Rating, logger *slog.Logger) *AIGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIGenerator{
		llm:    llm,
		filter: textfilter.New(),
		rating: rating,
		logger: logger,
	}
}

type promptData struct {
	Request
	Rating textfilter.Rating
}

// BuildPrompt renders the encounter prompt for a request.
func BuildPrompt(req Request, rating textfilter.Rating) (string, error) {
	if req.Location == "" {
		req.Location = DefaultLocation
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{Request: req, Rating: rating}); err != nil {
		return "", fmt.Errorf("failed to render encounter prompt: %w", err)
	}
	return buf.String(), nil
}

func (g *AIGenerator) Generate(ctx context.Context, req Request) (*Encounter, error) {
	prompt, err := BuildPrompt(req, g.rating)
	if err != nil {
		return nil, err
	}

	resp, err := g.llm.Chat(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are a creative dark fantasy storyteller who creates unique, non-repetitive adventures with meaningful stat-based choices."},
		{Role: chat.ChatRoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate encounter: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Message) == "" {
		return nil, fmt.Errorf("failed to generate encounter: empty response")
	}

	enc := Parse(resp.Message)
	enc.Source = SourceAI
	if g.rating.Filters() {
		scene, n := g.filter.Scrub(enc.Scene)
		if n > 0 {
			g.logger.Info("Filtered encounter scene", "replacements", n, "rating", g.rating)
		}
		enc.Scene = scene
		for i, c := range enc.Choices {
			enc.Choices[i], _ = g.filter.Scrub(c)
		}
	}
	return enc, nil
}

// WithFallback tries primary and substitutes fallback's encounter when
// primary fails. Each call is independent; nothing is cached.
type WithFallback struct {
	primary  Generator
	fallback Generator
	logger   *slog.Logger
}

var _ Generator = (*WithFallback)(nil)

func NewWithFallback(primary, fallback Generator, logger *slog.Logger) *WithFallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &WithFallback{primary: primary, fallback: fallback, logger: logger}
}

func (w *WithFallback) Generate(ctx context.Context, req Request) (*Encounter, error) {
	enc, err := w.primary.Generate(ctx, req)
	if err == nil && enc != nil {
		return enc, nil
	}
	w.logger.Warn("Encounter generation failed, using local encounter", "error", err)
	return w.fallback.Generate(ctx, req)
}
