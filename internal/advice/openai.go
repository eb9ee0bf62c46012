package advice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/htmlutil"
	"github.com/lox/airwatch/internal/settings"
)

const DefaultModel = "gpt-4o-mini"

var errRateLimited = errors.New("advice rate limit reached")

// OpenAINarrator phrases advice for the user's persona with a chat model.
type OpenAINarrator struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAINarrator creates a narrator allowing perMinute requests per minute.
func NewOpenAINarrator(apiKey, model string, perMinute int) (*OpenAINarrator, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}
	if model == "" {
		model = DefaultModel
	}
	if perMinute <= 0 {
		perMinute = 10
	}
	return &OpenAINarrator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}, nil
}

func (n *OpenAINarrator) Name() string {
	return "openai"
}

func (n *OpenAINarrator) Narrate(ctx context.Context, req Request) (string, error) {
	if !n.limiter.Allow() {
		return "", errRateLimited
	}

	resp, err := n.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(n.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You write short, practical air quality advice. Two sentences at most. No markdown."),
			openai.UserMessage(BuildPrompt(req)),
		},
		MaxCompletionTokens: openai.Int(160),
	})
	if err != nil {
		log.Printf("advice: openai request failed: %v", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return htmlutil.ToText(resp.Choices[0].Message.Content), nil
}

// BuildPrompt describes the reading and the reader for the model.
func BuildPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Location: %s\n", req.Location)
	fmt.Fprintf(&sb, "AQI: %d (%s), driven by %s\n", req.AQI, aqi.Label(req.AQI), req.Pollutant)
	fmt.Fprintf(&sb, "Reader: %s\n", settings.Describe(req.Persona))
	fmt.Fprintf(&sb, "Sensitivity: %s\n", req.Sensitivity)
	fmt.Fprintf(&sb, "Baseline guidance: %s\n", For(req.AQI, req.Sensitivity))
	sb.WriteString("Rewrite the baseline guidance for this reader.")
	return sb.String()
}
