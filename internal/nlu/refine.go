// Package nlu turns a spoken transcript into a clean search query.
package nlu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "log/slog"

	openai "github.com/openai/openai-go/v3"
)

const systemPrompt = `
You turn a spoken request into a web search query.

RULES:
1. Output ONLY the search terms. No quotes, no markdown, no explanations.
2. Drop filler and command words: "search for", "google", "look up", "can you", "please", "um".
3. Keep names, places, numbers and dates exactly as spoken.
4. Do NOT answer the question.
5. If nothing remains to search for, output an empty line.
`

var ErrEmpty = errors.New("empty refinement")

type Refiner struct {
	client openai.Client
	model  string
}

func NewRefiner(client openai.Client, model string) *Refiner {
	if model == "" {
		model = string(openai.ChatModelGPT5Nano)
	}
	return &Refiner{client: client, model: model}
}

// Refine returns the search terms found in transcript. An empty model reply
// is ErrEmpty so callers can fall back to the raw transcript.
func (r *Refiner) Refine(ctx context.Context, transcript string) (string, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(transcript),
		},
		Model: openai.ChatModel(r.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	query := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"'`)
	if query == "" {
		return "", ErrEmpty
	}

	log.Debug("Refined query", "transcript", transcript, "query", query)
	return query, nil
}
