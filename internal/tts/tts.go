// Package tts wraps hosted text-to-speech behind a small Synthesizer
// interface.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"
)

// Audio is a synthesized clip. Engines that play the speech themselves
// return an Audio with no Data.
type Audio struct {
	Data   []byte
	Format string // e.g. "mp3"
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

type OpenAI struct {
	client openai.Client
	model  string
	voice  string
}

func NewOpenAI(client openai.Client, model, voice string) *OpenAI {
	if model == "" {
		model = string(openai.SpeechModelTTS1)
	}
	if voice == "" {
		voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}
	return &OpenAI{client: client, model: model, voice: voice}
}

func (o *OpenAI) Synthesize(ctx context.Context, text string) (*Audio, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}

	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(o.model),
		Voice:          openai.AudioSpeechNewParamsVoice(o.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty speech response")
	}

	return &Audio{Data: data, Format: "mp3"}, nil
}
