package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"voxassist/pkg/wavpcm"
)

// OpenAI transcribes through the hosted audio transcription endpoint.
type OpenAI struct {
	client   openai.Client
	model    string
	language string
}

func NewOpenAI(client openai.Client, model, language string) *OpenAI {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &OpenAI{client: client, model: model, language: language}
}

func (o *OpenAI) TranscribePCM(ctx context.Context, pcm16k []float32) (Result, error) {
	if len(pcm16k) == 0 {
		return Result{}, errors.New("no audio samples provided")
	}

	f, err := os.CreateTemp("", "voxassist-*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := wavpcm.Encode16k(f, pcm16k); err != nil {
		return Result{}, fmt.Errorf("encode wav: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("rewind wav: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(f, "speech.wav", "audio/wav"),
		Model: openai.AudioModel(o.model),
	}
	if o.language != "" && o.language != "auto" {
		params.Language = openai.String(o.language)
	}

	res, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Result{}, classify(err)
	}

	return Result{
		Text:     strings.TrimSpace(res.Text),
		Language: o.language,
	}, nil
}

func (o *OpenAI) Close() error { return nil }

// classify maps transport failures onto ErrNetwork; API-level failures keep
// their original error.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("transcription: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return fmt.Errorf("transcription: %w", err)
}
