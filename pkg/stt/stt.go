// Package stt defines the speech-to-text contract shared by the local and
// hosted transcription backends.
package stt

import (
	"context"
	"errors"
)

var (
	// ErrUnrecognized is returned when audio was captured but no words
	// could be mapped from it.
	ErrUnrecognized = errors.New("speech not recognized")

	// ErrNetwork is returned when the transcription service is unreachable.
	ErrNetwork = errors.New("speech service unreachable")
)

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string // detected or forced
}

// Transcriber turns mono 16 kHz float32 PCM in [-1, 1] into text.
type Transcriber interface {
	TranscribePCM(ctx context.Context, pcm16k []float32) (Result, error)
	Close() error
}
