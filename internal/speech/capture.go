package speech

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	log "log/slog"

	"voxassist/internal/metrics"
	"voxassist/pkg/audioconv"
	"voxassist/pkg/stt"
)

type Recorder interface {
	Record(ctx context.Context) ([]float32, error)
}

type Ducker interface {
	Duck(ctx context.Context) error
	Restore(ctx context.Context) error
}

type Cue interface {
	Beep() error
}

type CaptureConfig struct {
	Recorder    Recorder
	Transcriber stt.Transcriber
	Status      Reporter
	Cue         Cue    // optional
	Ducker      Ducker // optional
	Timeout     time.Duration
}

type Capturer struct {
	rec     Recorder
	tr      stt.Transcriber
	status  Reporter
	cue     Cue
	ducker  Ducker
	timeout time.Duration
}

func NewCapturer(cfg CaptureConfig) *Capturer {
	c := &Capturer{
		rec:     cfg.Recorder,
		tr:      cfg.Transcriber,
		status:  cfg.Status,
		cue:     cfg.Cue,
		ducker:  cfg.Ducker,
		timeout: cfg.Timeout,
	}
	if c.status == nil {
		c.status = nopReporter{}
	}
	if c.timeout <= 0 {
		c.timeout = 15 * time.Second
	}
	return c
}

// Capture records one utterance from the microphone and returns its
// lowercase transcript, stt.ErrUnrecognized or stt.ErrNetwork.
func (c *Capturer) Capture(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.status.Report("listening", "Listening...")
	if c.cue != nil {
		if err := c.cue.Beep(); err != nil {
			log.Warn("Failed to play cue", "err", err)
		}
	}

	if c.ducker != nil {
		if err := c.ducker.Duck(ctx); err != nil {
			log.Warn("Failed to duck other streams", "err", err)
		}
		defer func() {
			rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer rcancel()
			if err := c.ducker.Restore(rctx); err != nil {
				log.Warn("Failed to restore other streams", "err", err)
			}
		}()
	}

	pcm, err := c.rec.Record(ctx)
	if err != nil {
		metrics.Captures.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("record: %w", err)
	}
	log.Info("Recorded", "samples", len(pcm))

	return c.transcribe(ctx, pcm)
}

// CaptureFile transcribes an uploaded recording instead of the microphone.
func (c *Capturer) CaptureFile(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout*4)
	defer cancel()

	c.status.Report("listening", "Transcribing upload...")

	pcm, err := audioconv.ConvertFileToPCM16k(ctx, path, audioconv.Options{
		MaxSamples: audioconv.TargetRate * 120,
	})
	if err != nil {
		metrics.Captures.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("convert upload: %w", err)
	}

	return c.transcribe(ctx, pcm)
}

func (c *Capturer) transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		metrics.Captures.WithLabelValues("unrecognized").Inc()
		c.status.Report("error", "Could not understand. Try again.")
		return "", stt.ErrUnrecognized
	}

	res, err := c.tr.TranscribePCM(ctx, pcm)
	switch {
	case errors.Is(err, stt.ErrNetwork):
		metrics.Captures.WithLabelValues("network").Inc()
		c.status.Report("error", "Network error.")
		return "", err
	case err != nil:
		metrics.Captures.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := CleanTranscript(res.Text)
	if text == "" {
		metrics.Captures.WithLabelValues("unrecognized").Inc()
		c.status.Report("error", "Could not understand. Try again.")
		return "", stt.ErrUnrecognized
	}

	metrics.Captures.WithLabelValues("ok").Inc()
	log.Info("Transcribed", "text", text, "lang", res.Language)
	c.status.Report("transcript", text)
	return text, nil
}

// whisper marks non-speech as [BLANK_AUDIO], (music) and the like
var annotationRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

func CleanTranscript(s string) string {
	s = annotationRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
