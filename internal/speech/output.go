package speech

import (
	"context"
	"fmt"
	"os"
	"sync"

	log "log/slog"

	"github.com/google/uuid"

	"voxassist/internal/clip"
	"voxassist/internal/tts"
)

type Player interface {
	Play(ctx context.Context, path string) error
}

type SpeakerConfig struct {
	Synthesizer tts.Synthesizer
	Player      Player // nil disables local playback
	Status      Reporter
	Dir         string // temp dir for clips, "" = os.TempDir()
}

type Speaker struct {
	synth  tts.Synthesizer
	player Player
	status Reporter
	dir    string

	mu    sync.RWMutex
	clips map[string]clip.Clip
}

func NewSpeaker(cfg SpeakerConfig) *Speaker {
	s := &Speaker{
		synth:  cfg.Synthesizer,
		player: cfg.Player,
		status: cfg.Status,
		dir:    cfg.Dir,
		clips:  make(map[string]clip.Clip),
	}
	if s.status == nil {
		s.status = nopReporter{}
	}
	return s
}

// Speak synthesizes text into a temp file, exposes it to the page and plays
// it locally. The file is left to the OS temp dir lifecycle.
func (s *Speaker) Speak(ctx context.Context, text string) (clip.Clip, error) {
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("synthesize: %w", err)
	}

	c := clip.Clip{ID: uuid.NewString(), Text: text, Format: audio.Format}
	if len(audio.Data) == 0 {
		return c, nil
	}

	f, err := os.CreateTemp(s.dir, "voxassist-*."+audio.Format)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("create clip: %w", err)
	}
	if _, err := f.Write(audio.Data); err != nil {
		f.Close()
		return clip.Clip{}, fmt.Errorf("write clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return clip.Clip{}, fmt.Errorf("close clip: %w", err)
	}
	c.Path = f.Name()

	s.mu.Lock()
	s.clips[c.ID] = c
	s.mu.Unlock()

	s.status.Report("clip", c.URL())
	clip.Collect(ctx, c)

	if s.player != nil {
		if err := s.player.Play(ctx, c.Path); err != nil {
			log.Warn("Failed to play clip", "clip", c.ID, "err", err)
		}
	}

	return c, nil
}

// Announce is Speak for callers that treat speech as a side effect.
func (s *Speaker) Announce(ctx context.Context, text string) {
	if _, err := s.Speak(ctx, text); err != nil {
		log.Error("Failed to voice out", "text", text, "err", err)
	}
}

func (s *Speaker) Clip(id string) (clip.Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clips[id]
	return c, ok
}
