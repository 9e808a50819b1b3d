package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxassist/internal/clip"
	"voxassist/internal/tts"
)

type fakeSynth struct {
	audio *tts.Audio
	err   error
}

func (s fakeSynth) Synthesize(context.Context, string) (*tts.Audio, error) { return s.audio, s.err }

type fakePlayer struct {
	played []string
	err    error
}

func (p *fakePlayer) Play(_ context.Context, path string) error {
	p.played = append(p.played, path)
	return p.err
}

func TestSpeak(t *testing.T) {
	dir := t.TempDir()
	status := &statusLog{}
	player := &fakePlayer{err: errors.New("no speaker")}

	s := NewSpeaker(SpeakerConfig{
		Synthesizer: fakeSynth{audio: &tts.Audio{Data: []byte("ID3mp3"), Format: "mp3"}},
		Player:      player,
		Status:      status,
		Dir:         dir,
	})

	ctx, col := clip.WithCollector(context.Background())
	c, err := s.Speak(ctx, "Searching Google for go.")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(c.Path))
	assert.True(t, strings.HasSuffix(c.Path, ".mp3"))
	data, err := os.ReadFile(c.Path)
	require.NoError(t, err)
	assert.Equal(t, "ID3mp3", string(data))

	assert.Equal(t, []string{c.Path}, player.played)
	assert.Equal(t, []string{"clip"}, status.kinds)
	assert.Equal(t, []string{"/clips/" + c.ID}, status.texts)
	assert.Equal(t, []string{"/clips/" + c.ID}, col.URLs())

	got, ok := s.Clip(c.ID)
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestSpeak_DirectEngine(t *testing.T) {
	status := &statusLog{}
	player := &fakePlayer{}
	s := NewSpeaker(SpeakerConfig{
		Synthesizer: fakeSynth{audio: &tts.Audio{}},
		Player:      player,
		Status:      status,
	})

	ctx, col := clip.WithCollector(context.Background())
	c, err := s.Speak(ctx, "hello")
	require.NoError(t, err)
	assert.Empty(t, c.Path)
	assert.Empty(t, col.URLs())
	assert.Empty(t, player.played)
	assert.Empty(t, status.kinds)
}

func TestAnnounce_SwallowsErrors(t *testing.T) {
	s := NewSpeaker(SpeakerConfig{Synthesizer: fakeSynth{err: errors.New("quota")}})

	assert.NotPanics(t, func() { s.Announce(context.Background(), "hello") })
	_, ok := s.Clip("missing")
	assert.False(t, ok)
}
