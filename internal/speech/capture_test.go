package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxassist/pkg/audioconv"
	"voxassist/pkg/stt"
	"voxassist/pkg/wavpcm"
)

type statusLog struct {
	kinds []string
	texts []string
}

func (s *statusLog) Report(kind, text string) {
	s.kinds = append(s.kinds, kind)
	s.texts = append(s.texts, text)
}

type fakeRecorder struct {
	pcm  []float32
	err  error
	wait bool
}

func (r *fakeRecorder) Record(ctx context.Context) ([]float32, error) {
	if r.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.pcm, r.err
}

type fakeTranscriber struct {
	res  stt.Result
	err  error
	got  []float32
	seen int
}

func (t *fakeTranscriber) TranscribePCM(_ context.Context, pcm []float32) (stt.Result, error) {
	t.seen++
	t.got = pcm
	return t.res, t.err
}

func (t *fakeTranscriber) Close() error { return nil }

type fakeDucker struct {
	calls []string
}

func (d *fakeDucker) Duck(context.Context) error {
	d.calls = append(d.calls, "duck")
	return nil
}

func (d *fakeDucker) Restore(context.Context) error {
	d.calls = append(d.calls, "restore")
	return errors.New("pactl missing")
}

type fakeCue struct{ beeps int }

func (c *fakeCue) Beep() error {
	c.beeps++
	return errors.New("no sound card")
}

func TestCapture(t *testing.T) {
	status := &statusLog{}
	cue := &fakeCue{}
	ducker := &fakeDucker{}
	tr := &fakeTranscriber{res: stt.Result{Text: " [BLANK_AUDIO] Weather in  PARIS (wind) "}}

	c := NewCapturer(CaptureConfig{
		Recorder:    &fakeRecorder{pcm: make([]float32, 1600)},
		Transcriber: tr,
		Status:      status,
		Cue:         cue,
		Ducker:      ducker,
	})

	text, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "weather in paris", text)

	assert.Equal(t, 1, cue.beeps)
	assert.Equal(t, []string{"duck", "restore"}, ducker.calls)
	assert.Equal(t, []string{"Listening...", "weather in paris"}, status.texts)
	assert.Len(t, tr.got, 1600)
}

func TestCapture_Unrecognized(t *testing.T) {
	for name, tc := range map[string]struct {
		pcm  []float32
		text string
	}{
		"silence":     {pcm: nil},
		"blank audio": {pcm: make([]float32, 10), text: "[BLANK_AUDIO]"},
		"whitespace":  {pcm: make([]float32, 10), text: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			status := &statusLog{}
			c := NewCapturer(CaptureConfig{
				Recorder:    &fakeRecorder{pcm: tc.pcm},
				Transcriber: &fakeTranscriber{res: stt.Result{Text: tc.text}},
				Status:      status,
			})

			_, err := c.Capture(context.Background())
			require.ErrorIs(t, err, stt.ErrUnrecognized)
			assert.Equal(t, "Could not understand. Try again.", status.texts[len(status.texts)-1])
		})
	}
}

func TestCapture_Network(t *testing.T) {
	status := &statusLog{}
	c := NewCapturer(CaptureConfig{
		Recorder:    &fakeRecorder{pcm: make([]float32, 10)},
		Transcriber: &fakeTranscriber{err: fmt.Errorf("%w: dial tcp: refused", stt.ErrNetwork)},
		Status:      status,
	})

	_, err := c.Capture(context.Background())
	require.ErrorIs(t, err, stt.ErrNetwork)
	assert.Equal(t, "Network error.", status.texts[len(status.texts)-1])
}

func TestCapture_RecorderError(t *testing.T) {
	tr := &fakeTranscriber{}
	c := NewCapturer(CaptureConfig{
		Recorder:    &fakeRecorder{err: errors.New("device busy")},
		Transcriber: tr,
	})

	_, err := c.Capture(context.Background())
	require.ErrorContains(t, err, "device busy")
	assert.Zero(t, tr.seen)
}

func TestCapture_Timeout(t *testing.T) {
	c := NewCapturer(CaptureConfig{
		Recorder:    &fakeRecorder{wait: true},
		Transcriber: &fakeTranscriber{},
		Timeout:     20 * time.Millisecond,
	})

	_, err := c.Capture(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCaptureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wavpcm.Encode16k(f, make([]float32, 8000)))
	require.NoError(t, f.Close())

	tr := &fakeTranscriber{res: stt.Result{Text: "Golang"}}
	c := NewCapturer(CaptureConfig{Transcriber: tr})

	text, err := c.CaptureFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "golang", text)
	assert.Len(t, tr.got, 8000)
}

func TestCaptureFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	c := NewCapturer(CaptureConfig{Transcriber: &fakeTranscriber{}})
	_, err := c.CaptureFile(context.Background(), path)
	assert.ErrorIs(t, err, audioconv.ErrUnsupported)
}

func TestCleanTranscript(t *testing.T) {
	assert.Equal(t, "hello world", CleanTranscript("  Hello   World "))
	assert.Equal(t, "", CleanTranscript("[BLANK_AUDIO]"))
	assert.Equal(t, "play jazz", CleanTranscript("(music) Play [noise] jazz"))
}
