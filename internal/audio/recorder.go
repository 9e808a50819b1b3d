package audio

import (
	"context"
	"math"
	"time"

	log "log/slog"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate     = 16000
	frameSize      = 320 // 20ms
	frameDuration  = 20 * time.Millisecond
	minSilenceRMS  = 0.015
	ambientFactor  = 1.8
	calibrateTime  = 300 * time.Millisecond
	trailingSilent = 600 * time.Millisecond
)

type Recorder struct {
	MaxLength time.Duration
}

func NewRecorder() *Recorder { return &Recorder{MaxLength: 10 * time.Second} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record listens on the default input device until the utterance is
// followed by trailing silence, MaxLength is reached or ctx is done. The
// first frames calibrate the silence threshold against the room noise.
func (r *Recorder) Record(ctx context.Context) ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	threshold, err := calibrate(ctx, stream, buf)
	if err != nil {
		return nil, err
	}
	log.Debug("Calibrated ambient noise", "threshold", threshold)

	var (
		speaking      bool
		silenceFrames int
		maxFrames     = int(r.MaxLength / frameDuration)
		stopAfter     = int(trailingSilent / frameDuration)
	)

	for i := 0; i < maxFrames; i++ {
		if ctx.Err() != nil {
			// keep what was heard so far; the caller decides if it is enough
			return out, nil
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > threshold {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}
		if speaking {
			silenceFrames++
			if silenceFrames >= stopAfter {
				break
			}
			out = append(out, buf...)
		}
	}

	return out, nil
}

func calibrate(ctx context.Context, stream *portaudio.Stream, buf []float32) (float64, error) {
	frames := int(calibrateTime / frameDuration)
	var sum float64
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := stream.Read(); err != nil {
			return 0, err
		}
		sum += frameRMS(buf)
	}
	return math.Max(minSilenceRMS, sum/float64(frames)*ambientFactor), nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
