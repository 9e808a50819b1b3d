// Package player plays mp3 clips and the listening cue on the local speaker.
package player

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const outputRate = beep.SampleRate(44100)

type Player struct {
	cuePath string

	once    sync.Once
	initErr error
	mu      sync.Mutex // one clip at a time
}

func New(cuePath string) *Player {
	return &Player{cuePath: cuePath}
}

func (p *Player) init() error {
	p.once.Do(func() {
		p.initErr = speaker.Init(outputRate, outputRate.N(time.Second/10))
	})
	return p.initErr
}

// Play decodes the mp3 at path and blocks until it finished or ctx is done.
func (p *Player) Play(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	if err := p.init(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var s beep.Streamer = streamer
	if format.SampleRate != outputRate {
		s = beep.Resample(4, format.SampleRate, outputRate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Beep plays the listening cue. A player without a cue stays silent.
func (p *Player) Beep() error {
	if p.cuePath == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Play(ctx, p.cuePath)
}
