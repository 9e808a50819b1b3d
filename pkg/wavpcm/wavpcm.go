// Package wavpcm writes mono 16 kHz float32 PCM as a WAV file.
package wavpcm

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const Rate = 16000

// Encode16k writes pcm as a 16-bit mono 16 kHz WAV file.
func Encode16k(w io.WriteSeeker, pcm []float32) error {
	ints := make([]int, len(pcm))
	for i, v := range pcm {
		ints[i] = int(math.Max(-1, math.Min(1, float64(v))) * 32767)
	}

	enc := wav.NewEncoder(w, Rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: Rate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
