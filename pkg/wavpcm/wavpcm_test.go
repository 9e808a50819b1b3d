package wavpcm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode16k(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, Encode16k(f, []float32{0, 0.5, -0.5, 2}))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, Rate, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	// out of range samples are clamped
	assert.Equal(t, []int{0, 16383, -16383, 32767}, buf.Data)
}
