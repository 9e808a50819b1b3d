package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnnouncer struct {
	said []string
}

func (f *fakeAnnouncer) Announce(_ context.Context, text string) {
	f.said = append(f.said, text)
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/search?q=rust+programming", BuildURL("rust programming"))
	assert.Equal(t, "https://www.google.com/search?q=go", BuildURL("  go "))
	assert.Equal(t, "https://www.google.com/search?q=c%2B%2B+%26+go", BuildURL("c++ & go"))
}

func TestSearch_OpensAndAnnounces(t *testing.T) {
	var opened []string
	voice := &fakeAnnouncer{}
	s := New(voice, func(u string) error {
		opened = append(opened, u)
		return nil
	})

	res, err := s.Search(context.Background(), "rust programming")
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "rust programming", res.Query)
	assert.Equal(t, []string{"https://www.google.com/search?q=rust+programming"}, opened)
	assert.Equal(t, []string{"Searching Google for rust programming."}, voice.said)
}

func TestSearch_EmptyQueryIsNoop(t *testing.T) {
	voice := &fakeAnnouncer{}
	s := New(voice, func(string) error {
		t.Fatal("browser must not be opened for an empty query")
		return nil
	})

	for _, q := range []string{"", "   "} {
		res, err := s.Search(context.Background(), q)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	}
	assert.Empty(t, voice.said)
}

func TestSearch_BrowserFailure(t *testing.T) {
	voice := &fakeAnnouncer{}
	s := New(voice, func(string) error { return errors.New("no display") })

	_, err := s.Search(context.Background(), "weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Empty(t, voice.said)
}
