// Package search opens a Google search for a spoken query in the default
// browser.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	log "log/slog"

	"github.com/pkg/browser"

	"voxassist/internal/metrics"
)

const GoogleURL = "https://www.google.com/search"

type Announcer interface {
	Announce(ctx context.Context, text string)
}

type Result struct {
	Query   string
	URL     string
	Skipped bool
}

type Searcher struct {
	open  func(url string) error
	voice Announcer
}

// New returns a Searcher. A nil open uses the system browser.
func New(voice Announcer, open func(string) error) *Searcher {
	if open == nil {
		open = browser.OpenURL
	}
	return &Searcher{open: open, voice: voice}
}

// BuildURL encodes query as the q parameter; spaces become '+'.
func BuildURL(query string) string {
	return GoogleURL + "?q=" + url.QueryEscape(strings.TrimSpace(query))
}

// Search opens the results page for query and announces it. An empty query
// is a no-op and returns a Skipped result without error.
func (s *Searcher) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	log.Info("Searching", "query", query)

	if query == "" {
		metrics.Searches.WithLabelValues("skipped").Inc()
		return Result{Skipped: true}, nil
	}

	u := BuildURL(query)
	if err := s.open(u); err != nil {
		metrics.Searches.WithLabelValues("failed").Inc()
		return Result{Query: query, URL: u}, fmt.Errorf("open browser: %w", err)
	}
	metrics.Searches.WithLabelValues("opened").Inc()

	if s.voice != nil {
		s.voice.Announce(ctx, fmt.Sprintf("Searching Google for %s.", query))
	}

	return Result{Query: query, URL: u}, nil
}
