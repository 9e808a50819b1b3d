// Package clip describes synthesized speech clips and collects the ones
// produced while serving a single request.
package clip

import (
	"context"
	"sync"
)

// Clip is one synthesized utterance. Path is empty when the engine spoke
// directly without producing a file.
type Clip struct {
	ID     string
	Path   string
	Format string
	Text   string
}

// URL is where the page fetches the clip from.
func (c Clip) URL() string { return "/clips/" + c.ID }

// Collector gathers the URLs of clips spoken during one action.
type Collector struct {
	mu   sync.Mutex
	urls []string
}

type collectorKey struct{}

func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// Collect records c on the collector carried by ctx, if any. Clips without
// a file are skipped.
func Collect(ctx context.Context, c Clip) {
	col, ok := ctx.Value(collectorKey{}).(*Collector)
	if !ok || c.Path == "" {
		return
	}
	col.mu.Lock()
	col.urls = append(col.urls, c.URL())
	col.mu.Unlock()
}

func (c *Collector) URLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.urls...)
}
