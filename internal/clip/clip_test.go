package clip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	ctx, col := WithCollector(context.Background())

	Collect(ctx, Clip{ID: "a", Path: "/tmp/a.mp3"})
	Collect(ctx, Clip{ID: "direct"})
	Collect(ctx, Clip{ID: "b", Path: "/tmp/b.mp3"})

	assert.Equal(t, []string{"/clips/a", "/clips/b"}, col.URLs())
}

func TestCollect_NoCollector(t *testing.T) {
	assert.NotPanics(t, func() {
		Collect(context.Background(), Clip{ID: "a", Path: "/tmp/a.mp3"})
	})
}
