package reminder

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	log "log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminder(fireAt time.Time) Reminder {
	return Reminder{ID: uuid.New(), Event: "standup", FireAt: fireAt, EventAt: fireAt.Add(DefaultLead)}
}

func TestScheduler_RunDueFiresOnce(t *testing.T) {
	base := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	s := NewScheduler(nil)

	var fired int
	s.Register(newReminder(base), func(context.Context, Reminder) { fired++ })

	assert.Equal(t, 0, s.RunDue(context.Background(), base.Add(-time.Second)))
	assert.Equal(t, 0, fired)
	assert.Len(t, s.Pending(), 1)

	assert.Equal(t, 1, s.RunDue(context.Background(), base))
	assert.Equal(t, 1, fired)
	assert.Empty(t, s.Pending())

	assert.Equal(t, 0, s.RunDue(context.Background(), base.Add(time.Second)))
	assert.Equal(t, 1, fired)
}

func TestScheduler_KeyedByAbsoluteTime(t *testing.T) {
	base := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	s := NewScheduler(nil)

	var fired int
	s.Register(newReminder(base.Add(24*time.Hour)), func(context.Context, Reminder) { fired++ })

	// same time of day, one day early
	assert.Equal(t, 0, s.RunDue(context.Background(), base))

	assert.Equal(t, 1, s.RunDue(context.Background(), base.Add(24*time.Hour)))
	// the following day at the same clock time nothing recurs
	assert.Equal(t, 0, s.RunDue(context.Background(), base.Add(48*time.Hour)))
	assert.Equal(t, 1, fired)
}

func TestScheduler_RunsDueInFireOrder(t *testing.T) {
	base := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	s := NewScheduler(nil)

	var order []string
	for _, ev := range []struct {
		name string
		at   time.Time
	}{
		{"late", base.Add(2 * time.Minute)},
		{"early", base},
		{"future", base.Add(time.Hour)},
		{"middle", base.Add(time.Minute)},
	} {
		r := newReminder(ev.at)
		r.Event = ev.name
		s.Register(r, func(_ context.Context, r Reminder) { order = append(order, r.Event) })
	}

	pending := s.Pending()
	require.Len(t, pending, 4)
	assert.Equal(t, "early", pending[0].Event)
	assert.Equal(t, "future", pending[3].Event)

	assert.Equal(t, 3, s.RunDue(context.Background(), base.Add(5*time.Minute)))
	assert.Equal(t, []string{"early", "middle", "late"}, order)
	assert.Len(t, s.Pending(), 1)
}

func TestScheduler_ConcurrentRegisterAndPoll(t *testing.T) {
	base := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	s := NewScheduler(nil)

	var fired atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Register(newReminder(base), func(context.Context, Reminder) { fired.Add(1) })
		}()
		go func() {
			defer wg.Done()
			s.RunDue(context.Background(), base)
		}()
	}
	wg.Wait()
	s.RunDue(context.Background(), base)

	assert.Equal(t, int64(50), fired.Load())
	assert.Empty(t, s.Pending())
}

func TestScheduler_StartPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(time.Now)
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	var fired atomic.Int64
	s.Register(newReminder(time.Now().Add(200*time.Millisecond)), func(context.Context, Reminder) {
		fired.Add(1)
	})

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 5*time.Second, 50*time.Millisecond)
}

func TestCronLogger_UsesSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(log.NewTextHandler(&buf, &log.HandlerOptions{Level: log.LevelDebug})))
	defer log.SetDefault(prev)

	var logger cron.Logger = cronLogger{}
	logger.Info("skip", "entry", 1)
	logger.Error(errors.New("boom"), "panic", "entry", 2)

	out := buf.String()
	assert.Contains(t, out, `level=DEBUG msg="cron: skip" entry=1`)
	assert.Contains(t, out, `level=ERROR msg="cron: panic" entry=2 err=boom`)
}
