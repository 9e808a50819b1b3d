package reminder

import (
	"context"
	"sort"
	"sync"
	"time"

	log "log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"voxassist/internal/metrics"
)

// Job is the callback bound to a reminder.
type Job func(ctx context.Context, r Reminder)

type pendingJob struct {
	reminder Reminder
	run      Job
}

// Scheduler keeps pending jobs keyed by their absolute fire time. RunDue is
// the poll step; Start drives it every second from a cron entry. A job runs
// at most once and is discarded before it runs.
type Scheduler struct {
	mu      sync.Mutex
	pending map[uuid.UUID]pendingJob

	now      func() time.Time
	cron     *cron.Cron
	stopOnce sync.Once
}

// cronLogger routes cron's own messages through slog. Its per-tick info
// messages are demoted to debug.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	logger := cronLogger{}
	return &Scheduler{
		pending: make(map[uuid.UUID]pendingJob),
		now:     now,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
	}
}

func (s *Scheduler) Register(r Reminder, run Job) {
	s.mu.Lock()
	s.pending[r.ID] = pendingJob{reminder: r, run: run}
	n := len(s.pending)
	s.mu.Unlock()

	metrics.PendingReminders.Set(float64(n))
	log.Debug("Registered reminder", "id", r.ID, "fire_at", r.FireAt)
}

// RunDue runs every job whose fire time is at or before now and returns how
// many ran. Jobs run outside the lock so they may register new reminders.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var due []pendingJob
	for id, j := range s.pending {
		if !j.reminder.FireAt.After(now) {
			due = append(due, j)
			delete(s.pending, id)
		}
	}
	n := len(s.pending)
	s.mu.Unlock()

	if len(due) == 0 {
		return 0
	}
	metrics.PendingReminders.Set(float64(n))

	sort.Slice(due, func(i, j int) bool {
		return due[i].reminder.FireAt.Before(due[j].reminder.FireAt)
	})
	for _, j := range due {
		log.Info("Firing reminder", "id", j.reminder.ID, "event", j.reminder.Event)
		j.run(ctx, j.reminder)
	}
	return len(due)
}

// Pending lists the reminders that have not fired yet, soonest first.
func (s *Scheduler) Pending() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reminder, 0, len(s.pending))
	for _, j := range s.pending {
		out = append(out, j.reminder)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

// Start begins polling. The loop stops with ctx or Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("@every 1s", func() {
		s.RunDue(ctx, s.now())
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Info("Reminder scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running poll to finish. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		log.Info("Reminder scheduler stopped")
	})
}
