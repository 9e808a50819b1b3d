package reminder

import (
	"context"
	"fmt"
	"time"

	log "log/slog"

	"github.com/google/uuid"

	"voxassist/internal/metrics"
)

const (
	emailSubject  = "Reminder Notification"
	desktopTitle  = "Reminder!"
	desktopExpiry = 10 * time.Second
)

type Mailer interface {
	Send(ctx context.Context, subject, body, recipient string) error
}

type Notifier interface {
	Notify(ctx context.Context, title, message string, timeout time.Duration) error
}

type Announcer interface {
	Announce(ctx context.Context, text string)
}

type ServiceConfig struct {
	Scheduler *Scheduler
	Mailer    Mailer
	Desktop   Notifier
	Voice     Announcer
	Lead      time.Duration
	Now       func() time.Time
}

type Service struct {
	sched *Scheduler
	mail  Mailer
	desk  Notifier
	voice Announcer
	lead  time.Duration
	now   func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		sched: cfg.Scheduler,
		mail:  cfg.Mailer,
		desk:  cfg.Desktop,
		voice: cfg.Voice,
		lead:  cfg.Lead,
		now:   cfg.Now,
	}
	if s.lead <= 0 {
		s.lead = DefaultLead
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sched == nil {
		s.sched = NewScheduler(s.now)
	}
	return s
}

func (s *Service) Scheduler() *Scheduler { return s.sched }

func (s *Service) Lead() time.Duration { return s.lead }

// Schedule registers a reminder fired Lead before req.EventAt and sends the
// confirmation email right away. A fire time at or before now is rejected
// with ErrPastTime and has no side effects.
func (s *Service) Schedule(ctx context.Context, req Request) (Receipt, error) {
	now := s.now()
	fireAt := req.EventAt.Add(-s.lead)
	if !fireAt.After(now) {
		metrics.Reminders.WithLabelValues("rejected").Inc()
		return Receipt{}, ErrPastTime
	}

	r := Reminder{
		ID:        uuid.New(),
		Event:     req.Event,
		EventAt:   req.EventAt,
		FireAt:    fireAt,
		Recipient: req.Recipient,
		Location:  req.Location,
		CreatedAt: now,
	}
	s.sched.Register(r, s.fire)
	metrics.Reminders.WithLabelValues("scheduled").Inc()
	log.Info("Reminder set", "event", r.Event, "event_at", r.EventAt, "fire_at", r.FireAt)

	receipt := Receipt{Reminder: r}
	body := fmt.Sprintf("Upcoming event: %s at %s", r.Event, r.EventAt.Format(time.DateTime))
	if err := s.mail.Send(ctx, emailSubject, body, r.Recipient); err != nil {
		receipt.ConfirmationErr = err
	}
	return receipt, nil
}

// fire runs the three side effects in order. Each one may fail on its own;
// a failure is logged and the next step still runs.
func (s *Service) fire(ctx context.Context, r Reminder) {
	metrics.Reminders.WithLabelValues("fired").Inc()
	when := FormatWhen(r.EventAt)

	if s.desk != nil {
		msg := fmt.Sprintf("%s at %s at %s", r.Event, when, r.Location)
		if err := s.desk.Notify(ctx, desktopTitle, msg, desktopExpiry); err != nil {
			log.Warn("Failed to raise desktop notification", "id", r.ID, "err", err)
		}
	}

	if s.voice != nil {
		s.voice.Announce(ctx, fmt.Sprintf("Reminder! %s is in %s. Meeting Location: %s",
			r.Event, FormatLead(s.lead), r.Location))
	}

	if err := s.mail.Send(ctx, emailSubject, reminderBody(r, when, s.lead), r.Recipient); err != nil {
		log.Warn("Failed to send reminder email", "id", r.ID, "err", err)
	}
}

func reminderBody(r Reminder, when string, lead time.Duration) string {
	return fmt.Sprintf(`Hello,

Just a reminder that you have "%s" scheduled for %s.

Location / Link: %s

This is an automated reminder %s before your event.

- Voice Assistant
`, r.Event, when, r.Location, FormatLead(lead))
}
