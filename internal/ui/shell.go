// Package ui is the page-based shell: it owns the session state, runs the
// two user actions and serves them over HTTP.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "log/slog"

	"voxassist/internal/notify"
	"voxassist/internal/reminder"
	"voxassist/internal/search"
	"voxassist/pkg/stt"
)

// ErrValidation is returned when required form fields are missing or
// malformed. Nothing is scheduled.
var ErrValidation = errors.New("please enter all the details")

type Capturer interface {
	Capture(ctx context.Context) (string, error)
	CaptureFile(ctx context.Context, path string) (string, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

type Refiner interface {
	Refine(ctx context.Context, transcript string) (string, error)
}

type Scheduler interface {
	Schedule(ctx context.Context, req reminder.Request) (reminder.Receipt, error)
	Lead() time.Duration
}

type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is one line of inline feedback under an action.
type Flash struct {
	Kind FlashKind
	Text string
}

type Form struct {
	Event     string
	Date      string // 2006-01-02
	Time      string // 15:04 or 03:04 PM
	Recipient string
	Location  string
}

type ShellConfig struct {
	Session   *Session
	Capturer  Capturer
	Searcher  Searcher
	Refiner   Refiner // optional
	Scheduler Scheduler
	Location  *time.Location
}

// Shell runs one action at a time, like a single-threaded UI loop.
type Shell struct {
	mu sync.Mutex

	session   *Session
	capture   Capturer
	search    Searcher
	refiner   Refiner
	scheduler Scheduler
	loc       *time.Location
}

func NewShell(cfg ShellConfig) *Shell {
	s := &Shell{
		session:   cfg.Session,
		capture:   cfg.Capturer,
		search:    cfg.Searcher,
		refiner:   cfg.Refiner,
		scheduler: cfg.Scheduler,
		loc:       cfg.Location,
	}
	if s.session == nil {
		s.session = NewSession()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

func (s *Shell) Session() *Session { return s.session }

// VoiceSearch listens on the microphone and searches for what was heard.
func (s *Shell) VoiceSearch(ctx context.Context) ([]Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.capture.Capture(ctx)
	if err != nil {
		return captureFlashes(err), err
	}
	return s.searchFor(ctx, text)
}

// UploadSearch is VoiceSearch for a recording uploaded through the page.
func (s *Shell) UploadSearch(ctx context.Context, path string) ([]Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.capture.CaptureFile(ctx, path)
	if err != nil {
		return captureFlashes(err), err
	}
	return s.searchFor(ctx, text)
}

func (s *Shell) searchFor(ctx context.Context, transcript string) ([]Flash, error) {
	query := transcript
	if s.refiner != nil {
		refined, err := s.refiner.Refine(ctx, transcript)
		if err != nil {
			log.Warn("Failed to refine query, using transcript", "err", err)
		} else {
			query = refined
		}
	}

	flashes := []Flash{{FlashInfo, "Searching for: " + query}}

	res, err := s.search.Search(ctx, query)
	switch {
	case err != nil:
		return append(flashes, Flash{FlashError, "Failed to open the browser: " + err.Error()}), err
	case res.Skipped:
		return append(flashes, Flash{FlashInfo, "Nothing to search for."}), nil
	}
	return append(flashes, Flash{FlashSuccess, "Opened the search results in your browser."}), nil
}

func captureFlashes(err error) []Flash {
	switch {
	case errors.Is(err, stt.ErrUnrecognized):
		return []Flash{{FlashError, "Could not understand. Try again."}}
	case errors.Is(err, stt.ErrNetwork):
		return []Flash{{FlashError, "Network error."}}
	case errors.Is(err, context.DeadlineExceeded):
		return []Flash{{FlashError, "Stopped listening: no speech before the timeout."}}
	}
	return []Flash{{FlashError, "Voice capture failed: " + err.Error()}}
}

// SetReminder validates the form, records it in the session list and
// schedules it.
func (s *Shell) SetReminder(ctx context.Context, f Form) ([]Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := strings.TrimSpace(f.Event)
	recipient := strings.TrimSpace(f.Recipient)
	if event == "" || recipient == "" {
		return []Flash{{FlashError, "Please enter all the details."}}, ErrValidation
	}

	eventAt, err := ParseWhen(f.Date, f.Time, s.loc)
	if err != nil {
		return []Flash{{FlashError, "Please enter a valid date and time."}}, err
	}

	s.session.Add(Entry{Event: event, EventAt: eventAt, Recipient: recipient})

	receipt, err := s.scheduler.Schedule(ctx, reminder.Request{
		Event:     event,
		EventAt:   eventAt,
		Recipient: recipient,
		Location:  strings.TrimSpace(f.Location),
	})
	if errors.Is(err, reminder.ErrPastTime) {
		return []Flash{{FlashError, "Cannot set a reminder for a past time."}}, err
	}
	if err != nil {
		return []Flash{{FlashError, "Failed to set reminder: " + err.Error()}}, err
	}

	r := receipt.Reminder
	flashes := []Flash{{FlashSuccess, fmt.Sprintf(
		"Reminder set: %s at %s. You will be notified %s before at %s.",
		r.Event, reminder.FormatWhen(r.EventAt), reminder.FormatLead(s.scheduler.Lead()), r.Location,
	)}}

	var emailErr *notify.EmailError
	switch {
	case receipt.ConfirmationErr == nil:
		flashes = append(flashes, Flash{FlashSuccess, "Email sent successfully!"})
	case errors.As(receipt.ConfirmationErr, &emailErr) && emailErr.Details != "":
		flashes = append(flashes, Flash{FlashError, "Failed to send email: " + emailErr.Details})
	default:
		flashes = append(flashes, Flash{FlashError, "Failed to send email: " + receipt.ConfirmationErr.Error()})
	}
	return flashes, nil
}

var clockLayouts = []string{"15:04", "15:04:05", "03:04 PM", "3:04 PM", "03:04PM", "3:04PM"}

// ParseWhen combines a date input and a time input in loc.
func ParseWhen(date, clock string, loc *time.Location) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range clockLayouts {
		t, err := time.ParseInLocation("2006-01-02 "+layout, date+" "+clock, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q or time %q", ErrValidation, date, clock)
}
