// Package reminder schedules one-shot event reminders and fans each one out
// to a desktop notification, a spoken announcement and an email.
package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultLead = 30 * time.Minute

// ErrPastTime rejects a reminder whose fire time is not in the future.
var ErrPastTime = errors.New("cannot set a reminder for a past time")

type State int

const (
	Pending State = iota
	Fired
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Reminder struct {
	ID        uuid.UUID
	Event     string
	EventAt   time.Time
	FireAt    time.Time
	Recipient string
	Location  string
	CreatedAt time.Time
}

type Request struct {
	Event     string
	EventAt   time.Time
	Recipient string
	Location  string
}

// Receipt describes a scheduled reminder. ConfirmationErr is set when the
// immediate confirmation email failed; the reminder stays scheduled.
type Receipt struct {
	Reminder        Reminder
	ConfirmationErr error
}

const whenLayout = "03:04 PM on January 02, 2006"

// FormatWhen renders t like "09:30 AM on March 04, 2026".
func FormatWhen(t time.Time) string {
	return t.Format(whenLayout)
}

// FormatLead renders a lead time for messages, e.g. "30 minutes".
func FormatLead(d time.Duration) string {
	if d%time.Hour == 0 && d >= 2*time.Hour {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	if d == time.Hour {
		return "1 hour"
	}
	if d == time.Minute {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
