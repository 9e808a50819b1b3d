package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/gen2brain/beeep"
)

// Desktop raises transient OS notifications. It prefers notify-send, which
// honours the timeout, and falls back to beeep elsewhere.
type Desktop struct {
	appName    string
	notifySend string
}

func NewDesktop(appName string) *Desktop {
	d := &Desktop{appName: appName}
	if p, err := exec.LookPath("notify-send"); err == nil {
		d.notifySend = p
	}
	return d
}

func (d *Desktop) Notify(ctx context.Context, title, message string, timeout time.Duration) error {
	if d.notifySend != "" {
		args := []string{
			"--app-name", d.appName,
			"--expire-time", strconv.FormatInt(timeout.Milliseconds(), 10),
			title, message,
		}
		if err := exec.CommandContext(ctx, d.notifySend, args...).Run(); err != nil {
			return fmt.Errorf("notify-send: %w", err)
		}
		return nil
	}

	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("beeep: %w", err)
	}
	return nil
}
