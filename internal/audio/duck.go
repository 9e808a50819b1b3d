package audio

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	percentRe = regexp.MustCompile(`(\d+)\s*%`)
	appNameRe = regexp.MustCompile(`application\.name = "([^"]*)"`)
)

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

// Ducker lowers the volume of other applications' PulseAudio sink inputs
// while the assistant listens, and restores them afterwards. Streams owned by
// selfNames are left alone.
type Ducker struct {
	mu        sync.Mutex
	selfNames map[string]bool
	percent   int
	saved     map[int]int // sink input id -> original volume %

	list func(ctx context.Context) ([]sinkInput, error)
	set  func(ctx context.Context, id, percent int) error
}

func NewDucker(selfNames []string, percent int) *Ducker {
	names := make(map[string]bool, len(selfNames))
	for _, n := range selfNames {
		names[n] = true
	}
	return &Ducker{
		selfNames: names,
		percent:   min(max(percent, 0), 100),
		list:      listSinkInputs,
		set:       setSinkInputVolume,
	}
}

func (d *Ducker) Duck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.saved != nil {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	d.saved = make(map[int]int)
	for _, in := range inputs {
		if d.selfNames[in.AppName] {
			continue
		}
		target := in.Volume * d.percent / 100
		if err := d.set(ctx, in.ID, target); err != nil {
			return fmt.Errorf("duck sink input %d: %w", in.ID, err)
		}
		d.saved[in.ID] = in.Volume
	}
	return nil
}

// Restore puts back the volumes saved by Duck. Streams that disappeared in
// between are skipped.
func (d *Ducker) Restore(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.saved == nil {
		return nil
	}
	saved := d.saved
	d.saved = nil

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		vol, ok := saved[in.ID]
		if !ok {
			continue
		}
		if err := d.set(ctx, in.ID, vol); err != nil {
			return fmt.Errorf("restore sink input %d: %w", in.ID, err)
		}
	}
	return nil
}

func listSinkInputs(ctx context.Context) ([]sinkInput, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}
	return parseSinkInputs(string(out)), nil
}

func parseSinkInputs(text string) []sinkInput {
	var res []sinkInput

	blocks := strings.Split(text, "Sink Input #")
	for _, block := range blocks[1:] {
		header, body, _ := strings.Cut(block, "\n")
		id, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "Volume:") && in.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); m != nil {
					in.Volume, _ = strconv.Atoi(m[1])
				}
			}
			if m := appNameRe.FindStringSubmatch(line); m != nil && in.AppName == "" {
				in.AppName = m[1]
			}
		}
		res = append(res, in)
	}
	return res
}

func setSinkInputVolume(ctx context.Context, id int, percent int) error {
	arg := fmt.Sprintf("%d%%", min(max(percent, 0), 150))
	return exec.CommandContext(ctx, "pactl", "set-sink-input-volume", strconv.Itoa(id), arg).Run()
}
