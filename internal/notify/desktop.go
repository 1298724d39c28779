package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/sandeepkv93/nagd/internal/model"
)

const appName = "nagd"

// Desktop posts reminders through the platform notifier. A disabled sink,
// an unsupported platform or a missing notifier binary all make it a
// silent no-op, so reminders are dropped rather than failing the loop.
type Desktop struct {
	Enabled bool
	goos    string
	run     func(ctx context.Context, name string, args ...string) error
}

func NewDesktop(enabled bool) *Desktop {
	return &Desktop{Enabled: enabled, goos: runtime.GOOS, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *Desktop) ShowReminder(ctx context.Context, r model.Reminder) error {
	if !d.Enabled {
		return nil
	}
	name, args, ok := d.command(r)
	if !ok {
		return nil
	}
	err := d.run(ctx, name, args...)
	if errors.Is(err, exec.ErrNotFound) {
		return nil
	}
	return err
}

// CancelReminder is a no-op: neither notify-send nor osascript can withdraw
// a posted notification.
func (d *Desktop) CancelReminder(context.Context, int64) error { return nil }

func (d *Desktop) CancelAll(context.Context) error { return nil }

func (d *Desktop) command(r model.Reminder) (string, []string, bool) {
	switch d.goos {
	case "linux":
		return "notify-send", []string{
			"--app-name", appName,
			"--urgency", "critical",
			"--hint", "string:x-canonical-private-synchronous:" + tag(r.TaskID),
			r.Title(), r.Body(),
		}, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s" subtitle "%s"`,
			escapeAppleScript(r.Body()), escapeAppleScript(r.Title()), escapeAppleScript(tag(r.TaskID)))
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func tag(taskID int64) string {
	return "task-" + strconv.FormatInt(taskID, 10)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
