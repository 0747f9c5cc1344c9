// Package cert handles the browser's native client-certificate picker. The
// dialog lives outside the DOM, so it cannot be driven through CDP; selection
// goes through whatever UI automation the host OS offers.
package cert

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// Selector picks the client certificate with the given display name once the
// native dialog is on screen.
type Selector interface {
	Select(ctx context.Context, displayName string) error
}

// Noop accepts without touching the dialog. Useful when the browser profile
// carries an AutoSelectCertificateForUrls policy, and in tests.
type Noop struct{}

func (Noop) Select(ctx context.Context, displayName string) error { return nil }

// DialogSelector confirms the native certificate dialog by sending keystrokes
// through the platform's UI automation tool. The configured certificate must
// be the dialog's preselected entry; the display name is only used for
// logging and window lookup.
type DialogSelector struct {
	// DialogWait is how long to wait for the dialog to appear before sending
	// keys. The dialog pops up at an OS-determined moment after the
	// certificate login link is clicked.
	DialogWait time.Duration
}

func (d DialogSelector) Select(ctx context.Context, displayName string) error {
	wait := d.DialogWait
	if wait == 0 {
		wait = 2 * time.Second
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return ctx.Err()
	}

	cmd, err := confirmDialogCommand(ctx)
	if err != nil {
		return err
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to confirm certificate dialog for %q: %w: %s", displayName, err, out)
	}
	return nil
}

func confirmDialogCommand(ctx context.Context) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "windows":
		// SendKeys goes to the foreground window, which is the modal picker.
		script := `Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait('{ENTER}')`
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script), nil
	case "linux":
		return exec.CommandContext(ctx, "xdotool", "key", "--clearmodifiers", "Return"), nil
	case "darwin":
		script := `tell application "System Events" to key code 36`
		return exec.CommandContext(ctx, "osascript", "-e", script), nil
	default:
		return nil, fmt.Errorf("no certificate dialog automation for %s", runtime.GOOS)
	}
}
