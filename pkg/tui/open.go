package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener shows a URL outside the terminal.
type Opener func(ctx context.Context, url string) error

// OSOpenCommand is the platform command that opens a URL in the default
// browser.
func OSOpenCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	default:
		return []string{"xdg-open"}
	}
}

// SystemOpener runs OSOpenCommand on the URL and waits for it to exit.
func SystemOpener(ctx context.Context, url string) error {
	argv := append(OSOpenCommand(), url)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tui: %s %s: %w: %s", argv[0], url, err, out)
	}
	return nil
}
