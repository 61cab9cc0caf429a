package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	lookupEnv  = os.LookupEnv
)

// OpenBrowser opens the consent page at url for an OAuth flow.
//
// $BROWSER wins when set. Otherwise macOS, Linux (with a display) and Windows are supported.
// Callers should print url when an error is returned.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

func browserCommand(url string) (*exec.Cmd, error) {
	if b, ok := lookupEnv("BROWSER"); ok && strings.TrimSpace(b) != "" {
		return exec.Command(strings.TrimSpace(b), url), nil
	}

	rt := getRuntime()
	switch rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		if !hasDisplay() {
			return nil, fmt.Errorf("%w: no DISPLAY or WAYLAND_DISPLAY set", ErrNoBrowser)
		}
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform %s", ErrNoBrowser, rt)
	}
}

func hasDisplay() bool {
	for _, key := range []string{"DISPLAY", "WAYLAND_DISPLAY"} {
		if v, ok := lookupEnv(key); ok && v != "" {
			return true
		}
	}
	return false
}
