package shared

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func stubPlatform(t *testing.T, goos string, env map[string]string) {
	t.Helper()
	origRuntime, origLookup := getRuntime, lookupEnv
	t.Cleanup(func() { getRuntime, lookupEnv = origRuntime, origLookup })

	getRuntime = func() string { return goos }
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestBrowserCommand(t *testing.T) {
	const url = "https://accounts.example.com/auth?state=abc"

	tc := []struct {
		name string
		goos string
		env  map[string]string
		want string
	}{
		{name: "macOS", goos: "darwin", want: "open " + url},
		{name: "linux with display", goos: "linux", env: map[string]string{"DISPLAY": ":0"}, want: "xdg-open " + url},
		{name: "linux with wayland", goos: "linux", env: map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, want: "xdg-open " + url},
		{name: "windows", goos: "windows", want: "rundll32 url.dll,FileProtocolHandler " + url},
		{name: "BROWSER overrides platform", goos: "linux", env: map[string]string{"BROWSER": " firefox "}, want: "firefox " + url},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			stubPlatform(t, tt.goos, tt.env)

			cmd, err := browserCommand(url)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			args := append([]string{filepath.Base(cmd.Args[0])}, cmd.Args[1:]...)
			if got := strings.Join(args, " "); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("headless linux", func(t *testing.T) {
		stubPlatform(t, "linux", nil)
		if _, err := browserCommand(url); !errors.Is(err, ErrNoBrowser) {
			t.Errorf("expected ErrNoBrowser, got %v", err)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		stubPlatform(t, "plan9", nil)
		if err := OpenBrowser(url); !errors.Is(err, ErrNoBrowser) || !strings.Contains(err.Error(), "plan9") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})
}
