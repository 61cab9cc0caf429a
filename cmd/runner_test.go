package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/agentkit/internal/agents"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/services"
	"github.com/desertthunder/agentkit/internal/shared"
	tu "github.com/desertthunder/agentkit/internal/testing"
	"golang.org/x/oauth2"
)

func staticToken(token string) services.Option {
	return services.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

// writeConfig writes a config file with credentials pointing into dir so no real files are touched.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`
[ai]
host = "http://127.0.0.1:1"
model = "test-model"

[gmail]
credentials_file = %q
token_file = %q

[spotify]
token_file = %q
%s`, filepath.Join(dir, "gmail_credentials.json"), filepath.Join(dir, "gmail_token.json"), filepath.Join(dir, "spotify_token.json"), extra)

	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OLLAMA_HOST", "DEFAULT_MODEL", "GMAIL_CREDENTIALS_FILE", "GMAIL_TOKEN_FILE", "NOTION_TOKEN",
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REDIRECT_URI", "SPOTIFY_TOKEN_FILE",
	} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	return newApp(runner).Run(context.Background(), append([]string{"agentkit"}, args...))
}

func notionServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			json.NewEncoder(w).Encode(map[string]any{
				"object":  "list",
				"results": []map[string]any{{"id": "db1", "object": "database", "title": []map[string]any{{"plain_text": "Reading List"}}}},
			})
		case "/databases/db1/query":
			json.NewEncoder(w).Encode(map[string]any{"object": "list", "results": []any{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newWorkspace(t *testing.T, baseURL string, gen agents.Generator) *agents.Workspace {
	t.Helper()
	svc, err := services.NewNotionService("secret", services.WithBaseURL(baseURL))
	if err != nil {
		t.Fatalf("NewNotionService() error = %v", err)
	}
	return agents.NewWorkspace(svc, gen, shared.NewLogger(&bytes.Buffer{}))
}

func spotifyServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me":
			json.NewEncoder(w).Encode(map[string]any{"id": "user1"})
		case r.Method == http.MethodGet && r.URL.Path == "/search":
			json.NewEncoder(w).Encode(map[string]any{"tracks": map[string]any{"items": []map[string]any{
				{"id": "t-" + r.URL.Query().Get("q"), "name": r.URL.Query().Get("q"), "duration_ms": 185000},
			}}})
		case r.Method == http.MethodPost && r.URL.Path == "/users/user1/playlists":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": "pl1", "name": "Rainy Mood - 2024-05-01"})
		case r.Method == http.MethodPost && r.URL.Path == "/playlists/pl1/tracks":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"snapshot_id":"snap"}`)
		case r.Method == http.MethodPut && r.URL.Path == "/me/player/pause":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPut && r.URL.Path == "/me/player/play":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"status":404,"message":"No active device found"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newMusic(t *testing.T, baseURL string, gen agents.Generator) *agents.Music {
	t.Helper()
	svc, err := services.NewSpotifyService(
		map[string]string{"client_id": "id", "client_secret": "secret"},
		services.WithBaseURL(baseURL),
		staticToken("tok"),
	)
	if err != nil {
		t.Fatalf("NewSpotifyService() error = %v", err)
	}
	return agents.NewMusic(svc, gen, shared.NewLogger(&bytes.Buffer{}))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			gen := &tu.FakeGenerator{}
			workspace := newWorkspace(t, "http://unused", gen)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Generator:  gen,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Workspace:  workspace,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.gen != gen {
				t.Error("expected generator to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.workspace != workspace {
				t.Error("expected workspace to be set")
			}
			if runner.palette == nil {
				t.Error("expected palette to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil || runner.config.Server.Port != 3000 {
				t.Errorf("expected default config, got %+v", runner.config)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{Logger: nil}); runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{Output: nil}); runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{HTTPClient: nil}); runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\"key\":\"value\"}\n" {
				t.Errorf("expected compact JSON, got %q", output.String())
			}
		})

		t.Run("returns error for unmarshalable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("returns error when write fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("returns error when newline write fails", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("formats output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("count: %d\n", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "count: 3\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("writePlainln pads with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("hello %s", "world")
			if output.String() != "\nhello world\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("returns error when write fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("x"); err == nil {
				t.Error("expected error")
			}
			if err := runner.writePlainln("x"); err == nil {
				t.Error("expected error")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for _, c := range commands {
			names = append(names, c.Name)
		}
		if got := strings.Join(names, ","); got != "init,status,gmail,notion,spotify" {
			t.Errorf("unexpected commands %s", got)
		}

		subcommands := map[string]string{}
		for _, c := range commands {
			var subs []string
			for _, s := range c.Commands {
				subs = append(subs, s.Name)
			}
			subcommands[c.Name] = strings.Join(subs, ",")
		}
		if subcommands["gmail"] != "auth,recent,unread,search,summarize,actions,reply" {
			t.Errorf("unexpected gmail commands %s", subcommands["gmail"])
		}
		if subcommands["notion"] != "databases,summarize,ask" {
			t.Errorf("unexpected notion commands %s", subcommands["notion"])
		}
		if subcommands["spotify"] != "auth,current,search,recommend,playlists,mood,play,pause,resume" {
			t.Errorf("unexpected spotify commands %s", subcommands["spotify"])
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("loads the config file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		path := writeConfig(t, dir, "")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Generator: &tu.FakeGenerator{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := run(t, runner, "--config", path, "spotify", "mood", "--limit", "0", "calm"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Fatalf("expected ErrInvalidFlag, got %v", err)
		}
		if runner.config.AI.Model != "test-model" {
			t.Errorf("expected model from file, got %q", runner.config.AI.Model)
		}
		if runner.configPath != path {
			t.Errorf("expected config path %q, got %q", path, runner.configPath)
		}
	})

	t.Run("missing config file falls back to defaults", func(t *testing.T) {
		clearEnv(t)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		err := run(t, runner, "--config", filepath.Join(t.TempDir(), "absent.toml"), "notion", "ask")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
		if runner.config.AI.Model != "llama2" {
			t.Errorf("expected default model, got %q", runner.config.AI.Model)
		}
		if host, model := runner.modelHost(); host != "http://localhost:11434" || model != "llama2" {
			t.Errorf("expected gateway to be built from defaults, got %s %s", host, model)
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(path, []byte("[ai\nhost = "), 0600)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := run(t, runner, "--config", path, "status"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DEFAULT_MODEL", "mistral")
		path := writeConfig(t, t.TempDir(), "")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		run(t, runner, "--config", path, "notion", "ask")
		if runner.config.AI.Model != "mistral" {
			t.Errorf("expected env override, got %q", runner.config.AI.Model)
		}
	})
}

func TestInit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output, Generator: &tu.FakeGenerator{}, Logger: shared.NewLogger(&bytes.Buffer{})})

	if err := run(t, runner, "--config", path, "init"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	tu.AssertFileExists(t, path)
	if !strings.Contains(tu.MustReadFile(t, path), "[spotify]") {
		t.Error("expected template content in config file")
	}
	if !strings.Contains(output.String(), "Config written to "+path) {
		t.Errorf("unexpected output %s", output.String())
	}

	if err := run(t, runner, "--config", path, "init"); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected second init to fail, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	t.Run("reports each agent", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, t.TempDir(), "")
		output := &bytes.Buffer{}
		gen := &tu.FakeGenerator{}
		runner := NewRunner(RunnerOpts{
			Output:    output,
			Generator: gen,
			Logger:    shared.NewLogger(&bytes.Buffer{}),
			Workspace: newWorkspace(t, notionServer(t).URL, gen),
		})

		if err := run(t, runner, "--config", path, "status"); err != nil {
			t.Fatalf("status error = %v", err)
		}

		out := output.String()
		for _, want := range []string{"Agent Status", "✗ gmail", "✓ notion", "database_count: 1", "✗ spotify", "missing credentials"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, t.TempDir(), "")
		output := &bytes.Buffer{}
		gen := &tu.FakeGenerator{}
		runner := NewRunner(RunnerOpts{
			Output:    output,
			Generator: gen,
			Logger:    shared.NewLogger(&bytes.Buffer{}),
			Workspace: newWorkspace(t, notionServer(t).URL, gen),
		})

		if err := run(t, runner, "--config", path, "status", "--json"); err != nil {
			t.Fatalf("status error = %v", err)
		}

		var statuses []models.Status
		if err := json.Unmarshal(output.Bytes(), &statuses); err != nil {
			t.Fatalf("invalid JSON %v:\n%s", err, output.String())
		}
		if len(statuses) != 3 {
			t.Fatalf("expected 3 statuses, got %d", len(statuses))
		}
		if statuses[0].Agent != "gmail" || statuses[0].Connected() {
			t.Errorf("expected gmail error, got %+v", statuses[0])
		}
		if statuses[1].Agent != "notion" || !statuses[1].Connected() {
			t.Errorf("expected notion connected, got %+v", statuses[1])
		}
	})

	t.Run("provider failures become error status", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NOTION_TOKEN", "secret")
		path := writeConfig(t, t.TempDir(), "")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:     output,
			Generator:  &tu.FakeGenerator{},
			Logger:     shared.NewLogger(&bytes.Buffer{}),
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("network unreachable"))},
		})

		if err := run(t, runner, "--config", path, "status"); err != nil {
			t.Fatalf("status error = %v", err)
		}
		if !strings.Contains(output.String(), "✗ notion") || !strings.Contains(output.String(), "network unreachable") {
			t.Errorf("expected notion failure in output:\n%s", output.String())
		}
	})

	t.Run("gmail without a token points at auth", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		path := writeConfig(t, dir, "")
		secrets := `{"installed":{"client_id":"cid","client_secret":"cs","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
		os.WriteFile(filepath.Join(dir, "gmail_credentials.json"), []byte(secrets), 0600)

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Generator: &tu.FakeGenerator{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		err := run(t, runner, "--config", path, "gmail", "unread")
		if !errors.Is(err, shared.ErrNotAuthenticated) || !strings.Contains(err.Error(), "agentkit gmail auth") {
			t.Errorf("expected auth hint, got %v", err)
		}
	})
}

func TestNotionCommands(t *testing.T) {
	newRunner := func(t *testing.T, gen *tu.FakeGenerator) (*Runner, *bytes.Buffer, string) {
		clearEnv(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:    output,
			Generator: gen,
			Logger:    shared.NewLogger(&bytes.Buffer{}),
			Workspace: newWorkspace(t, notionServer(t).URL, gen),
		})
		return runner, output, writeConfig(t, t.TempDir(), "")
	}

	t.Run("databases", func(t *testing.T) {
		runner, output, path := newRunner(t, &tu.FakeGenerator{})

		if err := run(t, runner, "--config", path, "notion", "databases", "--json"); err != nil {
			t.Fatalf("databases error = %v", err)
		}
		var dbs []models.DatabaseSummary
		if err := json.Unmarshal(output.Bytes(), &dbs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(dbs) != 1 || dbs[0].Title != "Reading List" {
			t.Errorf("unexpected databases %+v", dbs)
		}
	})

	t.Run("summarize requires an id", func(t *testing.T) {
		runner, _, path := newRunner(t, &tu.FakeGenerator{})
		if err := run(t, runner, "--config", path, "notion", "summarize"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("summarize an empty database skips the model", func(t *testing.T) {
		gen := &tu.FakeGenerator{Reply: "unused"}
		runner, output, path := newRunner(t, gen)

		if err := run(t, runner, "--config", path, "notion", "summarize", "db1"); err != nil {
			t.Fatalf("summarize error = %v", err)
		}
		if !strings.Contains(output.String(), "No pages found in database") {
			t.Errorf("unexpected output %s", output.String())
		}
		if gen.Calls() != 0 {
			t.Errorf("expected no model calls, got %d", gen.Calls())
		}
	})

	t.Run("ask joins the question", func(t *testing.T) {
		gen := &tu.FakeGenerator{Reply: "You have one database."}
		runner, output, path := newRunner(t, gen)

		if err := run(t, runner, "--config", path, "notion", "ask", "what", "do", "I", "have?"); err != nil {
			t.Fatalf("ask error = %v", err)
		}
		if !strings.Contains(gen.LastPrompt(), "what do I have?") {
			t.Errorf("expected question in prompt:\n%s", gen.LastPrompt())
		}
		if !strings.Contains(output.String(), "You have one database.") {
			t.Errorf("unexpected output %s", output.String())
		}
	})
}

func TestGmailCommands(t *testing.T) {
	t.Run("search requires a query", func(t *testing.T) {
		clearEnv(t)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Generator: &tu.FakeGenerator{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		err := run(t, runner, "--config", writeConfig(t, t.TempDir(), ""), "gmail", "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("reply requires an id", func(t *testing.T) {
		clearEnv(t)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Generator: &tu.FakeGenerator{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		err := run(t, runner, "--config", writeConfig(t, t.TempDir(), ""), "gmail", "reply")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("recent and unread", func(t *testing.T) {
		clearEnv(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/messages":
				json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]string{{"id": "m1", "threadId": "t1"}}})
			case "/messages/m1":
				json.NewEncoder(w).Encode(map[string]any{
					"id":      "m1",
					"snippet": "See you there",
					"payload": map[string]any{
						"headers": []map[string]string{{"name": "Subject", "value": "Lunch"}, {"name": "From", "value": "ana@example.com"}},
					},
				})
			case "/labels/UNREAD":
				json.NewEncoder(w).Encode(map[string]any{"id": "UNREAD", "messagesUnread": 7})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		gen := &tu.FakeGenerator{}
		svc := services.NewGmailService(&oauth2.Config{}, services.WithBaseURL(server.URL), staticToken("tok"))
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:    output,
			Generator: gen,
			Logger:    shared.NewLogger(&bytes.Buffer{}),
			Mail:      agents.NewMail(svc, gen, shared.NewLogger(&bytes.Buffer{})),
		})
		path := writeConfig(t, t.TempDir(), "")

		if err := run(t, runner, "--config", path, "gmail", "recent"); err != nil {
			t.Fatalf("recent error = %v", err)
		}
		for _, want := range []string{"Recent Emails (1)", "1. Lunch", "From: ana@example.com", "ID: m1"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, output.String())
			}
		}

		output.Reset()
		if err := run(t, runner, "--config", path, "gmail", "unread"); err != nil {
			t.Fatalf("unread error = %v", err)
		}
		if output.String() != "Unread emails: 7\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestSpotifyCommands(t *testing.T) {
	newRunner := func(t *testing.T, gen *tu.FakeGenerator) (*Runner, *bytes.Buffer, string) {
		clearEnv(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output:    output,
			Generator: gen,
			Logger:    shared.NewLogger(&bytes.Buffer{}),
			Music:     newMusic(t, spotifyServer(t).URL, gen),
		})
		return runner, output, writeConfig(t, t.TempDir(), "")
	}

	t.Run("mood rejects an out of range limit", func(t *testing.T) {
		for _, limit := range []string{"0", "101"} {
			runner, _, path := newRunner(t, &tu.FakeGenerator{})
			err := run(t, runner, "--config", path, "spotify", "mood", "--limit", limit, "happy")
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("limit %s: expected ErrInvalidFlag, got %v", limit, err)
			}
		}
	})

	t.Run("mood requires a mood", func(t *testing.T) {
		runner, _, path := newRunner(t, &tu.FakeGenerator{})
		if err := run(t, runner, "--config", path, "spotify", "mood"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("mood creates a playlist and streams progress", func(t *testing.T) {
		var lines []string
		for i := range 12 {
			lines = append(lines, fmt.Sprintf("- \"Song %d\" by Band", i))
		}
		runner, output, path := newRunner(t, &tu.FakeGenerator{Reply: strings.Join(lines, "\n")})

		if err := run(t, runner, "--config", path, "spotify", "mood", "--limit", "5", "rainy"); err != nil {
			t.Fatalf("mood error = %v", err)
		}

		out := output.String()
		for _, want := range []string{"→ ", "✓ Created", "Tracks: 5/5"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("mood json output has no progress lines", func(t *testing.T) {
		var lines []string
		for i := range 12 {
			lines = append(lines, fmt.Sprintf("- \"Song %d\" by Band", i))
		}
		runner, output, path := newRunner(t, &tu.FakeGenerator{Reply: strings.Join(lines, "\n")})

		if err := run(t, runner, "--config", path, "spotify", "mood", "--limit", "3", "--json", "rainy"); err != nil {
			t.Fatalf("mood error = %v", err)
		}

		var result models.PlaylistResult
		if err := json.Unmarshal(output.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON %v:\n%s", err, output.String())
		}
		if result.ID != "pl1" || result.TracksAdded != 3 || result.Status != models.StatusCreated {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("mood with no tracks fails", func(t *testing.T) {
		runner, _, path := newRunner(t, &tu.FakeGenerator{Reply: "no list here"})

		if err := run(t, runner, "--config", path, "spotify", "mood", "--limit", "3", "rainy"); err == nil {
			t.Error("expected an error when no tracks were found")
		}
	})

	t.Run("search", func(t *testing.T) {
		runner, output, path := newRunner(t, &tu.FakeGenerator{})

		if err := run(t, runner, "--config", path, "spotify", "search", "blue", "monday"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		for _, want := range []string{`Results for "blue monday" (1)`, "ID: t-blue monday", "3:05"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, output.String())
			}
		}
	})

	t.Run("search exports csv to a file", func(t *testing.T) {
		runner, output, path := newRunner(t, &tu.FakeGenerator{})
		exportPath := filepath.Join(t.TempDir(), "out", "tracks.csv")

		if err := run(t, runner, "--config", path, "spotify", "search", "--format", "csv", "--output", exportPath, "blue"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		tu.AssertFileExists(t, exportPath)
		if got := tu.MustReadFile(t, exportPath); !strings.HasPrefix(got, "ID,Name,Artist,Album,Duration,Popularity\nt-blue,blue") {
			t.Errorf("unexpected export %q", got)
		}
		if !strings.Contains(output.String(), "Exported to "+exportPath) {
			t.Errorf("unexpected output %s", output.String())
		}
	})

	t.Run("search rejects an unknown format", func(t *testing.T) {
		runner, _, path := newRunner(t, &tu.FakeGenerator{})
		err := run(t, runner, "--config", path, "spotify", "search", "--format", "xml", "blue")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("pause and play", func(t *testing.T) {
		runner, output, path := newRunner(t, &tu.FakeGenerator{})

		if err := run(t, runner, "--config", path, "spotify", "pause"); err != nil {
			t.Fatalf("pause error = %v", err)
		}
		if !strings.Contains(output.String(), "✓ Paused") {
			t.Errorf("unexpected output %s", output.String())
		}

		if err := run(t, runner, "--config", path, "spotify", "play", "abc"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected rejected playback, got %v", err)
		}
	})
}
