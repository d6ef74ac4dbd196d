package config_test

import (
	"os"
	"sync"
	"testing"

	"github.com/artpar/formgate/config"
	"github.com/rs/zerolog"
)

func validConfig() string {
	return `
server:
  port: 8080

submissions:
  list_limit: 25
`
}

func TestHolder_Get(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	got := h.Get()
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Submissions.ListLimit != 25 {
		t.Errorf("ListLimit = %d, want 25", got.Submissions.ListLimit)
	}
}

func TestHolder_Reload(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("submissions:\n  list_limit: 100\n"), 0644); err != nil {
		t.Fatalf("write new config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	if got := h.Get().Submissions.ListLimit; got != 100 {
		t.Errorf("reloaded ListLimit = %d, want 100", got)
	}
}

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var failures int
	h.OnReloadError(func(error) {
		mu.Lock()
		failures++
		mu.Unlock()
	})

	if err := os.WriteFile(path, []byte("logging:\n  level: bogus\n"), 0644); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("Reload should fail on invalid config")
	}

	if got := h.Get().Submissions.ListLimit; got != 25 {
		t.Errorf("ListLimit = %d, bad reload must keep old config", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if failures != 1 {
		t.Errorf("error callbacks = %d, want 1", failures)
	}
}

func TestHolder_OnChange(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var seen *config.Config
	h.OnChange(func(c *config.Config) {
		mu.Lock()
		seen = c
		mu.Unlock()
	})

	if err := os.WriteFile(path, []byte("submissions:\n  list_limit: 75\n"), 0644); err != nil {
		t.Fatalf("write new config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if seen == nil || seen.Submissions.ListLimit != 75 {
		t.Errorf("OnChange not called with new config: %+v", seen)
	}
}
