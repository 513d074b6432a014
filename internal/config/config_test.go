package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("expected default server url, got %s", cfg.ServerURL)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %s", cfg.Timeout)
	}
	if len(cfg.Samples) != 2 || cfg.Samples[0] != "sample.pdf" || cfg.Samples[1] != "test.pdf" {
		t.Errorf("unexpected default samples %v", cfg.Samples)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad scheme", func(c *Config) { c.ServerURL = "ftp://host" }, "scheme"},
		{"missing host", func(c *Config) { c.ServerURL = "http://" }, "missing host"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative ready timeout", func(c *Config) { c.ReadyTimeout = -time.Second }, "ready_timeout"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	for _, name := range []string{"", "debug", "INFO", "warn", "error"} {
		cfg := &Config{LogLevel: name}
		if _, err := cfg.SlogLevel(); err != nil {
			t.Errorf("SlogLevel(%q) error = %v", name, err)
		}
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_INVOICE_API", "http://extractor:8000")

		result := ResolveEnvVars("${TEST_INVOICE_API}")
		if result != "http://extractor:8000" {
			t.Errorf("expected http://extractor:8000, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
server_url: "https://extract.example.com"
timeout: 90s
samples: [a.pdf]
`)

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.ServerURL != "https://extract.example.com" {
			t.Errorf("expected configured server url, got %s", cfg.ServerURL)
		}
		if cfg.Timeout != 90*time.Second {
			t.Errorf("expected 90s timeout, got %s", cfg.Timeout)
		}
		if len(cfg.Samples) != 1 || cfg.Samples[0] != "a.pdf" {
			t.Errorf("unexpected samples %v", cfg.Samples)
		}
		if cfg.ReadyTimeout != 30*time.Second {
			t.Errorf("unset keys should keep defaults, got ready_timeout %s", cfg.ReadyTimeout)
		}
		if mgr.FileUsed() != configFile {
			t.Errorf("FileUsed() = %s", mgr.FileUsed())
		}
	})

	t.Run("defaults without a config file", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().ServerURL != DefaultConfig().ServerURL {
			t.Errorf("expected default server url, got %s", mgr.Get().ServerURL)
		}
	})

	t.Run("finds config in search path", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: debug\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		mgr, err := NewManager("", dir)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().LogLevel != "debug" {
			t.Errorf("expected debug, got %s", mgr.Get().LogLevel)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("INVOICEDESK_SERVER_URL", "http://env-host:9000")
		configFile := writeConfig(t, `server_url: "http://file-host:8000"`)

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().ServerURL != "http://env-host:9000" {
			t.Errorf("expected env override, got %s", mgr.Get().ServerURL)
		}
	})

	t.Run("resolves env references", func(t *testing.T) {
		t.Setenv("TEST_EXTRACTOR_URL", "http://ref-host:8000")
		configFile := writeConfig(t, `server_url: "${TEST_EXTRACTOR_URL}"`)

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().ServerURL != "http://ref-host:8000" {
			t.Errorf("expected resolved url, got %s", mgr.Get().ServerURL)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		configFile := writeConfig(t, `server_url: "not a url"`)
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestManager_OnChange(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var got []*Config
	mgr.OnChange(func(cfg *Config) { got = append(got, cfg) })
	mgr.OnChange(func(cfg *Config) { got = append(got, cfg) })

	next := DefaultConfig()
	next.LogLevel = "debug"
	mgr.apply(next)

	if len(got) != 2 {
		t.Fatalf("expected 2 callback invocations, got %d", len(got))
	}
	if got[0] != next || mgr.Get() != next {
		t.Error("callbacks and Get should see the new config")
	}
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Call Get concurrently with apply to verify no race conditions
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.ServerURL
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		mgr.apply(DefaultConfig())
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "timeout: 10m0s") {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default should load: %v", err)
	}
	cfg := mgr.Get()
	want := DefaultConfig()
	if cfg.ServerURL != want.ServerURL || cfg.Timeout != want.Timeout || cfg.ReadyTimeout != want.ReadyTimeout {
		t.Errorf("round trip mismatch: %+v", cfg)
	}
	if len(cfg.Samples) != len(want.Samples) {
		t.Errorf("samples = %v", cfg.Samples)
	}
}
