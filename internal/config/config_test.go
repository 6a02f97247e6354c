package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable ApplyEnv reads so host settings don't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BOT_TOKEN", "BOODSCHAPPEN_WEB_BIND", "BOODSCHAPPEN_WEB_PORT",
		"BOODSCHAPPEN_LOG_LEVEL", "BOODSCHAPPEN_LOG_FORMAT", "BOODSCHAPPEN_DONE_SCOPE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.WebPort != def.WebPort {
		t.Errorf("WebPort = %d, want %d", cfg.WebPort, def.WebPort)
	}
	if cfg.DoneScope != DoneScopeAll {
		t.Errorf("DoneScope = %q, want %q", cfg.DoneScope, DoneScopeAll)
	}
	if cfg.SessionCapacity != def.SessionCapacity {
		t.Errorf("SessionCapacity = %d, want %d", cfg.SessionCapacity, def.SessionCapacity)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	body := `{"web_port": 9090, "done_scope": "list", "session_ttl": "30m"}`
	if err := os.WriteFile(configPath, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WebPort != 9090 {
		t.Errorf("WebPort = %d, want 9090", cfg.WebPort)
	}
	if cfg.DoneScope != DoneScopeList {
		t.Errorf("DoneScope = %q, want %q", cfg.DoneScope, DoneScopeList)
	}
	if cfg.SessionTTLDuration() != 30*time.Minute {
		t.Errorf("SessionTTLDuration() = %v, want 30m", cfg.SessionTTLDuration())
	}
	// Unset fields keep defaults
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_InvalidDoneScope(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"done_scope": "everywhere"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error for invalid done_scope")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOODSCHAPPEN_WEB_PORT", "7070")
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"bot_token": "from-file"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BotToken != "123:abc" {
		t.Errorf("BotToken = %q, want env value", cfg.BotToken)
	}
	if cfg.WebPort != 7070 {
		t.Errorf("WebPort = %d, want 7070", cfg.WebPort)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("BOT_TOKEN")
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("BOT_TOKEN=from-dotenv\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("BOT_TOKEN") })

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BotToken != "from-dotenv" {
		t.Errorf("BotToken = %q, want from-dotenv", cfg.BotToken)
	}
}

func TestSessionTTLDuration_Fallback(t *testing.T) {
	cfg := &Config{SessionTTL: "not-a-duration"}
	if cfg.SessionTTLDuration() != 12*time.Hour {
		t.Errorf("SessionTTLDuration() = %v, want 12h fallback", cfg.SessionTTLDuration())
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		WebPort:       8080,
		LogLevel:      "info",
		DisabledTools: []string{"shopping_clear"},
	}
	overlay := &Config{
		LogLevel:      "debug",
		DisabledTools: []string{"shopping_clear", " shopping_done "},
	}

	result := Merge(base, overlay)

	if result.WebPort != 8080 {
		t.Errorf("WebPort = %d, want 8080 (base)", result.WebPort)
	}
	if result.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (overlay)", result.LogLevel)
	}
	if len(result.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 deduplicated entries", result.DisabledTools)
	}
	if result.DisabledTools[1] != "shopping_done" {
		t.Errorf("DisabledTools[1] = %q, want trimmed shopping_done", result.DisabledTools[1])
	}
}

func TestMergeStringSlice_Empty(t *testing.T) {
	if got := mergeStringSlice(nil, []string{" ", ""}); got != nil {
		t.Errorf("mergeStringSlice() = %v, want nil", got)
	}
}
