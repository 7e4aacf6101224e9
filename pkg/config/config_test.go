package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ueforge/ueforge/pkg/config"
	"github.com/ueforge/ueforge/pkg/types"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "ueforge.config.json", `{
		"engineRoot": "/src/UE5",
		"defaultPlatform": "Linux",
		"defaultConfiguration": "Shipping",
		"notifications": false
	}`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.EngineRoot != "/src/UE5" {
		t.Errorf("engine root = %s", cfg.EngineRoot)
	}
	if cfg.DefaultPlatform != types.PlatformLinux {
		t.Errorf("platform = %s, want Linux", cfg.DefaultPlatform)
	}
	if cfg.DefaultConfiguration != types.ConfigurationShipping {
		t.Errorf("configuration = %s, want Shipping", cfg.DefaultConfiguration)
	}
	if cfg.NotificationsEnabled() {
		t.Error("notifications should be disabled")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "ueforge.config.yaml", `
engineRoot: /src/UE5
defaultPlatform: Mac
logLevel: debug
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DefaultPlatform != types.PlatformMac {
		t.Errorf("platform = %s, want Mac", cfg.DefaultPlatform)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %s, want debug", cfg.LogLevel)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "empty.json", `{}`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DefaultPlatform != types.PlatformWin64 {
		t.Errorf("default platform = %s, want Win64", cfg.DefaultPlatform)
	}
	if cfg.DefaultConfiguration != types.ConfigurationDevelopment {
		t.Errorf("default configuration = %s, want Development", cfg.DefaultConfiguration)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %s, want info", cfg.LogLevel)
	}
	if !cfg.NotificationsEnabled() {
		t.Error("notifications should default to enabled")
	}
	if cfg.StateDir == "" {
		t.Error("state dir default missing")
	}
}

func TestLoad_InvalidPlatform(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"defaultPlatform": "Dreamcast"}`)
	if _, err := config.Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_Garbage(t *testing.T) {
	path := writeConfig(t, "garbage.conf", "{{{::not parseable")
	if _, err := config.Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.DefaultPlatform != types.PlatformWin64 || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
