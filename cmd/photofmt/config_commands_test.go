package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndShow(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init"}, configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample config")

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file at %s: %v", configPath, err)
	}

	// A second init without --force refuses to clobber the file.
	if _, _, err := runCLI(t, []string{"config", "init"}, configPath); err == nil {
		t.Fatal("expected error for existing config without --force")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--force"}, configPath); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, stdout, "# loaded from")
	requireContains(t, stdout, "quality")
}

func TestConfigShowWithoutFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)

	stdout, _, err := runCLI(t, []string{"config", "show"}, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, stdout, "# no config file found")
}
