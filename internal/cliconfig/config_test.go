package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "" {
		t.Fatalf("Host = %q, want empty", cfg.Host)
	}
	if cfg.APIVersion != "" {
		t.Fatalf("APIVersion = %q, want empty", cfg.APIVersion)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
host = "  tcp://10.0.0.5:2376  "
api_version = "  v1.43  "
cert_path = "~/.docker/certs"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "tcp://10.0.0.5:2376" {
		t.Fatalf("Host = %q, want %q", cfg.Host, "tcp://10.0.0.5:2376")
	}
	if cfg.APIVersion != "v1.43" {
		t.Fatalf("APIVersion = %q, want %q", cfg.APIVersion, "v1.43")
	}
	if !strings.HasPrefix(cfg.CertPath, home) {
		t.Fatalf("CertPath = %q, want it under HOME %q", cfg.CertPath, home)
	}
}

func TestLoad_RejectsMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`host = [not toml`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a malformed config")
	}
}
