package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadServiceConfigDefaultsAndOverrides(t *testing.T) {
	cfg, err := loadServiceConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Codec.MaxDepth != 8 {
		t.Fatalf("unexpected max depth: %d", cfg.Codec.MaxDepth)
	}
	if cfg.Codec.MajorVersion != 14 || cfg.Codec.InitialBufferSize != 4096 {
		t.Fatalf("expected codec defaults kept, got %+v", cfg.Codec)
	}
	if cfg.Inspect.Addr != "127.0.0.1:9301" {
		t.Fatalf("unexpected addr: %q", cfg.Inspect.Addr)
	}
	if len(cfg.Inspect.CorsOrigins) != 2 || cfg.Inspect.CorsOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %+v", cfg.Inspect.CorsOrigins)
	}
	if cfg.Inspect.Metrics {
		t.Fatalf("expected metrics disabled")
	}
	if cfg.Inspect.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected default body limit, got %d", cfg.Inspect.MaxBodyBytes)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
	if len(cfg.SetDefs) != 1 || cfg.SetDefs[0].Kind != "elements" {
		t.Fatalf("unexpected setdefs: %+v", cfg.SetDefs)
	}
	if got := cfg.SetDefs[0].Sets[0].Entries[1].Name; got != "ASK" {
		t.Fatalf("unexpected entry name: %q", got)
	}
}

func TestLoadServiceConfigRejectsUnknownKeysAndBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown": "[inspect]\nport = 9000\n",
		"depth":   "[codec]\nmax_depth = 17\n",
		"kind":    "[[setdefs]]\nname = \"x\"\nkind = \"rows\"\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".toml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := loadServiceConfig(path); err == nil {
			t.Fatalf("expected %s config to fail", name)
		}
	}
}

func TestResolveConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := resolveConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("resolve defaults: %v", err)
	}
	if cfg.Inspect.Addr != ":9300" {
		t.Fatalf("unexpected default addr: %q", cfg.Inspect.Addr)
	}

	_, err = resolveConfig(filepath.Join(dir, "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "load rwfinspect config") {
		t.Fatalf("expected load error for explicit path, got %v", err)
	}
}
