package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/rwfcodec/internal/config"
)

// rwfinspect config.toml layout. Keys left out keep their defaults.
type fileConfig struct {
	Codec struct {
		MajorVersion      int `toml:"major_version"`
		MinorVersion      int `toml:"minor_version"`
		InitialBufferSize int `toml:"initial_buffer_size"`
		MaxBufferSize     int `toml:"max_buffer_size"`
		MaxDepth          int `toml:"max_depth"`
	} `toml:"codec"`
	Inspect struct {
		Addr         string   `toml:"addr"`
		CorsOrigins  []string `toml:"cors_origins"`
		MaxBodyBytes int64    `toml:"max_body_bytes"`
		Metrics      bool     `toml:"metrics"`
	} `toml:"inspect"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	SetDefs []config.SetDefsConfig `toml:"setdefs"`
}

func loadServiceConfig(path string) (config.Config, error) {
	cfg := config.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("load rwfinspect config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.Config{}, fmt.Errorf("load rwfinspect config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("codec", "major_version") {
		cfg.Codec.MajorVersion = raw.Codec.MajorVersion
	}
	if meta.IsDefined("codec", "minor_version") {
		cfg.Codec.MinorVersion = raw.Codec.MinorVersion
	}
	if meta.IsDefined("codec", "initial_buffer_size") {
		cfg.Codec.InitialBufferSize = raw.Codec.InitialBufferSize
	}
	if meta.IsDefined("codec", "max_buffer_size") {
		cfg.Codec.MaxBufferSize = raw.Codec.MaxBufferSize
	}
	if meta.IsDefined("codec", "max_depth") {
		cfg.Codec.MaxDepth = raw.Codec.MaxDepth
	}

	if meta.IsDefined("inspect", "addr") {
		cfg.Inspect.Addr = strings.TrimSpace(raw.Inspect.Addr)
	}
	if meta.IsDefined("inspect", "cors_origins") {
		cfg.Inspect.CorsOrigins = normalizeOrigins(raw.Inspect.CorsOrigins)
	}
	if meta.IsDefined("inspect", "max_body_bytes") {
		cfg.Inspect.MaxBodyBytes = raw.Inspect.MaxBodyBytes
	}
	if meta.IsDefined("inspect", "metrics") {
		cfg.Inspect.Metrics = raw.Inspect.Metrics
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}

	if meta.IsDefined("setdefs") {
		cfg.SetDefs = raw.SetDefs
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("rwfinspect config: %w", err)
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
