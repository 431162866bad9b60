package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rwfcodec/internal/config"
	"github.com/danmuck/rwfcodec/internal/logging"
	"github.com/danmuck/rwfcodec/internal/observability"
	"github.com/danmuck/rwfcodec/internal/server"
)

const defaultConfigPath = "cmd/rwfinspect/config.toml"

func main() {
	path := flag.String("config", defaultConfigPath, "path to config.toml")
	addr := flag.String("addr", "", "listen address (overrides [inspect].addr)")
	flag.Parse()

	logging.ConfigureRuntime()
	observability.InitLogger("rwfinspect", false)

	cfg, err := resolveConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rwfinspect: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Inspect.Addr = *addr
	}
	if !logging.SetLevel(cfg.Log.Level) {
		log.Warn().Str("level", cfg.Log.Level).Msg("unknown log level, keeping default")
	}

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rwfinspect: %v\n", err)
		os.Exit(1)
	}
	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "rwfinspect: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig loads path, falling back to defaults when the default
// path does not exist.
func resolveConfig(path string) (config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		log.Info().Str("path", path).Msg("no config file, using defaults")
		return config.DefaultConfig(), nil
	}
	return loadServiceConfig(path)
}
