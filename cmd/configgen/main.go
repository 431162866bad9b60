package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/danmuck/rwfcodec/internal/config"
)

func main() {
	kind := flag.String("kind", "inspect", "config kind: inspect|dump")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	path, err := defaultPath(*kind)
	if err != nil {
		log.Fatal(err)
	}

	if *validate {
		if *input != "" {
			path = *input
		}
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatal(err)
		}
		for _, db := range cfg.SetDefs {
			if err := buildSetDefs(db); err != nil {
				log.Fatal(err)
			}
		}
		log.Printf("Validated %s config at %s (%d setdefs)", *kind, path, len(cfg.SetDefs))
		return
	}

	if *output != "" {
		path = *output
	}
	if err := config.WriteTemplate(path, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, path)
}

func defaultPath(kind string) (string, error) {
	switch kind {
	case "inspect":
		return "cmd/rwfinspect/config.toml", nil
	case "dump":
		return "cmd/rwfdump/config.toml", nil
	}
	return "", fmt.Errorf("unknown config kind: %s", kind)
}

// buildSetDefs catches entry types that parse as TOML but name no wire type.
func buildSetDefs(db config.SetDefsConfig) error {
	var err error
	switch db.Kind {
	case config.KindFields:
		_, err = config.FieldSetDefDb(db)
	case config.KindElements:
		_, err = config.ElementSetDefDb(db)
	}
	return err
}
