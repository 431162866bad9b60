package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/danmuck/rwfcodec/internal/config"
	"github.com/danmuck/rwfcodec/internal/inspect"
	"github.com/danmuck/rwfcodec/internal/logging"
	"github.com/danmuck/rwfcodec/internal/rwf"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(app.ErrWriter, "rwfdump:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "rwfdump",
		Usage:     "print an encoded RWF payload as a tree",
		ArgsUsage: "[FILE|-]",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "container", Aliases: []string{"c"}, Value: "FIELD_LIST", Usage: "type of the top-level payload"},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Value: "auto", Usage: "input encoding: auto|hex|bin"},
			&cli.BoolFlag{Name: "brotli", Usage: "input is brotli compressed (implied by a .br suffix)"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a tree"},
			&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "type a standard field entry, e.g. 22:REAL"},
			&cli.StringFlag{Name: "config", Usage: "config.toml supplying codec limits and setdefs"},
			&cli.StringFlag{Name: "fields", Usage: "name of a fields setdefs database in --config"},
			&cli.StringFlag{Name: "elements", Usage: "name of an elements setdefs database in --config"},
		},
		Before: func(c *cli.Context) error {
			logging.ConfigureRuntime()
			return nil
		},
		Action: dump,
	}
}

func dump(c *cli.Context) error {
	container, ok := rwf.ParseDataType(strings.ToUpper(c.String("container")))
	if !ok || container == rwf.DataTypeUnknown {
		return cli.Exit(fmt.Sprintf("unknown container %q", c.String("container")), 2)
	}
	mode, err := parseInputMode(c.String("input"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	w, err := newWalker(c)
	if err != nil {
		return err
	}

	name := c.Args().First()
	payload, err := readPayload(name, mode, c.Bool("brotli") || strings.HasSuffix(name, ".br"))
	if err != nil {
		return err
	}
	log.Debug().Str("container", container.String()).Int("bytes", len(payload)).Msg("rwfdump: decoding")

	tree, err := w.Walk(payload, container)
	if err != nil {
		return fmt.Errorf("decode %s: %w", container, err)
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, tree)
	}
	return writeTree(c.App.Writer, tree)
}

func newWalker(c *cli.Context) (*inspect.Walker, error) {
	types, err := inspect.ParseFieldTypes(c.StringSlice("type"))
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	w := &inspect.Walker{FieldTypes: types}

	path := c.String("config")
	if path == "" {
		if c.String("fields") != "" || c.String("elements") != "" {
			return nil, cli.Exit("--fields and --elements need --config", 2)
		}
		return w, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if !logging.SetLevel(cfg.Log.Level) {
		log.Warn().Str("level", cfg.Log.Level).Msg("unknown log level, keeping default")
	}
	w.MaxDepth = cfg.Codec.MaxDepth
	w.Major, w.Minor = cfg.Codec.MajorVersion, cfg.Codec.MinorVersion
	if w.Fields, err = findFieldDb(cfg, c.String("fields")); err != nil {
		return nil, err
	}
	if w.Elements, err = findElementDb(cfg, c.String("elements")); err != nil {
		return nil, err
	}
	return w, nil
}

func findFieldDb(cfg config.Config, name string) (*rwf.GlobalFieldSetDefDb, error) {
	if name == "" {
		return nil, nil
	}
	for _, db := range cfg.SetDefs {
		if db.Kind == config.KindFields && db.Name == name {
			return config.FieldSetDefDb(db)
		}
	}
	return nil, fmt.Errorf("fields setdefs %q not in config", name)
}

func findElementDb(cfg config.Config, name string) (*rwf.GlobalElementSetDefDb, error) {
	if name == "" {
		return nil, nil
	}
	for _, db := range cfg.SetDefs {
		if db.Kind == config.KindElements && db.Name == name {
			return config.ElementSetDefDb(db)
		}
	}
	return nil, fmt.Errorf("elements setdefs %q not in config", name)
}
