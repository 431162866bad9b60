package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the file layout shared by the rwf tools.
type Config struct {
	Codec   CodecConfig     `toml:"codec"`
	Inspect InspectConfig   `toml:"inspect"`
	Log     LogConfig       `toml:"log"`
	SetDefs []SetDefsConfig `toml:"setdefs"`
}

type CodecConfig struct {
	MajorVersion      int `toml:"major_version"`
	MinorVersion      int `toml:"minor_version"`
	InitialBufferSize int `toml:"initial_buffer_size"`
	MaxBufferSize     int `toml:"max_buffer_size"`
	MaxDepth          int `toml:"max_depth"`
}

type InspectConfig struct {
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	Metrics      bool     `toml:"metrics"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// SetDefsConfig declares a named global set definition database. Kind is
// "fields" or "elements".
type SetDefsConfig struct {
	Name string         `toml:"name"`
	Kind string         `toml:"kind"`
	Sets []SetDefConfig `toml:"sets"`
}

type SetDefConfig struct {
	ID      int              `toml:"id"`
	Entries []SetEntryConfig `toml:"entries"`
}

// SetEntryConfig names its entry by Field for field sets or Name for
// element sets. Type is a wire type name such as "REAL_4RB".
type SetEntryConfig struct {
	Field int16  `toml:"field"`
	Name  string `toml:"name"`
	Type  string `toml:"type"`
}

const (
	// maxDepth mirrors the codec's hard nesting limit.
	maxDepth = 16

	KindFields   = "fields"
	KindElements = "elements"
)

func DefaultConfig() Config {
	return Config{
		Codec: CodecConfig{
			MajorVersion:      14,
			MinorVersion:      1,
			InitialBufferSize: 4096,
			MaxBufferSize:     1 << 20,
			MaxDepth:          maxDepth,
		},
		Inspect: InspectConfig{
			Addr:         ":9300",
			CorsOrigins:  []string{"http://localhost:3000"},
			MaxBodyBytes: 1 << 20,
			Metrics:      true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("config encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

func Validate(cfg Config) error {
	if err := ValidateCodec(cfg.Codec); err != nil {
		return fmt.Errorf("codec config invalid: %w", err)
	}
	if err := ValidateInspect(cfg.Inspect); err != nil {
		return fmt.Errorf("inspect config invalid: %w", err)
	}
	names := make(map[string]bool, len(cfg.SetDefs))
	for i, db := range cfg.SetDefs {
		if err := ValidateSetDefs(db); err != nil {
			return fmt.Errorf("setdefs[%d] invalid: %w", i, err)
		}
		key := db.Kind + "/" + db.Name
		if names[key] {
			return fmt.Errorf("setdefs[%d] invalid: %s database %q declared twice", i, db.Kind, db.Name)
		}
		names[key] = true
	}
	return nil
}

func ValidateCodec(cfg CodecConfig) error {
	if cfg.MajorVersion != 14 {
		return fmt.Errorf("major_version %d unsupported", cfg.MajorVersion)
	}
	if cfg.MinorVersion < 0 || cfg.MinorVersion > 0xFF {
		return fmt.Errorf("minor_version %d out of range", cfg.MinorVersion)
	}
	if cfg.InitialBufferSize <= 0 {
		return fmt.Errorf("initial_buffer_size must be positive")
	}
	if cfg.MaxBufferSize < cfg.InitialBufferSize {
		return fmt.Errorf("max_buffer_size %d below initial_buffer_size %d", cfg.MaxBufferSize, cfg.InitialBufferSize)
	}
	if cfg.MaxDepth < 1 || cfg.MaxDepth > maxDepth {
		return fmt.Errorf("max_depth must be within 1..%d", maxDepth)
	}
	return nil
}

func ValidateInspect(cfg InspectConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}

func ValidateSetDefs(cfg SetDefsConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if cfg.Kind != KindFields && cfg.Kind != KindElements {
		return fmt.Errorf("kind must be %q or %q, got %q", KindFields, KindElements, cfg.Kind)
	}
	for i, set := range cfg.Sets {
		if set.ID <= 15 || set.ID > 65535 {
			return fmt.Errorf("sets[%d]: id %d outside 16..65535", i, set.ID)
		}
		for j, e := range set.Entries {
			if strings.TrimSpace(e.Type) == "" {
				return fmt.Errorf("sets[%d].entries[%d]: type is required", i, j)
			}
			if cfg.Kind == KindElements && e.Name == "" {
				return fmt.Errorf("sets[%d].entries[%d]: name is required", i, j)
			}
		}
	}
	return nil
}
