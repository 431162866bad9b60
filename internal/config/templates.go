package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "inspect":
		return inspectTemplate, nil
	case "dump":
		return dumpTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const inspectTemplate = `[codec]
major_version = 14
minor_version = 1
initial_buffer_size = 4096
max_buffer_size = 1048576
max_depth = 16

[inspect]
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 1048576
metrics = true

[log]
level = "info"

[[setdefs]]
name = "quotes"
kind = "fields"

  [[setdefs.sets]]
  id = 16
  entries = [
    { field = 22, type = "REAL_4RB" },
    { field = 25, type = "REAL_4RB" },
    { field = 32, type = "UINT_4" },
  ]

[[setdefs]]
name = "quotes"
kind = "elements"

  [[setdefs.sets]]
  id = 20
  entries = [
    { name = "BID", type = "REAL_8RB" },
    { name = "ASK", type = "REAL_8RB" },
    { name = "VOL", type = "UINT_4" },
  ]
`

const dumpTemplate = `[codec]
major_version = 14
minor_version = 1
initial_buffer_size = 4096
max_buffer_size = 1048576
max_depth = 16

[log]
level = "warn"
`
