package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/brotli"
)

type inputMode int

const (
	inputAuto inputMode = iota
	inputHex
	inputBinary
)

func parseInputMode(raw string) (inputMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return inputAuto, nil
	case "hex":
		return inputHex, nil
	case "bin", "binary", "raw":
		return inputBinary, nil
	}
	return 0, fmt.Errorf("unknown input encoding %q", raw)
}

// readPayload reads name, or stdin for "" and "-". Brotli is undone
// before the hex/binary decision.
func readPayload(name string, mode inputMode, compressed bool) ([]byte, error) {
	var in io.Reader = os.Stdin
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	return decodeInput(in, mode, compressed)
}

func decodeInput(in io.Reader, mode inputMode, compressed bool) ([]byte, error) {
	if compressed {
		in = brotli.NewReader(in)
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if mode == inputAuto {
		mode = inputBinary
		if looksHex(raw) {
			mode = inputHex
		}
	}
	if mode == inputBinary {
		return raw, nil
	}
	return parseHex(raw)
}

// parseHex accepts whitespace, "0x" prefixes and ':' or ',' separators
// between bytes, as hex dumps are usually pasted.
func parseHex(raw []byte) ([]byte, error) {
	s := strings.ReplaceAll(string(raw), "0x", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', ',':
			return -1
		}
		return r
	}, s)
	p, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex input: %w", err)
	}
	return p, nil
}

func looksHex(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	for _, b := range trimmed {
		switch {
		case b >= '0' && b <= '9', b >= 'a' && b <= 'f', b >= 'A' && b <= 'F':
		case b == 'x', b == ' ', b == '\t', b == '\n', b == '\r', b == ':', b == ',':
		default:
			return false
		}
	}
	return true
}
