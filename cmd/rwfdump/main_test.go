package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/danmuck/rwfcodec/internal/inspect"
	"github.com/danmuck/rwfcodec/internal/testutil/testlog"
)

// One standard field list entry: field 22, two payload bytes 0x0A2C.
var fieldListHex = "08 0001 0016 02 0a2c"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	testlog.Start(t)
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer, app.ErrWriter = &out, &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"rwfdump"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDumpHexFileAsTree(t *testing.T) {
	path := writeFile(t, "quote.hex", []byte(fieldListHex+"\n"))
	out, err := run(t, "-t", "22:UINT", path)
	require.NoError(t, err)
	assert.Equal(t, "FIELD_LIST\n  22 UINT = 2604\n", out)

	out, err = run(t, path)
	require.NoError(t, err)
	assert.Equal(t, "FIELD_LIST\n  22 UNKNOWN = 0a2c\n", out)
}

func TestDumpBrotliBinaryAsJSON(t *testing.T) {
	raw, err := parseHex([]byte(fieldListHex))
	require.NoError(t, err)
	var compressed bytes.Buffer
	bw := brotli.NewWriter(&compressed)
	_, err = bw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	path := writeFile(t, "quote.rwf.br", compressed.Bytes())

	out, err := run(t, "--json", "--input", "bin", "--type", "22:UINT", path)
	require.NoError(t, err)
	var tree inspect.Node
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "2604", tree.Children[0].Value)
}

func TestDumpUsesConfigSetDefs(t *testing.T) {
	cfgPath := writeFile(t, "config.toml", []byte(`[[setdefs]]
name = "quotes"
kind = "fields"

  [[setdefs.sets]]
  id = 16
  entries = [{ field = 22, type = "UINT_2" }]
`))
	// Set data only, set id 16, then the two UINT_2 bytes.
	data := writeFile(t, "set.hex", []byte("06 10 0a2c"))

	out, err := run(t, "--config", cfgPath, "--fields", "quotes", data)
	require.NoError(t, err)
	assert.Equal(t, "FIELD_LIST\n  22 UINT = 2604\n", out)

	_, err = run(t, data)
	require.Error(t, err)

	_, err = run(t, "--config", cfgPath, "--fields", "missing", data)
	require.Error(t, err)
	_, err = run(t, "--fields", "quotes", data)
	require.Error(t, err)
}

func TestDumpRejectsBadFlags(t *testing.T) {
	path := writeFile(t, "quote.hex", []byte(fieldListHex))
	_, err := run(t, "--container", "WIDGET", path)
	require.Error(t, err)
	_, err = run(t, "--input", "base64", path)
	require.Error(t, err)
	_, err = run(t, "--type", "22", path)
	require.Error(t, err)
}

func TestDecodeInputModes(t *testing.T) {
	p, err := decodeInput(strings.NewReader("0x0A, 0x2C"), inputAuto, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x2C}, p)

	p, err = decodeInput(bytes.NewReader([]byte{0x01, 0xFF}), inputAuto, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xFF}, p)

	p, err = decodeInput(strings.NewReader("0a2c"), inputBinary, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("0a2c"), p)

	_, err = decodeInput(strings.NewReader("0a2"), inputHex, false)
	require.Error(t, err)
}

func TestWriteTreeMarksBlankErrorAndAction(t *testing.T) {
	tree := &inspect.Node{Type: "MAP", Children: []*inspect.Node{
		{Name: "IBM.N", Type: "FIELD_LIST", Action: "DELETE", Perm: "0304"},
		{Name: "TRI.N", Type: "FIELD_LIST", Action: "ADD", Children: []*inspect.Node{
			{Name: "22", Type: "REAL", Blank: true},
			{Name: "16", Type: "DATE", Error: "rwf: incomplete data"},
		}},
	}}
	var b bytes.Buffer
	require.NoError(t, writeTree(&b, tree))
	want := "MAP\n" +
		"  IBM.N FIELD_LIST [DELETE] perm=0304\n" +
		"  TRI.N FIELD_LIST [ADD]\n" +
		"    22 REAL = <blank>\n" +
		"    16 DATE ! rwf: incomplete data\n"
	assert.Equal(t, want, b.String())
}
