package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/rwfcodec/internal/inspect"
)

func writeJSON(w io.Writer, tree *inspect.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

// writeTree prints one line per node:
//
//	name TYPE [ACTION] = value
func writeTree(w io.Writer, tree *inspect.Node) error {
	var b strings.Builder
	writeNode(&b, tree, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNode(b *strings.Builder, n *inspect.Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if n.Name != "" {
		b.WriteString(n.Name)
		b.WriteByte(' ')
	}
	b.WriteString(n.Type)
	if n.Action != "" {
		fmt.Fprintf(b, " [%s]", n.Action)
	}
	if n.Perm != "" {
		fmt.Fprintf(b, " perm=%s", n.Perm)
	}
	switch {
	case n.Error != "":
		fmt.Fprintf(b, " ! %s", n.Error)
	case n.Blank:
		b.WriteString(" = <blank>")
	case n.Value != "":
		fmt.Fprintf(b, " = %s", n.Value)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
}
