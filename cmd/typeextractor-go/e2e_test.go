package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
)

type e2eQuery struct {
	pos  string
	args []string
}

// transcript runs every query against dir and renders "<args> => exit <code>: <stdout>" lines.
func transcript(t *testing.T, bin, dir string, queries []e2eQuery) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, q := range queries {
		args := append([]string{"-pos", q.pos}, q.args...)
		args = append(args, dir)
		stdout, _, code := runCLI(t, bin, args...)
		fmt.Fprintf(&buf, "%s %v => exit %d: %s", q.pos, q.args, code, bytes.TrimRight(stdout, "\n"))
		buf.WriteByte('\n')
	}
	return normalizeOutputPaths(buf.Bytes(), repoRootTB(t))
}

func TestE2E_Sampleapp_Types(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the CLI")
	}
	bin := resolveBinaryPath(t)
	root := repoRootTB(t)
	got := transcript(t, bin, filepath.Join(root, "sampleapp"), []e2eQuery{
		{pos: "10,2"},
		{pos: "15,7"},
		{pos: "15,23"},
		{pos: "15,31"},
		{pos: "17,2"},
		{pos: "22,2"},
		{pos: "23,9"},
		{pos: "24,11"},
		{pos: "24,19"},
		{pos: "24,31"},
		{pos: "25,6"},
		{pos: "4,7", args: []string{"-unit", "stock.go"}},
		{pos: "7,10", args: []string{"-unit", "stock.go"}},
		{pos: "11,22", args: []string{"-unit", "stock.go"}},
	})
	writeOrCompareGolden(t, got, filepath.Join(root, "testdata", "golden", "sampleapp_types.golden"))
}

func TestE2E_Sampleapp_Syntax(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the CLI")
	}
	bin := resolveBinaryPath(t)
	root := repoRootTB(t)
	syntax := []string{"-backend", "syntax"}
	got := transcript(t, bin, filepath.Join(root, "sampleapp"), []e2eQuery{
		{pos: "10,2", args: syntax},
		{pos: "11,2", args: syntax},
		{pos: "15,7", args: syntax},
		{pos: "15,31", args: syntax},
		{pos: "15,44", args: syntax},
		{pos: "17,2", args: syntax},
		{pos: "24,31", args: syntax},
		{pos: "7,10", args: append([]string{"-unit", "stock.go"}, syntax...)},
		{pos: "8,6", args: append([]string{"-unit", "stock.go"}, syntax...)},
	})
	writeOrCompareGolden(t, got, filepath.Join(root, "testdata", "golden", "sampleapp_syntax.golden"))
}
