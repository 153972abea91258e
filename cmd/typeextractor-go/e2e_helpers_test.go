package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var update = flag.Bool("update", false, "update golden files in testdata/golden")

func repoRootTB(tb testing.TB) string {
	tb.Helper()
	_, file, _, _ := runtime.Caller(0)
	start := filepath.Dir(file)
	root, ok := findRepoRoot(start)
	if !ok {
		tb.Fatalf("could not locate repo root starting from %s", start)
	}
	return root
}

func findRepoRoot(start string) (string, bool) {
	cur := start
	for i := 0; i < 10; i++ { // cap to avoid infinite loop
		gomod := filepath.Join(cur, "go.mod")
		if st, err := os.Stat(gomod); err == nil && !st.IsDir() {
			return cur, true
		}
		next := filepath.Dir(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return "", false
}

// resolveBinaryPath uses TYPEEXTRACTOR_BIN when set, otherwise builds the CLI.
func resolveBinaryPath(t *testing.T) string {
	t.Helper()
	if p := os.Getenv("TYPEEXTRACTOR_BIN"); strings.TrimSpace(p) != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		t.Logf("TYPEEXTRACTOR_BIN set but not found: %s", p)
	}
	tmp := t.TempDir()
	bin := "typeextractor-go"
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	outPath := filepath.Join(tmp, bin)
	cmd := exec.Command("go", "build", "-o", outPath, "./cmd/typeextractor-go")
	cmd.Dir = repoRootTB(t)
	cmd.Env = os.Environ()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Skipf("skipping E2E: failed to build CLI: %v\n%s", err, stderr.String())
	}
	return outPath
}

// runCLI returns stdout, stderr and the exit code of bin.
func runCLI(t *testing.T, bin string, args ...string) (stdout, stderr []byte, code int) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = repoRootTB(t)
	cmd.Env = os.Environ()
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code = 0
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		t.Fatalf("run %s: %v", bin, err)
	}
	return outBuf.Bytes(), errBuf.Bytes(), code
}

func normalizeOutputPaths(b []byte, root string) []byte {
	s := string(b)
	// normalize path separators to '/'
	s = strings.ReplaceAll(s, "\\", "/")
	// replace absolute root with $ROOT
	root = strings.ReplaceAll(root, "\\", "/")
	s = strings.ReplaceAll(s, root, "$ROOT")
	return []byte(s)
}

func writeOrCompareGolden(t *testing.T, got []byte, goldenPath string) {
	t.Helper()
	if *update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Skipf("golden missing: %s (run with -update to create)", goldenPath)
		}
		t.Fatalf("read golden: %v", err)
	}
	if !bytes.Equal(got, want) {
		// on mismatch, write a .got file near golden for inspection
		_ = os.WriteFile(goldenPath+".got", got, 0o644)
		t.Fatalf("output does not match golden %s\n--- got (saved as .got)\n--- want\nGOT:  %q\nWANT: %q", goldenPath, preview(got), preview(want))
	}
}

func preview(b []byte) string {
	if len(b) > 200 {
		return string(b[:200])
	}
	return string(b)
}
