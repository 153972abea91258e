package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Program is the ordered list of Go files a query runs over.
type Program struct {
	Root  string   // directory used as working dir for go/packages
	Files []string // absolute paths to .go files, in argument order
}

// Options controlla il comportamento del loader.
type Options struct {
	IncludeTest bool
	ExcludeDirs []string // glob sul basename o sul path relativo (es. "gen*", "internal/mock/**")
	BuildTags   []string
}

// defaultExcluded sono le directory sempre saltate durante la visita.
var defaultExcluded = []string{"vendor", ".git", "testdata"}

// CollectFiles expands paths into .go files. Files named explicitly are kept
// as given, even under excluded directories; directories are walked
// recursively.
func CollectFiles(paths []string, opts Options) (*Program, error) {
	matchers, err := compileExcludes(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}

	prog := &Program{}
	seen := map[string]struct{}{}
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		prog.Files = append(prog.Files, path)
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("abs %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if prog.Root == "" {
				prog.Root = filepath.Dir(abs)
			}
			add(abs)
			continue
		}
		if prog.Root == "" {
			prog.Root = abs
		}
		err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel := path
			if rp, err := filepath.Rel(abs, path); err == nil {
				rel = filepath.ToSlash(rp)
			}
			if info.IsDir() {
				if path == abs {
					return nil
				}
				base := filepath.Base(path)
				if strings.HasPrefix(base, ".") || excluded(matchers, base, rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") {
				return nil
			}
			if !opts.IncludeTest && strings.HasSuffix(path, "_test.go") {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	all := append(append([]string{}, defaultExcluded...), patterns...)
	out := make([]glob.Glob, 0, len(all))
	for _, p := range all {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func excluded(matchers []glob.Glob, base, rel string) bool {
	for _, g := range matchers {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}
