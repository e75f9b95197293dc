// Package workspace resolves the file set a directory-wide trans
// invocation feeds to the incremental session.
package workspace

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Ext is the one source extension AutoLang resolves; unlike the
// multi-language teacher scanner, there is no per-file language
// detection to perform.
const Ext = ".auto"

// Resolve expands include/exclude doublestar patterns rooted at each of
// roots and returns the matching .auto files, deduplicated and sorted
// for a stable, reproducible fragment file-id assignment order.
func Resolve(roots []string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{"**/*" + Ext}
	}

	seen := make(map[string]bool)
	var out []string
	for _, root := range roots {
		for _, pattern := range include {
			matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
			if err != nil {
				return nil, fmt.Errorf("workspace: glob %q: %w", pattern, err)
			}
			for _, m := range matches {
				if filepath.Ext(m) != Ext {
					continue
				}
				if excluded(m, root, exclude) {
					continue
				}
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func excluded(path, root string, exclude []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, pattern := range exclude {
		if ok, _ := doublestar.PathMatch(pattern, rel); ok {
			return true
		}
	}
	return false
}
