// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filefinder expands a project's configured input patterns into
// a concrete, deduplicated, sorted list of file paths, applying
// extension and exclude filters and optionally following LaTeX
// \input{}/\include{} directives.
package filefinder

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// Config controls one discovery run.
type Config struct {
	Patterns    []string // input roots: directories, globs, or bare paths
	Extensions  []string // allow-list, e.g. [".tex", ".md"]; empty means all
	Exclude     []string // doublestar exclude patterns
	Recursive   bool     // walk subdirectories of directory patterns
	RuleFile    string   // always excluded from the discovered set
	FollowLatex bool     // follow \input{}/\include{} in discovered .tex files
}

// Find expands cfg.Patterns into a sorted, deduplicated list of absolute
// file paths.
func Find(cfg Config) ([]string, error) {
	unique := map[string]struct{}{}

	for _, pattern := range cfg.Patterns {
		files, err := expandPattern(pattern, cfg)
		if err != nil {
			return nil, errors.Errorf("expanding pattern %q: %w", pattern, err)
		}
		for _, f := range files {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			unique[filepath.Clean(abs)] = struct{}{}
		}
	}

	if cfg.FollowLatex {
		followLatexIncludes(unique, cfg)
	}

	out := make([]string, 0, len(unique))
	for f := range unique {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

func expandPattern(pattern string, cfg Config) ([]string, error) {
	info, err := os.Stat(pattern)
	if err == nil && info.IsDir() {
		return walkDir(pattern, cfg)
	}

	if doublestar.ValidatePattern(pattern) && containsGlobMeta(pattern) {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}
		var kept []string
		for _, m := range matches {
			if shouldKeep(m, cfg) {
				kept = append(kept, m)
			}
		}
		return kept, nil
	}

	if err == nil && shouldKeep(pattern, cfg) {
		return []string{pattern}, nil
	}
	return nil, nil
}

func containsGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func walkDir(root string, cfg Config) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !cfg.Recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldKeep(path, cfg) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func shouldKeep(path string, cfg Config) bool {
	if cfg.RuleFile != "" && filepath.Base(path) == filepath.Base(cfg.RuleFile) {
		return false
	}
	if len(cfg.Extensions) > 0 && !hasExtension(path, cfg.Extensions) {
		return false
	}
	for _, pattern := range cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
			return false
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(filepath.Base(path))); ok {
			return false
		}
	}
	return true
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
