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

package filefinder

import (
	"os"
	"path/filepath"
	"strings"
)

// followLatexIncludes scans every .tex file already in unique for
// \input{}/\include{} directives and recursively pulls in the files
// they name, resolving relative to the including file's directory first
// and falling back to trying a ".tex" suffix on a bare stem. visited
// tracks processed .tex files across the whole run to guard against
// include cycles.
func followLatexIncludes(unique map[string]struct{}, cfg Config) {
	var seeds []string
	for f := range unique {
		if strings.HasSuffix(strings.ToLower(f), ".tex") {
			seeds = append(seeds, f)
		}
	}

	visited := map[string]struct{}{}
	for _, seed := range seeds {
		collectLatexIncludes(seed, visited, unique, cfg)
	}
}

func collectLatexIncludes(texFile string, visited map[string]struct{}, unique map[string]struct{}, cfg Config) {
	if _, seen := visited[texFile]; seen {
		return
	}
	visited[texFile] = struct{}{}
	unique[texFile] = struct{}{}

	raw, err := os.ReadFile(texFile)
	if err != nil {
		return
	}
	dir := filepath.Dir(texFile)

	for _, include := range extractLatexIncludes(string(raw)) {
		path := include
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		var resolved string
		if fileExists(path) {
			resolved = path
		} else if !strings.HasSuffix(strings.ToLower(path), ".tex") && fileExists(path+".tex") {
			resolved = path + ".tex"
		} else {
			continue
		}

		if shouldKeep(resolved, cfg) {
			collectLatexIncludes(resolved, visited, unique, cfg)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// extractLatexIncludes performs the plain substring scan the reference
// implementation uses instead of a full LaTeX parser: it looks for the
// literal sequences "\input{" and "\include{" and reads up to the next
// "}".
func extractLatexIncludes(content string) []string {
	var includes []string
	pos := 0

	for pos < len(content) {
		inputPos := indexFrom(content, "\\input{", pos)
		includePos := indexFrom(content, "\\include{", pos)

		var foundPos, cmdLen int
		switch {
		case inputPos >= 0 && (includePos < 0 || inputPos < includePos):
			foundPos, cmdLen = inputPos, len("\\input{")
		case includePos >= 0:
			foundPos, cmdLen = includePos, len("\\include{")
		default:
			return includes
		}

		braceStart := foundPos + cmdLen
		braceEnd := strings.IndexByte(content[braceStart:], '}')
		if braceEnd < 0 {
			pos = braceStart
			continue
		}
		braceEnd += braceStart

		name := strings.TrimSpace(content[braceStart:braceEnd])
		if name != "" {
			includes = append(includes, name)
		}
		pos = braceEnd + 1
	}

	return includes
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return idx + from
}
