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

// Package matcher implements the compiled multi-pattern replacer: a trie
// over literal patterns, applied left-to-right with longest-match-at-
// position, non-overlapping semantics. No regular expressions are
// involved, matching the no-regex, literal-sequence requirement of the
// rewriting engine this package serves.
package matcher

import "github.com/haukzero/punp/pkg/contract"

// node is one trie node. children is keyed by rune so the trie walks a
// decoded text buffer directly, never bytes.
type node struct {
	children    map[rune]*node
	replacement []rune
	patternLen  int // 0 means this node does not terminate a pattern
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Matcher is a compiled replacement index built from a ReplacementMap. A
// Matcher is immutable after Build and safe for concurrent use by many
// page tasks, since Apply never mutates the trie.
type Matcher struct {
	root *node
}

// Build compiles a ReplacementMap into a Matcher. An empty map yields a
// Matcher whose Apply is a no-op.
//
// The reference design assumes patterns share no non-trivial common
// prefix (true for the punctuation-sized pattern sets this engine
// targets) and therefore omits Aho-Corasick failure links entirely: the
// walk in Apply simply stops and falls back to a verbatim rune when no
// child exists, which is already longest-match-at-position for
// prefix-free pattern sets. Failure links are a vestigial optimization
// the original implementation keeps only for patterns that do share
// prefixes, and are not needed to satisfy the match discipline.
func Build(rep contract.ReplacementMap) *Matcher {
	root := newNode()
	for pattern, replacement := range rep {
		if pattern == "" {
			continue
		}
		cur := root
		runeLen := 0
		for _, ch := range pattern {
			child, ok := cur.children[ch]
			if !ok {
				child = newNode()
				cur.children[ch] = child
			}
			cur = child
			runeLen++
		}
		cur.replacement = []rune(replacement)
		cur.patternLen = runeLen
	}
	return &Matcher{root: root}
}

// Apply scans text left-to-right, replacing every non-overlapping
// longest match, and returns the rewritten text along with the number of
// replacements applied. An empty text or empty rule set yields zero
// replacements and text returned unchanged.
func (m *Matcher) Apply(text []rune) ([]rune, int) {
	if len(text) == 0 || len(m.root.children) == 0 {
		return text, 0
	}

	result := make([]rune, 0, len(text))
	count := 0

	copyStart := 0 // start of the pending verbatim run, flushed lazily
	flush := func(end int) {
		if end > copyStart {
			result = append(result, text[copyStart:end]...)
		}
	}

	i := 0
	for i < len(text) {
		cur := m.root
		matchLen := 0
		var matchRepl []rune
		j := i
		for j < len(text) {
			child, ok := cur.children[text[j]]
			if !ok {
				break
			}
			cur = child
			j++
			if cur.patternLen > 0 {
				matchLen = cur.patternLen
				matchRepl = cur.replacement
			}
		}

		if matchLen > 0 {
			flush(i)
			result = append(result, matchRepl...)
			i += matchLen
			copyStart = i
			count++
		} else {
			i++
		}
	}
	flush(len(text))

	if count == 0 {
		return text, 0
	}
	return result, count
}

// ApplyString is a convenience wrapper over Apply for callers already
// holding a string (e.g. tests); the core pipeline works in []rune to
// keep page slicing O(1).
func ApplyString(m *Matcher, text string) (string, int) {
	out, n := m.Apply([]rune(text))
	return string(out), n
}
