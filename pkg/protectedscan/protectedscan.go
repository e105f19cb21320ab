// Package protectedscan locates protected spans in a file's text before
// any replacement runs, so the pager can route them to whole, untouched
// pages.
package protectedscan

import (
	"github.com/haukzero/punp/pkg/contract"
)

// Scan performs a single left-to-right pass over text, matching any
// configured start marker as a prefix of text[pos:] and, on a match,
// searching forward for the corresponding end marker. Configured order is
// preserved and the first matching marker wins, so callers with
// overlapping markers (one a prefix of another) must order the longer or
// more specific marker first.
//
// An empty End denotes literal-content protection: the interval spans
// exactly the start marker occurrence.
//
// A start marker with no corresponding end marker before EOF ends the
// scan; no interval is emitted for that occurrence and no further
// intervals are produced. This matches the reference scanner, which
// treats an unterminated protector as "nothing more to protect" rather
// than an error.
func Scan(text []rune, regions []contract.ProtectedRegionSpec) []contract.ProtectedInterval {
	if len(regions) == 0 || len(text) == 0 {
		return nil
	}

	runes := make([][]rune, len(regions))
	ends := make([][]rune, len(regions))
	minStart := -1
	for i, r := range regions {
		runes[i] = []rune(r.Start)
		if r.End == "" {
			ends[i] = runes[i]
		} else {
			ends[i] = []rune(r.End)
		}
		if minStart == -1 || len(runes[i]) < minStart {
			minStart = len(runes[i])
		}
	}

	var intervals []contract.ProtectedInterval
	pos := 0
	textLen := len(text)

	for pos < textLen {
		if textLen-pos < minStart {
			break
		}

		matchIdx := -1
		for i, start := range runes {
			if hasPrefixAt(text, pos, start) {
				matchIdx = i
				break
			}
		}

		if matchIdx == -1 {
			pos++
			continue
		}

		startLen := len(runes[matchIdx])
		region := regions[matchIdx]

		if region.End == "" {
			// Literal-content protection: the interval is exactly the
			// start marker occurrence.
			intervals = append(intervals, contract.ProtectedInterval{
				StartFirst: pos,
				EndLast:    pos + startLen - 1,
				StartLen:   startLen,
				EndLen:     startLen,
			})
			pos += startLen
			continue
		}

		end := ends[matchIdx]
		endBegin := indexRunes(text, pos+startLen, end)
		if endBegin == -1 {
			break
		}

		endLen := len(end)
		intervals = append(intervals, contract.ProtectedInterval{
			StartFirst: pos,
			EndLast:    endBegin + endLen - 1,
			StartLen:   startLen,
			EndLen:     endLen,
		})
		pos = endBegin + endLen
	}

	return intervals
}

func hasPrefixAt(text []rune, pos int, prefix []rune) bool {
	if pos+len(prefix) > len(text) {
		return false
	}
	for i, r := range prefix {
		if text[pos+i] != r {
			return false
		}
	}
	return true
}

// indexRunes finds the first occurrence of needle in text at or after
// from, returning -1 if absent.
func indexRunes(text []rune, from int, needle []rune) int {
	if len(needle) == 0 {
		return from
	}
	for i := from; i+len(needle) <= len(text); i++ {
		if hasPrefixAt(text, i, needle) {
			return i
		}
	}
	return -1
}
