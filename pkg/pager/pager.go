// Package pager carves a file's content into bounded-size pages at safe
// boundaries, so the pages can be handed to independent workers without
// ever splitting a protected interval.
package pager

import "github.com/haukzero/punp/pkg/contract"

// TargetSize is the nominal page size in scalars (runes). It is a
// compile-time constant per the reference design; callers that need a
// different size use PaginateSized below instead of reaching for a
// global.
const TargetSize = 16 * 1024

// snapWindow bounds how far Paginate will look backward for a newline or
// space boundary before giving up and accepting the tentative cut point.
const snapWindow = 100

// Paginate tiles owner.Content into pages, never splitting a protected
// interval, and returns them in order. It also resets owner's page-result
// bookkeeping (ProcessedPages, the remaining-page counter) to match the
// page count produced.
//
// Protected pages cover exactly one protected interval and may be
// arbitrarily large. Non-protected pages are at most TargetSize+snapWindow
// runes, and are snapped leftward to the nearest newline (or, failing
// that, space) within the last snapWindow runes of the tentative cut, so
// workers don't split words or lines any more than necessary.
func Paginate(owner *contract.FileContent) []contract.Page {
	return PaginateSized(owner, TargetSize)
}

// PaginateSized is Paginate parameterized by target page size, primarily
// for tests exercising boundary behavior without a 16 KiB fixture.
func PaginateSized(owner *contract.FileContent, targetSize int) []contract.Page {
	content := owner.Content
	contentLen := len(content)

	if contentLen == 0 {
		owner.InitPages(0)
		return nil
	}

	intervals := owner.ProtectedIntervals
	var pages []contract.Page

	start := 0
	k := 0
	id := 0

	for start < contentLen {
		if k < len(intervals) && intervals[k].StartFirst == start {
			end := intervals[k].SkipTo()
			pages = append(pages, contract.Page{
				Owner:       owner,
				ID:          id,
				Start:       start,
				End:         end,
				IsProtected: true,
			})
			id++
			start = end
			k++
			continue
		}

		end := start + targetSize
		if end > contentLen {
			end = contentLen
		}
		if k < len(intervals) && end > intervals[k].StartFirst {
			end = intervals[k].StartFirst
		}

		nextIntervalStart := -1
		if k < len(intervals) {
			nextIntervalStart = intervals[k].StartFirst
		}

		if end < contentLen && (nextIntervalStart == -1 || end < nextIntervalStart) {
			end = snapBoundary(content, start, end)
			if k < len(intervals) && end > intervals[k].StartFirst {
				end = intervals[k].StartFirst
			}
		}

		pages = append(pages, contract.Page{
			Owner:       owner,
			ID:          id,
			Start:       start,
			End:         end,
			IsProtected: false,
		})
		id++
		start = end
	}

	owner.InitPages(len(pages))
	return pages
}

// snapBoundary looks backward from the tentative end, within the last
// snapWindow runes (bounded by start), for a newline; failing that, a
// space; failing that, it returns the tentative end unchanged.
func snapBoundary(content []rune, start, tentativeEnd int) int {
	searchFrom := tentativeEnd - snapWindow
	if searchFrom < start {
		searchFrom = start
	}

	for i := tentativeEnd - 1; i >= searchFrom; i-- {
		if content[i] == '\n' {
			return i + 1
		}
	}
	for i := tentativeEnd - 1; i >= searchFrom; i-- {
		if content[i] == ' ' {
			return i + 1
		}
	}
	return tentativeEnd
}
