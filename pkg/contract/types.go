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

// Package contract holds the data shared between the matcher, scanner,
// pager, worker pool, processor, and writeback pipeline. None of these
// types carry behavior beyond small accessors; they exist so the
// concurrent pieces in pkg/processor, pkg/pool, and pkg/writeback can pass
// state between goroutines without importing each other.
package contract

import "sync/atomic"

// ReplacementMap maps a literal pattern to its literal replacement.
// Patterns are non-empty and pairwise distinct; a replacement may be
// empty, which deletes the pattern (the rule DSL's DEL statement).
type ReplacementMap map[string]string

// ProtectedRegionSpec is a configured (start, end) marker pair. An empty
// End denotes literal-content protection: the interval spans exactly the
// occurrence of Start.
type ProtectedRegionSpec struct {
	Start string
	End   string
}

// ProtectedInterval is a concrete occurrence of a ProtectedRegionSpec in
// one file's content, in scalar-value (rune) offsets.
type ProtectedInterval struct {
	StartFirst int // index of the first scalar of the start marker
	EndLast    int // index of the last scalar of the end marker
	StartLen   int // length of the start marker, in scalars
	EndLen     int // length of the end marker, in scalars
}

// SkipTo returns the index one past the end of the interval, i.e. where
// scanning should resume.
func (p ProtectedInterval) SkipTo() int {
	return p.EndLast + 1
}

// Page is a contiguous, half-open slice [Start, End) of a FileContent's
// rune content assigned to a single worker for replacement. Page ids are
// dense 0..n and tile the content exactly.
type Page struct {
	Owner       *FileContent
	ID          int
	Start       int
	End         int
	IsProtected bool
}

// Len reports the number of runes the page spans.
func (p Page) Len() int {
	return p.End - p.Start
}

// PageResult is the outcome of processing one Page.
type PageResult struct {
	FilePath         string
	PageID           int
	ProcessedText    string
	ReplacementCount int
	OK               bool
	ErrMsg           string
}

// ProcessingResult is the outcome of processing one input file, returned
// to the caller of Processor.Process in input order.
type ProcessingResult struct {
	FilePath         string
	OK               bool
	ErrMsg           string
	ReplacementCount int
}

// WritebackNotification is enqueued at most once per file, the moment its
// last page finishes. A file with a failed page, or with no pages at all,
// is not enqueued.
type WritebackNotification struct {
	File             *FileContent
	TotalReplacements int
}

// FileContent is created during preprocessing, shared (without locking)
// by every page task for the file and by the eventual writeback, and
// dropped once writeback completes. Content and ProtectedIntervals are
// write-once before any Page task starts and are read-only afterward.
type FileContent struct {
	Path    string
	Content []rune

	ProtectedIntervals []ProtectedInterval

	// ProcessedPages holds one slot per page, written exclusively by the
	// page task owning that id. No lock is required: the happens-before
	// relationship needed by the writeback reader comes from the
	// pagesRemaining decrement in PageDone reaching zero (see pkg/processor).
	ProcessedPages []string

	pagesRemaining    atomic.Int64
	totalReplacements atomic.Int64
}

// NewFileContent allocates a FileContent and its dense page-result buffer
// for the given page count.
func NewFileContent(path string, content []rune, intervals []ProtectedInterval, numPages int) *FileContent {
	fc := &FileContent{
		Path:               path,
		Content:            content,
		ProtectedIntervals: intervals,
		ProcessedPages:     make([]string, numPages),
	}
	fc.pagesRemaining.Store(int64(numPages))
	return fc
}

// InitPages resets the page-count bookkeeping; used when pages are
// computed after construction (see pkg/processor's preprocess step).
func (fc *FileContent) InitPages(numPages int) {
	fc.ProcessedPages = make([]string, numPages)
	fc.pagesRemaining.Store(int64(numPages))
}

// AddReplacements atomically accumulates a page's replacement count.
func (fc *FileContent) AddReplacements(n int) {
	fc.totalReplacements.Add(int64(n))
}

// TotalReplacements returns the accumulated replacement count.
func (fc *FileContent) TotalReplacements() int {
	return int(fc.totalReplacements.Load())
}

// PageDone decrements the remaining-page counter and reports whether this
// call was the one that brought it to zero, i.e. whether the caller owns
// the responsibility of triggering writeback.
func (fc *FileContent) PageDone() bool {
	return fc.pagesRemaining.Add(-1) == 0
}

// String concatenates the processed pages in order, producing the final
// file content to be written back.
func (fc *FileContent) String() string {
	total := 0
	for _, p := range fc.ProcessedPages {
		total += len(p)
	}
	b := make([]byte, 0, total)
	for _, p := range fc.ProcessedPages {
		b = append(b, p...)
	}
	return string(b)
}
