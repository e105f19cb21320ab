// Package processor orchestrates the end-to-end pipeline: load a file,
// scan it for protected regions, page it, fan the pages out across a
// worker pool, and hand completed files to the writeback pipeline.
package processor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/haukzero/punp/pkg/contract"
	"github.com/haukzero/punp/pkg/matcher"
	"github.com/haukzero/punp/pkg/pager"
	"github.com/haukzero/punp/pkg/pool"
	"github.com/haukzero/punp/pkg/protectedscan"
	"github.com/haukzero/punp/pkg/writeback"
)

// binaryCheckWindow is how many leading raw bytes are inspected by the
// text/binary heuristic.
const binaryCheckWindow = 1024

// 🔧 Options configures a Processor for one compiled rule set. A Processor
// is reusable across many Process calls sharing the same rules.
type Options struct {
	Matcher   *matcher.Matcher
	Protected []contract.ProtectedRegionSpec
	PageSize  int // 0 uses pager.TargetSize
	Logger    *zerolog.Logger
}

// 🎯 Processor is the orchestration entry point. Its WorkerPool and
// WritebackPipeline are created lazily, sized by the first batch, and
// reused (grown, never shrunk) by later batches.
type Processor struct {
	opts Options

	mu   sync.Mutex
	pool *pool.Pool
	wb   *writeback.Pipeline
}

// 🏭 New creates a Processor bound to a compiled matcher and protected
// region configuration.
func New(opts Options) *Processor {
	return &Processor{opts: opts}
}

// Close shuts the Processor's writeback pipeline and worker pool down.
// It is safe to call even if Process was never called.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wb != nil {
		p.wb.Shutdown()
	}
	if p.pool != nil {
		p.pool.Shutdown()
	}
}

// threadCount implements the H = hardware_concurrency * 1.5 sizing rule:
// auto (maxThreads == 0) picks min(len(files)*2, H), otherwise
// min(maxThreads, H), both clamped to at least 1.
func threadCount(numFiles, maxThreads int) int {
	h := int(float64(runtime.NumCPU()) * 1.5)
	if h < 1 {
		h = 1
	}
	var n int
	if maxThreads == 0 {
		n = numFiles * 2
		if n > h {
			n = h
		}
	} else {
		n = maxThreads
		if n > h {
			n = h
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Processor) ensurePool(logger *zerolog.Logger, size int) (*pool.Pool, *writeback.Pipeline) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		p.pool = pool.New(logger, size)
		p.wb = writeback.New(logger, p.pool)
	} else {
		p.pool.Scale(size)
	}
	return p.pool, p.wb
}

// 🏃 Process runs the batch to completion and returns one ProcessingResult
// per input file, in input order. It joins each file's writeback before
// returning, per the "join before returning" resolution of the
// writeback-after-aggregation race: a caller never observes ok=true for a
// file whose write to disk did not actually happen.
func (p *Processor) Process(ctx context.Context, files []string, maxThreads int) []contract.ProcessingResult {
	logger := p.opts.Logger
	if logger == nil {
		l := zerolog.Ctx(ctx)
		logger = l
	}

	results := make([]contract.ProcessingResult, len(files))
	if len(files) == 0 {
		return results
	}

	size := threadCount(len(files), maxThreads)
	wp, wb := p.ensurePool(logger, size)

	pageSize := p.opts.PageSize
	if pageSize <= 0 {
		pageSize = pager.TargetSize
	}

	var wg sync.WaitGroup
	wg.Add(len(files))

	for i, path := range files {
		i, path := i, path
		err := pool.SubmitWithCallback(wp, func() preprocessOutcome {
			return preprocess(path, p.opts.Protected, pageSize)
		}, func(out preprocessOutcome) {
			p.dispatch(wp, wb, logger, i, path, out, results, &wg)
		})
		if err != nil {
			results[i] = contract.ProcessingResult{FilePath: path, OK: false, ErrMsg: err.Error()}
			wg.Done()
		}
	}

	wg.Wait()
	return results
}

// preprocessOutcome is the producer-side result handed from the
// preprocess task to its continuation.
type preprocessOutcome struct {
	fc      *contract.FileContent
	pages   []contract.Page
	failMsg string
}

// preprocess reads and decodes a file, classifies it as text or binary,
// and — if text — scans it for protected regions and pages it.
func preprocess(path string, regions []contract.ProtectedRegionSpec, pageSize int) preprocessOutcome {
	raw, err := os.ReadFile(path)
	if err != nil {
		return preprocessOutcome{failMsg: contract.LoadFailureMessage}
	}
	if !looksLikeText(raw) {
		return preprocessOutcome{failMsg: contract.LoadFailureMessage}
	}

	content := []rune(string(raw))
	intervals := protectedscan.Scan(content, regions)
	fc := contract.NewFileContent(path, content, intervals, 0)
	pages := pager.PaginateSized(fc, pageSize)

	return preprocessOutcome{fc: fc, pages: pages}
}

// looksLikeText applies the NUL-density heuristic: text iff fewer than
// 1% of the first 1 KiB of raw bytes are NUL.
func looksLikeText(raw []byte) bool {
	n := len(raw)
	if n > binaryCheckWindow {
		n = binaryCheckWindow
	}
	if n == 0 {
		return true
	}
	nul := 0
	for _, b := range raw[:n] {
		if b == 0 {
			nul++
		}
	}
	return nul*100 < n
}

// dispatch runs on a worker goroutine as the preprocess continuation. It
// either records an immediate failure or fans the file's pages out as
// individual tasks, arranging for the last one to trigger writeback and
// final aggregation.
func (p *Processor) dispatch(wp *pool.Pool, wb *writeback.Pipeline, logger *zerolog.Logger, i int, path string, out preprocessOutcome, results []contract.ProcessingResult, wg *sync.WaitGroup) {
	if out.fc == nil {
		results[i] = contract.ProcessingResult{FilePath: path, OK: false, ErrMsg: out.failMsg}
		wg.Done()
		return
	}

	if len(out.pages) == 0 {
		results[i] = contract.ProcessingResult{FilePath: path, OK: true, ReplacementCount: 0}
		wg.Done()
		return
	}

	pageResults := make([]contract.PageResult, len(out.pages))
	m := p.opts.Matcher

	for _, pg := range out.pages {
		pg := pg
		err := wp.Submit(func() {
			pr := processPage(pg, m)
			pageResults[pr.PageID] = pr
			if pr.OK {
				out.fc.AddReplacements(pr.ReplacementCount)
			}
			if out.fc.PageDone() {
				p.finish(wb, logger, i, path, pageResults, out.fc, results, wg)
			}
		})
		if err != nil {
			pageResults[pg.ID] = contract.PageResult{FilePath: path, PageID: pg.ID, OK: false, ErrMsg: err.Error()}
			if out.fc.PageDone() {
				p.finish(wb, logger, i, path, pageResults, out.fc, results, wg)
			}
		}
	}
}

// finish runs once per file, on whichever page task decremented
// pages_remaining to zero. It either enqueues writeback and waits for
// the outcome (successful batch) or skips writeback entirely when any
// page failed, since there is no well-formed content to write.
func (p *Processor) finish(wb *writeback.Pipeline, logger *zerolog.Logger, i int, path string, pageResults []contract.PageResult, fc *contract.FileContent, results []contract.ProcessingResult, wg *sync.WaitGroup) {
	total := 0
	var failMsgs []string
	for _, pr := range pageResults {
		if pr.OK {
			total += pr.ReplacementCount
		} else {
			failMsgs = append(failMsgs, pr.ErrMsg)
		}
	}

	if len(failMsgs) > 0 {
		results[i] = contract.ProcessingResult{
			FilePath:         path,
			OK:               false,
			ErrMsg:           strings.Join(failMsgs, "; "),
			ReplacementCount: total,
		}
		wg.Done()
		return
	}

	done := wb.Enqueue(fc, total)
	go func() {
		wbErr := <-done
		if wbErr != nil {
			results[i] = contract.ProcessingResult{FilePath: path, OK: false, ErrMsg: wbErr.Error(), ReplacementCount: total}
			if logger != nil {
				logger.Warn().Str("file", path).Err(wbErr).Msg("file processed but writeback failed")
			}
		} else {
			results[i] = contract.ProcessingResult{FilePath: path, OK: true, ReplacementCount: total}
		}
		wg.Done()
	}()
}

// processPage runs the matcher (or passes protected content through
// untouched) over one page's slice of the owning file's content. Panics
// inside matching are recovered and surfaced as a failed PageResult
// rather than taking a worker down.
func processPage(pg contract.Page, m *matcher.Matcher) (result contract.PageResult) {
	defer func() {
		if r := recover(); r != nil {
			result = contract.PageResult{
				FilePath: pg.Owner.Path,
				PageID:   pg.ID,
				OK:       false,
				ErrMsg:   contract.PageErrorPrefix + fmt.Sprint(r),
			}
		}
	}()

	text := pg.Owner.Content[pg.Start:pg.End]

	if pg.IsProtected {
		out := string(text)
		pg.Owner.ProcessedPages[pg.ID] = out
		return contract.PageResult{
			FilePath:      pg.Owner.Path,
			PageID:        pg.ID,
			ProcessedText: out,
			OK:            true,
		}
	}

	processed, count := m.Apply(text)
	out := string(processed)
	pg.Owner.ProcessedPages[pg.ID] = out
	return contract.PageResult{
		FilePath:         pg.Owner.Path,
		PageID:           pg.ID,
		ProcessedText:    out,
		ReplacementCount: count,
		OK:               true,
	}
}
