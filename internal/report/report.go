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

// Package report renders a batch of contract.ProcessingResult as colored
// terminal output: a per-file line as results come in, and an aligned
// summary table once the batch completes. It is a pure presentation
// layer; it never alters the results it prints.
package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/haukzero/punp/pkg/contract"
)

const (
	fileIndent = 4
	nameWidth  = 40
)

// 🎯 Reporter prints per-file lines as they're produced and a final summary
// table over the whole batch.
type Reporter struct {
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a Reporter writing to console.
func New(console io.Writer) *Reporter {
	return &Reporter{console: console}
}

// 📝 FileResult prints one line for a single ProcessingResult, matching it
// against a symbol/color the way the reference CLI marks new/modified/
// unmanaged files.
func (r *Reporter) FileResult(ctx context.Context, res contract.ProcessingResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var symbol rune
	var symbolColor color.Attribute
	status := "unchanged"
	switch {
	case !res.OK:
		symbol, symbolColor, status = '✗', color.FgRed, "failed"
	case res.ReplacementCount > 0:
		symbol, symbolColor, status = '⟳', color.FgBlue, "rewritten"
	default:
		symbol, symbolColor = '•', color.FgCyan
	}

	fmt.Fprintf(r.console, "%*s%s %-*s %s\n",
		fileIndent, "",
		color.New(symbolColor).Sprint(string(symbol)),
		nameWidth, res.FilePath,
		status)

	logger := zerolog.Ctx(ctx)
	ev := logger.Info()
	if !res.OK {
		ev = logger.Warn()
	}
	ev.Str("file", res.FilePath).
		Bool("ok", res.OK).
		Int("replacements", res.ReplacementCount).
		Str("err", res.ErrMsg).
		Msg("file processed")
}

// 📝 Summary prints an aligned pterm table over the whole batch and returns
// the aggregate counts, so cmd/punp can decide the process exit code.
func (r *Reporter) Summary(results []contract.ProcessingResult) (changed, unchanged, failed, totalReplacements int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := pterm.TableData{{"File", "Status", "Replacements"}}
	for _, res := range results {
		switch {
		case !res.OK:
			failed++
			rows = append(rows, []string{res.FilePath, "failed: " + res.ErrMsg, "-"})
		case res.ReplacementCount > 0:
			changed++
			totalReplacements += res.ReplacementCount
			rows = append(rows, []string{res.FilePath, "rewritten", fmt.Sprint(res.ReplacementCount)})
		default:
			unchanged++
			rows = append(rows, []string{res.FilePath, "unchanged", "0"})
		}
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(r.console).Render()

	pterm.DefaultBasicText.WithWriter(r.console).Printf(
		"%s changed, %s unchanged, %s failed, %s total replacements\n",
		color.New(color.FgGreen).Sprintf("%d", changed),
		color.New(color.FgCyan).Sprintf("%d", unchanged),
		color.New(color.FgRed).Sprintf("%d", failed),
		color.New(color.Bold).Sprintf("%d", totalReplacements),
	)

	return changed, unchanged, failed, totalReplacements
}

// 📝 Header prints a bold section header, in the reference CLI's style.
func (r *Reporter) Header(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	title := color.New(color.Bold, color.FgCyan).Sprint("punp")
	fmt.Fprintf(r.console, "\n%s %s\n\n", title, color.New(color.Faint).Sprint("• "+msg))
}
