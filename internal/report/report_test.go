package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haukzero/punp/internal/report"
	"github.com/haukzero/punp/pkg/contract"
)

func TestSummary_AggregatesCounts(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	changed, unchanged, failed, total := r.Summary([]contract.ProcessingResult{
		{FilePath: "a.tex", OK: true, ReplacementCount: 3},
		{FilePath: "b.tex", OK: true, ReplacementCount: 0},
		{FilePath: "c.tex", OK: false, ErrMsg: "boom"},
	})

	assert.Equal(t, 1, changed)
	assert.Equal(t, 1, unchanged)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, total)
	assert.NotEmpty(t, buf.String())
}

func TestSummary_EmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	changed, unchanged, failed, total := r.Summary(nil)

	assert.Zero(t, changed)
	assert.Zero(t, unchanged)
	assert.Zero(t, failed)
	assert.Zero(t, total)
}
