package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukzero/punp/pkg/contract"
	"github.com/haukzero/punp/pkg/matcher"
)

func TestApply_BasicReplace(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{",": "，", ".": "。"})

	out, count := matcher.ApplyString(m, "hello, world.")

	assert.Equal(t, "hello， world。", out)
	assert.Equal(t, 2, count)
}

func TestApply_LongestMatch(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{"ab": "X", "abc": "Y"})

	out, count := matcher.ApplyString(m, "xabcy")

	assert.Equal(t, "xYy", out)
	assert.Equal(t, 1, count)
}

func TestApply_NonOverlapping(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{"aa": "b"})

	out, count := matcher.ApplyString(m, "aaaa")

	require.Equal(t, 2, count)
	assert.Equal(t, "bb", out)
}

func TestApply_EmptyRuleSet(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{})

	out, count := matcher.ApplyString(m, "unchanged")

	assert.Equal(t, "unchanged", out)
	assert.Equal(t, 0, count)
}

func TestApply_EmptyText(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{"a": "b"})

	out, count := m.Apply(nil)

	assert.Nil(t, out)
	assert.Equal(t, 0, count)
}

func TestApply_NoOccurrence(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{"zz": "y"})

	out, count := matcher.ApplyString(m, "no patterns here")

	assert.Equal(t, "no patterns here", out)
	assert.Equal(t, 0, count)
}

func TestBuild_SkipsEmptyPattern(t *testing.T) {
	m := matcher.Build(contract.ReplacementMap{"": "ignored", "x": "y"})

	out, count := matcher.ApplyString(m, "xxx")

	assert.Equal(t, "yyy", out)
	assert.Equal(t, 3, count)
}
