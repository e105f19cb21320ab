package ruleconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukzero/punp/internal/ruleconfig"
	"github.com/haukzero/punp/pkg/contract"
)

func TestParse_ReplaceAndDel(t *testing.T) {
	src := `
		REPLACE(FROM ",", TO "，");
		REPLACE(FROM ".", TO "。");
		DEL(FROM ".");
	`

	rep, protected, err := ruleconfig.Parse(src)

	require.NoError(t, err)
	assert.Equal(t, contract.ReplacementMap{",": "，", ".": ""}, rep)
	assert.Empty(t, protected)
}

func TestParse_LastReplaceWins(t *testing.T) {
	src := `REPLACE(FROM "a", TO "1"); REPLACE(FROM "a", TO "2");`

	rep, _, err := ruleconfig.Parse(src)

	require.NoError(t, err)
	assert.Equal(t, "2", rep["a"])
}

func TestParse_Clear(t *testing.T) {
	src := `REPLACE(FROM "a", TO "b"); CLEAR(); REPLACE(FROM "c", TO "d");`

	rep, _, err := ruleconfig.Parse(src)

	require.NoError(t, err)
	assert.Equal(t, contract.ReplacementMap{"c": "d"}, rep)
}

func TestParse_ProtectAndProtectContent(t *testing.T) {
	src := `
		PROTECT(START_MARKER "` + "`" + `", END_MARKER "` + "`" + `");
		PROTECT_CONTENT(CONTENT "TODO");
	`

	_, protected, err := ruleconfig.Parse(src)

	require.NoError(t, err)
	require.Len(t, protected, 2)
	assert.Equal(t, "`", protected[0].Start)
	assert.Equal(t, "`", protected[0].End)
	assert.Equal(t, "TODO", protected[1].Start)
	assert.Equal(t, "", protected[1].End)
}

func TestParse_CommentsAreSkipped(t *testing.T) {
	src := `
		// line comment
		/* block
		   comment */
		REPLACE(FROM "a", TO "b"); // trailing
	`

	rep, _, err := ruleconfig.Parse(src)

	require.NoError(t, err)
	assert.Equal(t, "b", rep["a"])
}

func TestParse_CaseInsensitiveKeywords(t *testing.T) {
	src := `replace(from "a", to "b");`

	rep, _, err := ruleconfig.Parse(src)

	require.NoError(t, err)
	assert.Equal(t, "b", rep["a"])
}

func TestParse_UnknownStatementReportsLocation(t *testing.T) {
	src := `BOGUS(FROM "a");`

	_, _, err := ruleconfig.Parse(src)

	require.Error(t, err)
	pe, ok := err.(*ruleconfig.ParseError)
	require.True(t, ok)
	assert.Equal(t, 1, pe.Line)
}

func TestParse_MissingRequiredKeyIsAnError(t *testing.T) {
	src := `REPLACE(FROM "a");`

	_, _, err := ruleconfig.Parse(src)

	assert.Error(t, err)
}

func TestParse_TrailingCommaIsAnError(t *testing.T) {
	src := `REPLACE(FROM "a", TO "b",);`

	_, _, err := ruleconfig.Parse(src)

	assert.Error(t, err)
}

func TestParse_AbortsAtFirstError(t *testing.T) {
	src := `
		REPLACE(FROM "a", TO "b");
		BOGUS();
		REPLACE(FROM "c", TO "d");
	`

	rep, _, err := ruleconfig.Parse(src)

	require.Error(t, err)
	assert.Nil(t, rep)
}
