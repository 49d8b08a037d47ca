package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_String(t *testing.T) {
	expr, err := Parse(`"v1_0"`)
	require.NoError(t, err)

	m, ok := expr.(*Match)
	require.True(t, ok)
	assert.Equal(t, "v1_0", m.Pattern)
}

func TestParse_EmptyString(t *testing.T) {
	expr, err := Parse(`""`)
	require.NoError(t, err)

	m, ok := expr.(*Match)
	require.True(t, ok)
	assert.Empty(t, m.Pattern)
}

func TestParse_EscapedString(t *testing.T) {
	expr, err := Parse(`"a\"b\\c"`)
	require.NoError(t, err)

	m, ok := expr.(*Match)
	require.True(t, ok)
	assert.Equal(t, `a"b\c`, m.Pattern)
}

func TestParse_Not(t *testing.T) {
	expr, err := Parse(`not("v1")`)
	require.NoError(t, err)

	n, ok := expr.(*Not)
	require.True(t, ok)

	m, ok := n.X.(*Match)
	require.True(t, ok)
	assert.Equal(t, "v1", m.Pattern)
}

func TestParse_AnyAll(t *testing.T) {
	expr, err := Parse(`any("v1", all("v2", not("v3")))`)
	require.NoError(t, err)

	anyExpr, ok := expr.(*Any)
	require.True(t, ok)
	require.Len(t, anyExpr.List, 2)

	allExpr, ok := anyExpr.List[1].(*All)
	require.True(t, ok)
	assert.Len(t, allExpr.List, 2)
}

func TestParse_EmptyArgLists(t *testing.T) {
	expr, err := Parse(`any()`)
	require.NoError(t, err)
	anyExpr, ok := expr.(*Any)
	require.True(t, ok)
	assert.Empty(t, anyExpr.List)

	expr, err = Parse(`all()`)
	require.NoError(t, err)
	allExpr, ok := expr.(*All)
	require.True(t, ok)
	assert.Empty(t, allExpr.List)
}

func TestParse_PositionalOperators(t *testing.T) {
	expr, err := Parse(`min("v1_1_0")`)
	require.NoError(t, err)
	atLeast, ok := expr.(*AtLeast)
	require.True(t, ok)
	assert.Equal(t, "v1_1_0", atLeast.Name)

	expr, err = Parse(`max("v1_0_1")`)
	require.NoError(t, err)
	atMost, ok := expr.(*AtMost)
	require.True(t, ok)
	assert.Equal(t, "v1_0_1", atMost.Name)

	expr, err = Parse(`min_excl("v1_0_1")`)
	require.NoError(t, err)
	_, ok = expr.(*AtLeastExcl)
	assert.True(t, ok)

	expr, err = Parse(`max_excl("v1_1_0")`)
	require.NoError(t, err)
	_, ok = expr.(*AtMostExcl)
	assert.True(t, ok)
}

func TestParse_WhitespaceTolerated(t *testing.T) {
	_, err := Parse(" any( \"v1\" ,\n\t\"v2\" ) ")
	require.NoError(t, err)
}

func TestParse_UnknownOperator(t *testing.T) {
	_, err := Parse(`between("v1", "v2")`)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Error(), "unknown operator")
	assert.Equal(t, 1, parseErr.Pos.Line)
	assert.Equal(t, 1, parseErr.Pos.Column)
}

func TestParse_SyntaxErrors(t *testing.T) {
	for _, src := range []string{
		``,
		`not`,
		`not(`,
		`not()`,
		`not("v1", "v2")`,
		`min()`,
		`min("v1", "v2")`,
		`min(not("v1"))`,
		`"v1" "v2"`,
		`"unterminated`,
		`any("v1" "v2")`,
		`)`,
		`"bad\escape"`,
	} {
		_, err := Parse(src)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "input: %s", src)
	}
}

func TestParse_PositionTracking(t *testing.T) {
	_, err := Parse("any(\"v1\",\n  bogus(\"v2\"))")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Pos.Line)
	assert.Equal(t, 3, parseErr.Pos.Column)
}
