package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/declvar/internal/vers"
)

func testRegistry(t *testing.T, names ...string) *vers.Registry {
	t.Helper()

	reg, err := vers.New(names)
	require.NoError(t, err)

	return reg
}

func mustParse(t *testing.T, src string) Expr {
	t.Helper()

	expr, err := Parse(src)
	require.NoError(t, err)

	return expr
}

func TestEval_MatchPrefix(t *testing.T) {
	reg := testRegistry(t, "v1_0_0", "v1_0_1", "v1_1_0", "v2_0_0")
	expr := mustParse(t, `"v1"`)

	assert.True(t, Eval(expr, reg, "v1_0_0"))
	assert.True(t, Eval(expr, reg, "v1_1_0"))
	assert.False(t, Eval(expr, reg, "v2_0_0"))
}

func TestEval_PatternLongerThanCandidate(t *testing.T) {
	reg := testRegistry(t, "v1", "v1_0_0")
	expr := mustParse(t, `"v1_0_0"`)

	assert.False(t, Eval(expr, reg, "v1"))
	assert.True(t, Eval(expr, reg, "v1_0_0"))
}

func TestEval_EmptyPatternMatchesEverything(t *testing.T) {
	reg := testRegistry(t, "v1", "v2", "anything")
	expr := mustParse(t, `""`)

	for _, v := range reg.Names() {
		assert.True(t, Eval(expr, reg, v), "version %s", v)
	}
}

func TestEval_Positional(t *testing.T) {
	reg := testRegistry(t, "v1_0_0", "v1_0_1", "v1_1_0", "v2_0_0")

	atMost := mustParse(t, `max("v1_0_1")`)
	assert.True(t, Eval(atMost, reg, "v1_0_0"))
	assert.True(t, Eval(atMost, reg, "v1_0_1"))
	assert.False(t, Eval(atMost, reg, "v1_1_0"))
	assert.False(t, Eval(atMost, reg, "v2_0_0"))

	atLeast := mustParse(t, `min("v1_1_0")`)
	assert.False(t, Eval(atLeast, reg, "v1_0_0"))
	assert.False(t, Eval(atLeast, reg, "v1_0_1"))
	assert.True(t, Eval(atLeast, reg, "v1_1_0"))
	assert.True(t, Eval(atLeast, reg, "v2_0_0"))

	atMostExcl := mustParse(t, `max_excl("v1_1_0")`)
	assert.True(t, Eval(atMostExcl, reg, "v1_0_1"))
	assert.False(t, Eval(atMostExcl, reg, "v1_1_0"))

	atLeastExcl := mustParse(t, `min_excl("v1_0_1")`)
	assert.False(t, Eval(atLeastExcl, reg, "v1_0_1"))
	assert.True(t, Eval(atLeastExcl, reg, "v1_1_0"))
}

func TestEval_PositionalUsesRegistryOrderNotSemver(t *testing.T) {
	// "v10" is listed before "v2"; position wins, not numeric value.
	reg := testRegistry(t, "v10", "v2")
	expr := mustParse(t, `min("v2")`)

	assert.False(t, Eval(expr, reg, "v10"))
	assert.True(t, Eval(expr, reg, "v2"))
}

func TestEval_NotIsComplement(t *testing.T) {
	reg := testRegistry(t, "v1_0_0", "v1_0_1", "v1_1_0", "v2_0_0")

	for _, src := range []string{
		`"v1"`,
		`""`,
		`min("v1_0_1")`,
		`max_excl("v1_1_0")`,
		`any("v1_0_0", "v2")`,
		`all()`,
		`any()`,
	} {
		expr := mustParse(t, src)
		negated := &Not{X: expr}

		for _, v := range reg.Names() {
			assert.Equal(t, !Eval(expr, reg, v), Eval(negated, reg, v),
				"filter %s, version %s", src, v)
		}
	}
}

func TestEval_EmptyAnyIsFalse(t *testing.T) {
	reg := testRegistry(t, "v1", "v2")
	expr := mustParse(t, `any()`)

	for _, v := range reg.Names() {
		assert.False(t, Eval(expr, reg, v))
	}
}

func TestEval_EmptyAllIsFalse(t *testing.T) {
	reg := testRegistry(t, "v1", "v2")
	expr := mustParse(t, `all()`)

	for _, v := range reg.Names() {
		assert.False(t, Eval(expr, reg, v))
	}
}

func TestEval_AnyAll(t *testing.T) {
	reg := testRegistry(t, "v1", "v2", "v3")

	anyExpr := mustParse(t, `any("v1", "v3")`)
	assert.True(t, Eval(anyExpr, reg, "v1"))
	assert.False(t, Eval(anyExpr, reg, "v2"))
	assert.True(t, Eval(anyExpr, reg, "v3"))

	allExpr := mustParse(t, `all("v", not("v2"))`)
	assert.True(t, Eval(allExpr, reg, "v1"))
	assert.False(t, Eval(allExpr, reg, "v2"))
	assert.True(t, Eval(allExpr, reg, "v3"))
}

func TestVerify_MatchNeverFails(t *testing.T) {
	reg := testRegistry(t, "v1", "v2")

	// Prefix patterns are free-form: no registry entry needs to match.
	assert.NoError(t, Verify(mustParse(t, `"does_not_exist"`), reg))
	assert.NoError(t, Verify(mustParse(t, `""`), reg))
}

func TestVerify_PositionalRequiresExactName(t *testing.T) {
	reg := testRegistry(t, "v1_0_0", "v2_0_0")

	assert.NoError(t, Verify(mustParse(t, `min("v2_0_0")`), reg))

	// An exact match is required: a prefix of a declared name fails.
	err := Verify(mustParse(t, `min("v2")`), reg)
	require.Error(t, err)

	var refErr *UnknownVersionRefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "v2", refErr.Name)
}

func TestVerify_UnknownReference(t *testing.T) {
	reg := testRegistry(t, "v1", "v2")

	err := Verify(mustParse(t, `max("v9_9_9")`), reg)
	require.Error(t, err)

	var refErr *UnknownVersionRefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "v9_9_9", refErr.Name)
	assert.Equal(t, 1, refErr.Pos.Line)
}

func TestVerify_Recurses(t *testing.T) {
	reg := testRegistry(t, "v1", "v2")

	err := Verify(mustParse(t, `any("v1", not(all("v2", min("v3"))))`), reg)
	require.Error(t, err)

	var refErr *UnknownVersionRefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "v3", refErr.Name)
}
