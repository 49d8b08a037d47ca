package plan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/declvar/internal/decl"
	"github.com/hupe1980/declvar/internal/emit"
)

func variantWithField(version, fieldName string) emit.Variant {
	return emit.Variant{
		Version: version,
		Node: &decl.Container{Name: version, Children: []decl.Node{
			&decl.Struct{Name: "Example", Fields: []*decl.Field{{Name: fieldName, Type: "string"}}},
		}},
	}
}

func TestCompareVariants_Identical(t *testing.T) {
	a := variantWithField("v1", "foo")
	b := emit.Variant{Version: "v2", Node: &decl.Container{Name: "v1", Children: a.Node.(*decl.Container).Children}}

	result, err := CompareVariants(a, b, DefaultDiffOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)
	assert.Empty(t, result.Hunks)
}

func TestCompareVariants_Different(t *testing.T) {
	result, err := CompareVariants(variantWithField("v1", "old_field"), variantWithField("v2", "new_field"), DefaultDiffOptions())
	require.NoError(t, err)

	assert.True(t, result.HasDifferences)
	assert.NotEmpty(t, result.Hunks)
	assert.Contains(t, result.Unified, "-") // removal present
	assert.Contains(t, result.Unified, "old_field")
	assert.Contains(t, result.Unified, "new_field")
	assert.Contains(t, result.Unified, "v1")
	assert.Contains(t, result.Unified, "v2")
}

func TestWriteDiff_NoColor(t *testing.T) {
	result, err := CompareVariants(variantWithField("v1", "foo"), variantWithField("v2", "bar"), DefaultDiffOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteDiff(&buf, result, false)

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "foo")
	assert.Contains(t, out, "bar")
}

func TestWriteDiff_WithColor(t *testing.T) {
	result, err := CompareVariants(variantWithField("v1", "foo"), variantWithField("v2", "bar"), DefaultDiffOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteDiff(&buf, result, true)
	assert.Contains(t, buf.String(), "\033[")
}

func TestWriteDiff_Identical(t *testing.T) {
	result := &DiffResult{OldLabel: "v1", NewLabel: "v2"}

	var buf bytes.Buffer
	WriteDiff(&buf, result, false)
	assert.Contains(t, buf.String(), "identical")
}
