package expr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining/expr"
)

func eval(t *testing.T, src string, vars expr.Vars) float64 {
	t.Helper()
	prog, err := expr.Compile(src)
	require.NoError(t, err)
	v, err := prog.Eval(vars)
	require.NoError(t, err)
	return v
}

func TestCompileAndEvalArithmetic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"2 ^ 10", 1024},
		{"-3 + 5", 2},
		{"10 / 4", 2.5},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.want, eval(t, c.src, nil))
		})
	}
}

func TestCompileAndEvalBooleanAndComparisons(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, eval(t, "1 < 2 && 3 > 2", nil))
	assert.Equal(t, 0.0, eval(t, "1 < 2 && 3 < 2", nil))
	assert.Equal(t, 1.0, eval(t, "1 == 1 || 0 == 1", nil))
	assert.Equal(t, 1.0, eval(t, "!(1 == 2)", nil))
}

func TestCompileAndEvalBuiltinFunctions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3.0, eval(t, "abs(-3)", nil))
	assert.Equal(t, 4.0, eval(t, "sqrt(16)", nil))
	assert.Equal(t, 5.0, eval(t, "clamp(10, 0, 5)", nil))
	assert.Equal(t, 0.0, eval(t, "clamp(-10, 0, 5)", nil))
	assert.Equal(t, 2.5, eval(t, "lerp(0, 5, 0.5)", nil))
	assert.InDelta(t, 0.5, eval(t, "smoothstep(0, 1, 0.5)", nil), 1e-9)
}

func TestEvalVariableLookupIsNormalizedAndDefaultsToZero(t *testing.T) {
	t.Parallel()

	vars := expr.Vars{"avg_land_value": 42}
	assert.Equal(t, 42.0, eval(t, "AVG_LAND_VALUE", vars))
	assert.Equal(t, 42.0, eval(t, "avgLandValue", vars))
	assert.Equal(t, 0.0, eval(t, "unknown_variable", vars))
}

func TestEvalConstantsPiAndE(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, math.Pi, eval(t, "pi", nil), 1e-12)
	assert.InDelta(t, math.E, eval(t, "e", nil), 1e-12)
}

func TestCompileErrorIncludesCaretPosition(t *testing.T) {
	t.Parallel()

	_, err := expr.Compile("1 + )")
	require.Error(t, err)

	var parseErr *expr.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "^")
}

func TestEvalStackUnderflowIsAnError(t *testing.T) {
	t.Parallel()

	prog := &expr.Program{Code: []expr.Instr{{Op: expr.OpAdd}}}
	_, err := prog.Eval(nil)
	assert.Error(t, err)
}

func TestHelpTextListsVariablesAndFunctions(t *testing.T) {
	t.Parallel()

	help := expr.HelpText()
	assert.Contains(t, help, "variables:")
	assert.Contains(t, help, "functions:")
	assert.Contains(t, help, "population")
}
