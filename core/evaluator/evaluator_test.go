package evaluator

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackcalc/core/rewriter"
)

func TestBasicOperations(t *testing.T) {
	eval := NewEvaluator()

	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{"Addition", "2+3", "5"},
		{"Subtraction", "10-7", "3"},
		{"Multiplication", "4*5", "20"},
		{"Multiplication glyph", "4×5", "20"},
		{"Division", "15/3", "5"},
		{"Division glyph", "15÷3", "5"},
		{"Complex expression", "2+3*4", "14"},
		{"Parentheses", "(2+3)*4", "20"},
		{"Power", "2^3", "8"},
		{"Floating point", "3.5+2.5", "6"},
		{"Float noise", "0.1+0.2", "0.3"},
		{"Whitespace", " 1 +\t2 ", "3"},
		{"Leading dot", ".5+.5", "1"},
		{"Negative", "-3+1", "-2"},
		{"Plus then minus", "+-3", "-3"},
		{"Minus then plus", "5-+2", "3"},
		{"Negative exponent", "2^-1", "0.5"},
		{"Parenthesized negative base", "(-2)^2", "4"},
		{"Scientific literal", "1e3+1", "1001"},
		{"End to end", "(100+100)*2^2", "800"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eval.Evaluate(tt.expr, rewriter.Radians)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.expected, res.Text)
		})
	}
}

func TestOperatorPrecedence(t *testing.T) {
	eval := NewEvaluator()

	tests := []struct {
		expr     string
		expected float64
	}{
		{"2+3*4", 14},   // multiplication first
		{"10-2*3", 4},   // multiplication first
		{"20/4+3", 8},   // division first
		{"2^3*2", 16},   // power first
		{"2*3^2", 18},   // power first
		{"2^3^2", 512},  // power is right associative
		{"(2+3)*4", 20}, // parentheses override
		{"2*(3+4)", 14}, // parentheses override
		{"10-2-3", 5},   // left to right
		{"20/4/2", 2.5}, // left to right
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := eval.Evaluate(tt.expr, rewriter.Radians)
			require.NoError(t, res.Err)
			assert.InDelta(t, tt.expected, res.Value, 1e-9)
		})
	}
}

func TestPercent(t *testing.T) {
	eval := NewEvaluator()

	tests := []struct {
		expr     string
		expected string
	}{
		{"200+10%", "220"},
		{"200-10%", "180"},
		{"50%", "0.5"},
		{"200*10%", "20"},
		{"(1+2)*3+10%", "9.3"},
		{"100+10%+5%", "110.05"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := eval.Evaluate(tt.expr, rewriter.Radians)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.expected, res.Text)
		})
	}
}

func TestFunctions(t *testing.T) {
	eval := NewEvaluator()

	tests := []struct {
		expr     string
		mode     rewriter.AngleMode
		expected float64
	}{
		{"sin(90)", rewriter.Degrees, 1},
		{"cos(180)", rewriter.Degrees, -1},
		{"tan(45)", rewriter.Degrees, 1},
		{"sin(cos(0)*90)", rewriter.Degrees, 1},
		{"SIN(30)", rewriter.Degrees, 0.5},
		{"sin(90)", rewriter.Radians, math.Sin(90)},
		{"cos(π)", rewriter.Radians, -1},
		{"sqrt(16)", rewriter.Radians, 4},
		{"log(1000)", rewriter.Radians, 3},
		{"ln(e)", rewriter.Radians, 1},
		{"sqrt(4,9)", rewriter.Radians, 2},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+" "+tt.expr, func(t *testing.T) {
			res := eval.Evaluate(tt.expr, tt.mode)
			require.NoError(t, res.Err)
			assert.InDelta(t, tt.expected, res.Value, 1e-9)
		})
	}
}

func TestErrorCases(t *testing.T) {
	eval := NewEvaluator()

	tests := []struct {
		name string
		expr string
	}{
		{"Division by zero", "5/0"},
		{"Zero by zero", "0/0"},
		{"Negative square root", "sqrt(-1)"},
		{"Log of zero", "log(0)"},
		{"Overflow", "10^400"},
		{"Unmatched parentheses", "(2+3"},
		{"Extra closing parenthesis", "2+3)"},
		{"Empty parentheses content", "()"},
		{"Empty expression", ""},
		{"Only whitespace", "   "},
		{"Invalid characters", "2 + abc"},
		{"Host capability", "2+alert(1)"},
		{"Dangling operator", "2+"},
		{"Two dots", "1.2.3"},
		{"Lone dot", "."},
		{"Implicit multiplication", "2(3)"},
		{"Signed base of power", "-2^2"},
		{"Function without call", "sin+1"},
		{"Unbalanced percent left operand", "5)+10%"},
		{"Decrement operator", "--3"},
		{"Doubled minus", "5--2"},
		{"Spaced doubled minus", "5 - -2"},
		{"Increment operator", "5++2"},
		{"Too deep nesting", strings.Repeat("(", MaxDepth+1) + "1" + strings.Repeat(")", MaxDepth+1)},
		{"Too many signs", strings.Repeat("-+", MaxDepth) + "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eval.Evaluate(tt.expr, rewriter.Degrees)
			require.Error(t, res.Err)
			assert.True(t, errors.Is(res.Err, ErrInvalid))
			assert.False(t, res.OK())
			assert.Equal(t, "Error", res.String())
		})
	}
}

func TestNestingWithinLimit(t *testing.T) {
	eval := NewEvaluator()

	depth := MaxDepth / 2
	res := eval.Evaluate(strings.Repeat("(", depth)+"7"+strings.Repeat(")", depth), rewriter.Radians)
	require.NoError(t, res.Err)
	assert.Equal(t, "7", res.Text)
}

func TestVeryDeepNestingIsError(t *testing.T) {
	eval := NewEvaluator()

	n := 1_000_000
	res := eval.Evaluate(strings.Repeat("(", n)+"1"+strings.Repeat(")", n), rewriter.Radians)
	assert.True(t, errors.Is(res.Err, ErrSyntax))
	assert.Equal(t, "Error", res.String())
}

func TestInfinityInsideExpression(t *testing.T) {
	eval := NewEvaluator()

	res := eval.Evaluate("1/(1/0)", rewriter.Radians)
	require.NoError(t, res.Err)
	assert.Equal(t, "0", res.Text)
}

func TestVerySmallNumbers(t *testing.T) {
	eval := NewEvaluator()

	res := eval.Evaluate("0.0000001*0.000000000001", rewriter.Radians)
	require.NoError(t, res.Err)

	expected := 0.0000001 * 0.000000000001
	assert.InDelta(t, expected, res.Value, 1e-30)
	assert.Equal(t, "1e-19", res.Text)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{42, "42"},
		{-42, "-42"},
		{0.1 + 0.2, "0.3"},
		{1.0 / 3, "0.333333333333"},
		{2.0 / 3, "0.666666666667"},
		{123456.7891234567, "123456.789123"},
		{1e21, "1e+21"},
		{1.5e21, "1.5e+21"},
		{123456789012345680000, "123456789012345680000"},
		{0.000001, "0.000001"},
		{0.0000001, "1e-7"},
		{-0.00000012345, "-1.2345e-7"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.in))
		})
	}
}

func TestFormatNumberIdempotent(t *testing.T) {
	values := []float64{0, 1, -1, 0.1 + 0.2, math.Pi, -math.E, 1e-9, 1.23456789e15, 9.87654321e25, 1.0 / 7}

	for _, v := range values {
		once := FormatNumber(v)
		parsed, err := strconv.ParseFloat(once, 64)
		require.NoError(t, err)
		assert.Equal(t, once, FormatNumber(parsed), "value %v", v)
	}
}

func TestParseRejectsUnknownNames(t *testing.T) {
	eval := NewEvaluator()

	for _, expr := range []string{"Math", "process", "alert(1)", "constructor", "x"} {
		_, err := eval.Parse(expr)
		assert.ErrorIs(t, err, ErrSyntax, expr)
	}
}

func BenchmarkSimpleAddition(b *testing.B) {
	eval := NewEvaluator()
	for i := 0; i < b.N; i++ {
		eval.Evaluate("2+3", rewriter.Radians)
	}
}

func BenchmarkComplexExpression(b *testing.B) {
	eval := NewEvaluator()
	for i := 0; i < b.N; i++ {
		eval.Evaluate("(10+5)*2-3/3+2^3+sin(30)+10%", rewriter.Degrees)
	}
}
