package rewriter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		mode     AngleMode
		expected string
	}{
		{"Glyphs", "6×7÷2", Radians, "6*7/2"},
		{"Whitespace", " 1 + 2\t* 3 ", Radians, "1+2*3"},
		{"Contextual percent plus", "200+10%", Radians, "200+(200*10/100)"},
		{"Contextual percent minus", "200-10%", Radians, "200-(200*10/100)"},
		{"Contextual percent after paren", "(50)+10%", Radians, "(50)+(50)*10/100)"},
		{"Contextual percent short left operand", "(1+2)*3+10%", Radians, "(1+2)*3+(3*10/100)"},
		{"Standalone percent", "50%", Radians, "(50/100)"},
		{"Percent after multiplication", "200*10%", Radians, "200*(10/100)"},
		{"Power", "2^3^2", Radians, "2**3**2"},
		{"Functions", "sqrt(4)+log(100)+ln(1)", Radians, "sqrt(4)+log10(100)+ln(1)"},
		{"Function case", "SQRT(4)+Log(10)+SIN(0)", Radians, "sqrt(4)+log10(10)+sin(0)"},
		{"Radian trig untouched", "sin(30)+cos(60)", Radians, "sin(30)+cos(60)"},
		{"Degree trig", "sin(90)", Degrees, "sin((π/180)*(90))"},
		{"Degree trig nested parens", "cos((1+2)*30)", Degrees, "cos((π/180)*((1+2)*30))"},
		{"Degree trig nested call", "sin(cos(0))", Degrees, "sin((π/180)*(cos((π/180)*(0))))"},
		{"Degree trig siblings", "sin(30)+tan(45)", Degrees, "sin((π/180)*(30))+tan((π/180)*(45))"},
		{"Degree trig unterminated", "sin(30", Degrees, "sin((π/180)*(30)"},
		{"End to end", "(100+100)*2^2", Degrees, "(100+100)*2**2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rewrite(tt.raw, tt.mode))
		})
	}
}

func TestRewriteBalancesDegreeWrappers(t *testing.T) {
	inputs := []string{
		"sin(90)",
		"sin(cos(tan(45)))",
		"sin((1+(2*3))*cos(0))+cos(sin(0))",
		"tan(sin(30)*(cos(60)+1))",
	}

	for _, in := range inputs {
		out := Rewrite(in, Degrees)
		assert.Equal(t, strings.Count(out, "("), strings.Count(out, ")"), out)
		assert.Equal(t, strings.Count(in, "sin(")+strings.Count(in, "cos(")+strings.Count(in, "tan("),
			strings.Count(out, DegreeFactor), out)
	}
}

func TestRewriteIsRepeatable(t *testing.T) {
	raw := "sin(30)+200+10%^2"
	first := Rewrite(raw, Degrees)
	assert.Equal(t, first, Rewrite(raw, Degrees))
}

func TestAngleMode(t *testing.T) {
	assert.Equal(t, "DEG", Degrees.String())
	assert.Equal(t, "RAD", Radians.String())
	assert.Equal(t, Radians, Degrees.Toggle())
	assert.Equal(t, Degrees, Radians.Toggle())

	mode, err := ParseAngleMode("rad")
	require.NoError(t, err)
	assert.Equal(t, Radians, mode)

	mode, err = ParseAngleMode("DEG")
	require.NoError(t, err)
	assert.Equal(t, Degrees, mode)

	_, err = ParseAngleMode("grad")
	assert.Error(t, err)
}
