package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 3", 5},
		{"10 - 4", 6},
		{"6 * 7", 42},
		{"15 / 4", 3.75},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"-5 + 3", -2},
		{"-(2 + 3)", -5},
		{"--4", 4},
		{"1.5 * 2", 3},
		{"100 / 10 / 2", 5},
		{"  7  ", 7},
		{"((1))", 1},
		{"2*(3+4)-5", 9},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	exprs := []string{
		"",
		"1 / 0",
		"2 +",
		"(1 + 2",
		"1 + 2)",
		"abc",
		"2 ** 3",
		"1 + x",
		"1..2",
		"import os",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := Evaluate(expr)
			require.ErrorIs(t, err, ErrBadExpression)
		})
	}
}

func TestFormatResult(t *testing.T) {
	require.Equal(t, "The result of 2 + 3 is 5", FormatResult(" 2 + 3 ", 5))
	require.Equal(t, "The result of 15 / 4 is 3.75", FormatResult("15 / 4", 3.75))
}
