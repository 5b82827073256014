package local

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"

	"vanta/internal/domain"
)

// calcEnv exposes the constants and functions allowed in calculator queries
var calcEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"ln":    math.Log,
	"log":   math.Log10,
	"exp":   math.Exp,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

// evaluate returns the numeric value of a math query. Queries without a
// digit, non-numeric results and non-finite results are rejected.
func evaluate(query string) (float64, bool) {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, "=")
	if q == "" || !strings.ContainsFunc(q, unicode.IsDigit) {
		return 0, false
	}

	program, err := expr.Compile(q, expr.Env(calcEnv), expr.AsFloat64())
	if err != nil {
		return 0, false
	}
	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return 0, false
	}
	v, ok := out.(float64)
	if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// formatNumber prints integers without a fraction and trims float noise
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', 12, 64)
}

func calcResult(query string, weight int) (domain.ResultItem, bool) {
	v, ok := evaluate(query)
	if !ok {
		return domain.ResultItem{}, false
	}
	s := formatNumber(v)
	return domain.ResultItem{
		ID:       "calc",
		Source:   domain.SourceCalculator,
		Title:    "= " + s,
		Subtitle: strings.TrimSpace(query),
		Icon:     "calculator",
		Exec:     domain.PrefixCopy + s,
		Score:    weightedScore(900_000, weight),
	}, true
}
