// SPDX-License-Identifier: MIT
package plugins

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
)

// CalculatorPlugin evaluates arithmetic expressions as an instant answer.
//
// Grounded on original_source/src/plugins/calculator.rs: a recursive-descent
// evaluator operating on string slicing rather than a tokenizer, splitting
// on the rightmost operator at each precedence level (parens, then +/-,
// then */÷, then ^, then constants, then functions, then a number literal).
type CalculatorPlugin struct {
	*Base
}

// NewCalculatorPlugin returns the calculator instant-answer plugin.
func NewCalculatorPlugin() *CalculatorPlugin {
	return &CalculatorPlugin{
		Base: NewBase("calculator", "Calculator", "Evaluate mathematical expressions", true, "=", "calc", "calculate"),
	}
}

// MatchesQuery triggers on a leading "=", "calc ", "calculate ", or any
// string made only of digits/operators/parens/spaces that contains at
// least one arithmetic operator.
func (p *CalculatorPlugin) MatchesQuery(query string) bool {
	q := strings.TrimSpace(query)
	if strings.HasPrefix(q, "=") || strings.HasPrefix(q, "calc ") || strings.HasPrefix(q, "calculate ") {
		return true
	}
	onlyArith := true
	hasOperator := false
	for _, c := range q {
		switch {
		case c >= '0' && c <= '9':
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			hasOperator = true
		case c == '(' || c == ')' || c == '.' || c == ' ':
		default:
			onlyArith = false
		}
	}
	return onlyArith && hasOperator
}

// Process strips the triggering prefix and evaluates the remainder.
func (p *CalculatorPlugin) Process(query string) (*engine.Answer, bool) {
	expr := strings.TrimSpace(query)
	expr = strings.TrimPrefix(expr, "=")
	expr = strings.TrimPrefix(expr, "calc ")
	expr = strings.TrimPrefix(expr, "calculate ")
	expr = strings.TrimSpace(expr)

	result, ok := p.evaluate(expr)
	if !ok {
		return nil, false
	}

	var formatted string
	if result == math.Trunc(result) {
		formatted = fmt.Sprintf("%s = %d", expr, int64(result))
	} else {
		formatted = fmt.Sprintf("%s = %.6f", expr, result)
	}
	return &engine.Answer{Text: formatted, Engine: "calculator"}, true
}

func (p *CalculatorPlugin) evaluate(expr string) (float64, bool) {
	r := strings.NewReplacer(" ", "", "×", "*", "÷", "/", "−", "-", ",", "")
	return parseExpression(r.Replace(strings.TrimSpace(expr)))
}

func parseExpression(expr string) (float64, bool) {
	if start := strings.LastIndexByte(expr, '('); start >= 0 {
		if end := strings.IndexByte(expr[start:], ')'); end >= 0 {
			inner := expr[start+1 : start+end]
			if result, ok := parseExpression(inner); ok {
				newExpr := expr[:start] + formatFloat(result) + expr[start+end+1:]
				return parseExpression(newExpr)
			}
		}
		return 0, false
	}

	if pos, found := findLastAddSub(expr); found {
		left := expr[:pos]
		right := expr[pos+1:]
		op := expr[pos]
		if left != "" {
			leftVal, ok1 := parseExpression(left)
			rightVal, ok2 := parseExpression(right)
			if !ok1 || !ok2 {
				return 0, false
			}
			if op == '+' {
				return leftVal + rightVal, true
			}
			return leftVal - rightVal, true
		}
	}

	if pos := lastIndexAny(expr, "*/"); pos >= 0 {
		left := expr[:pos]
		right := expr[pos+1:]
		op := expr[pos]
		leftVal, ok1 := parseExpression(left)
		rightVal, ok2 := parseExpression(right)
		if !ok1 || !ok2 {
			return 0, false
		}
		if op == '*' {
			return leftVal * rightVal, true
		}
		if rightVal == 0.0 {
			return 0, false
		}
		return leftVal / rightVal, true
	}

	if pos := strings.LastIndexByte(expr, '^'); pos >= 0 {
		left := expr[:pos]
		right := expr[pos+1:]
		leftVal, ok1 := parseExpression(left)
		rightVal, ok2 := parseExpression(right)
		if !ok1 || !ok2 {
			return 0, false
		}
		return math.Pow(leftVal, rightVal), true
	}

	switch strings.ToLower(expr) {
	case "pi":
		return math.Pi, true
	case "e":
		return math.E, true
	}

	for _, fn := range []struct {
		prefix string
		apply  func(float64) float64
	}{
		{"sqrt", math.Sqrt},
		{"sin", math.Sin},
		{"cos", math.Cos},
		{"tan", math.Tan},
		{"log", math.Log10},
		{"ln", math.Log},
	} {
		if strings.HasPrefix(expr, fn.prefix) {
			inner := strings.TrimPrefix(expr, fn.prefix)
			val, ok := parseExpression(inner)
			if !ok {
				return 0, false
			}
			return fn.apply(val), true
		}
	}

	val, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// findLastAddSub replicates calculator.rs's
// expr.rfind(|c| c == '+' || (c == '-' && pos_is_operator(expr, c))): it
// scans for the rightmost '+', or '-', where posIsOperator's check (itself
// keyed off the last '-' in the whole expression, not the occurrence being
// tested) says that '-' isn't a unary sign.
func findLastAddSub(expr string) (int, bool) {
	for i := len(expr) - 1; i >= 0; i-- {
		c := expr[i]
		if c == '+' || (c == '-' && posIsOperator(expr, c)) {
			return i, true
		}
	}
	return -1, false
}

func posIsOperator(expr string, c byte) bool {
	if c != '-' {
		return true
	}
	idx := strings.LastIndexByte(expr, '-')
	if idx < 0 {
		return false
	}
	if idx == 0 {
		return false
	}
	switch expr[idx-1] {
	case '+', '-', '*', '/', '^', '(':
		return false
	}
	return true
}

func lastIndexAny(expr string, chars string) int {
	for i := len(expr) - 1; i >= 0; i-- {
		if strings.IndexByte(chars, expr[i]) >= 0 {
			return i
		}
	}
	return -1
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
