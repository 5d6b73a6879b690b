// SPDX-License-Identifier: MIT
package plugins

import "testing"

func TestCalculator_BasicArithmetic(t *testing.T) {
	p := NewCalculatorPlugin()
	cases := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"10-3", 7},
		{"5*4", 20},
		{"15/3", 5},
	}
	for _, c := range cases {
		got, ok := p.evaluate(c.expr)
		if !ok || got != c.want {
			t.Errorf("evaluate(%q) = %v, %v; want %v, true", c.expr, got, ok, c.want)
		}
	}
}

func TestCalculator_ComplexExpressions(t *testing.T) {
	p := NewCalculatorPlugin()
	if got, ok := p.evaluate("2+3*4"); !ok || got != 14 {
		t.Fatalf("2+3*4 = %v, %v", got, ok)
	}
	if got, ok := p.evaluate("2^3"); !ok || got != 8 {
		t.Fatalf("2^3 = %v, %v", got, ok)
	}
}

func TestCalculator_Parentheses(t *testing.T) {
	p := NewCalculatorPlugin()
	if got, ok := p.evaluate("(2+3)*4"); !ok || got != 20 {
		t.Fatalf("(2+3)*4 = %v, %v", got, ok)
	}
}

func TestCalculator_UnaryMinus(t *testing.T) {
	p := NewCalculatorPlugin()
	if got, ok := p.evaluate("-5+10"); !ok || got != 5 {
		t.Fatalf("-5+10 = %v, %v", got, ok)
	}
}

func TestCalculator_DivisionByZero(t *testing.T) {
	p := NewCalculatorPlugin()
	if _, ok := p.evaluate("5/0"); ok {
		t.Fatal("expected division by zero to produce no answer")
	}
}

func TestCalculator_ConstantsAndFunctions(t *testing.T) {
	p := NewCalculatorPlugin()
	if got, ok := p.evaluate("sqrt4"); !ok || got != 2 {
		t.Fatalf("sqrt4 = %v, %v", got, ok)
	}
	if _, ok := p.evaluate("pi"); !ok {
		t.Fatal("expected pi to evaluate")
	}
}

func TestCalculator_MatchesQuery(t *testing.T) {
	p := NewCalculatorPlugin()
	cases := []struct {
		q    string
		want bool
	}{
		{"=2+2", true},
		{"calc 2+2", true},
		{"calculate 5*5", true},
		{"2+2", true},
		{"hello world", false},
		{"5", false},
	}
	for _, c := range cases {
		if got := p.MatchesQuery(c.q); got != c.want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", c.q, got, c.want)
		}
	}
}

func TestCalculator_Process(t *testing.T) {
	p := NewCalculatorPlugin()
	ans, ok := p.Process("=2+2")
	if !ok {
		t.Fatal("expected an answer")
	}
	if ans.Text != "2+2 = 4" {
		t.Fatalf("got %q", ans.Text)
	}

	ans, ok = p.Process("calc 10/4")
	if !ok {
		t.Fatal("expected an answer")
	}
	if ans.Text != "10/4 = 2.500000" {
		t.Fatalf("got %q", ans.Text)
	}
}

func TestCalculator_ProcessDivisionByZeroNoAnswer(t *testing.T) {
	p := NewCalculatorPlugin()
	if _, ok := p.Process("=1/0"); ok {
		t.Fatal("expected no answer for division by zero")
	}
}
