package parser_test

import (
	"strings"
	"testing"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/lexer"
	"github.com/laurelkeys/kaleidoscopy/internal/operators"
	"github.com/laurelkeys/kaleidoscopy/internal/parser"
	"github.com/laurelkeys/kaleidoscopy/internal/prettyprinter"
)

// parseAll parses every unit of source against a fresh operator table
// and returns their parenthesized renderings.
func parseAll(t *testing.T, source string) []string {
	t.Helper()

	p := parser.New(lexer.New(source), operators.NewTable())
	var rendered []string
	for {
		unit, err := p.ParseUnit()
		if err != nil {
			t.Fatalf("parsing %q failed: %s", source, err.Error())
		}
		if unit == nil {
			return rendered
		}
		rendered = append(rendered, prettyprinter.Print(unit))
	}
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"number", "42", []string{"42"}},
		{"variable", "x", []string{"x"}},
		{"product_binds_tighter", "a + b * c", []string{"(a + (b * c))"}},
		{"product_on_left", "a * b + c", []string{"((a * b) + c)"}},
		{"compare_is_loosest_builtin", "a < b + 1 * c", []string{"(a < (b + (1 * c)))"}},
		{"left_associative_sum", "a - b - c", []string{"((a - b) - c)"}},
		{"left_associative_product", "a * b * c", []string{"((a * b) * c)"}},
		{"parens_override", "(a + b) * c", []string{"((a + b) * c)"}},
		{"right_associative_assign", "a = b = c", []string{"(a = (b = c))"}},
		{"assign_loosest", "a = b + c", []string{"(a = (b + c))"}},
		{"call_no_args", "f()", []string{"f()"}},
		{"call_comma_args", "f(1, x + 2)", []string{"f(1, (x + 2))"}},
		{"call_space_args", "f(1 2 3)", []string{"f(1, 2, 3)"}},
		{"nested_call", "f(g(x), 1)", []string{"f(g(x), 1)"}},
		{"if_expression", "if x < 2 then 1 else x * 2", []string{"(if (x < 2) then 1 else (x * 2))"}},
		{"if_nested_else", "if a then 1 else if b then 2 else 3",
			[]string{"(if a then 1 else (if b then 2 else 3))"}},
		{"for_expression", "for i = 1, i < 10 in f(i)", []string{"(for i = 1, (i < 10) in f(i))"}},
		{"for_with_step", "for i = 1, i < n, 2 in f(i)", []string{"(for i = 1, (i < n), 2 in f(i))"}},
		{"var_expression", "var x = 1, y = x + 1 in y", []string{"(var x = 1, y = (x + 1) in y)"}},
		{"var_default_init", "var x in x", []string{"(var x in x)"}},
		{"definition", "def add(a b) a + b", []string{"def add(a b) (a + b)"}},
		{"definition_comma_params", "def add(a, b) a + b", []string{"def add(a b) (a + b)"}},
		{"extern_declaration", "extern sin(arg)", []string{"extern sin(arg)"}},
		{"semicolons_split_units", "1; 2; 3", []string{"1", "2", "3"}},
		{"units_without_semicolons", "def f(x) x def g(x) f(x)",
			[]string{"def f(x) x", "def g(x) f(x)"}},
		{"binary_operator_definition", "def binary| 5 (a b) a + b",
			[]string{"def binary| 5 (a b) (a + b)"}},
		{"binary_operator_default_precedence", "def binary& (a b) a * b",
			[]string{"def binary& 30 (a b) (a * b)"}},
		{"unary_operator_definition", "def unary!(v) 1 - v",
			[]string{"def unary!(v) (1 - v)"}},
		{"user_binary_in_expression", "def binary| 5 (a b) a + b; x < y | z",
			[]string{"def binary| 5 (a b) (a + b)", "((x < y) | z)"}},
		{"user_binary_tight", "def binary^ 50 (a b) a * b; x * y ^ z",
			[]string{"def binary^ 50 (a b) (a * b)", "(x * (y ^ z))"}},
		{"user_unary_in_expression", "def unary!(v) 1 - v; !x < 2",
			[]string{"def unary!(v) (1 - v)", "((!x) < 2)"}},
		{"user_unary_chained", "def unary-(v) 0 - v; --x",
			[]string{"def unary-(v) (0 - v)", "(-(-x))"}},
		{"operator_usable_in_own_body", "def binary: 1 (a b) if a then b : 0 else b",
			[]string{"def binary: 1 (a b) (if a then (b : 0) else b)"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseAll(t, tc.input)
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %d unit(s), got %d: %v", len(tc.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("unit %d:\n  expected %s\n  got      %s", i, tc.expected[i], got[i])
				}
			}
		})
	}
}

func TestParserErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"malformed_number", "1.2.3", diagnostics.ErrL001},
		{"unexpected_token", "def 1(x) x", diagnostics.ErrP001},
		{"trailing_comma_in_call", "f(1,)", diagnostics.ErrP001},
		{"missing_close_paren", "(1 + 2", diagnostics.ErrP002},
		{"missing_then", "if x 1 else 2", diagnostics.ErrP002},
		{"missing_in_after_var", "var x = 1 x", diagnostics.ErrP002},
		{"missing_comma_in_for", "for i = 1 in f(i)", diagnostics.ErrP002},
		{"unary_arity", "def unary!(a b) a", diagnostics.ErrP003},
		{"binary_arity", "def binary%(a) a", diagnostics.ErrP003},
		{"duplicate_parameter", "def f(a a) a", diagnostics.ErrP004},
		{"precedence_below_one", "def binary| 0 (a b) a", diagnostics.ErrP001},
		{"unknown_binary_operator", "x ? y", diagnostics.ErrC001},
		{"unknown_unary_operator", "!x", diagnostics.ErrC001},
		{"unary_used_as_binary", "def unary!(v) v; x ! y", diagnostics.ErrC001},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := parser.New(lexer.New(tc.input), operators.NewTable())
			for {
				unit, err := p.ParseUnit()
				if err != nil {
					if err.Code != tc.code {
						t.Fatalf("expected code %s, got %s (%s)", tc.code, err.Code, err.Message)
					}
					return
				}
				if unit == nil {
					t.Fatalf("expected a %s diagnostic, parsed cleanly", tc.code)
				}
			}
		})
	}
}

func TestRecursionDepthLimit(t *testing.T) {
	input := strings.Repeat("(", 600) + "1" + strings.Repeat(")", 600)

	p := parser.New(lexer.New(input), operators.NewTable())
	_, err := p.ParseUnit()
	if err == nil {
		t.Fatal("expected a nesting-limit diagnostic")
	}
	if err.Code != diagnostics.ErrP005 {
		t.Fatalf("expected code %s, got %s (%s)", diagnostics.ErrP005, err.Code, err.Message)
	}
}

func TestSynchronizeRecovers(t *testing.T) {
	p := parser.New(lexer.New("x ? y; 42"), operators.NewTable())

	_, err := p.ParseUnit()
	if err == nil {
		t.Fatal("expected the first unit to fail")
	}
	p.Synchronize()

	unit, err := p.ParseUnit()
	if err != nil {
		t.Fatalf("expected clean parse after resync, got: %s", err.Error())
	}
	num, ok := unit.(*ast.NumberExpr)
	if !ok {
		t.Fatalf("expected a number expression, got %T", unit)
	}
	if num.Value != 42 {
		t.Errorf("expected 42, got %v", num.Value)
	}

	if unit, err := p.ParseUnit(); unit != nil || err != nil {
		t.Errorf("expected end of input, got unit=%v err=%v", unit, err)
	}
}

func TestDefinitionRegistersOperator(t *testing.T) {
	ops := operators.NewTable()
	p := parser.New(lexer.New("def binary| 5 (a b) a + b"), ops)

	if _, err := p.ParseUnit(); err != nil {
		t.Fatalf("parse failed: %s", err.Error())
	}
	if prec, ok := ops.Precedence('|'); !ok || prec != 5 {
		t.Errorf("expected '|' registered at precedence 5, got %d (defined=%v)", prec, ok)
	}
}
