package parser_test

import (
	"testing"

	"github.com/laurelkeys/kaleidoscopy/internal/lexer"
	"github.com/laurelkeys/kaleidoscopy/internal/operators"
	"github.com/laurelkeys/kaleidoscopy/internal/parser"
)

// FuzzParseUnit throws arbitrary input at the parser. Whatever the
// input, parsing must terminate without panicking, and every reported
// diagnostic must carry an error code.
func FuzzParseUnit(f *testing.F) {
	f.Add("def fib(x) if x < 3 then 1 else fib(x-1) + fib(x-2)")
	f.Add("extern sin(arg); sin(1.0)")
	f.Add("def binary| 5 (a b) a + b; 1 < 2 | 4")
	f.Add("def unary!(v) 1 - v; !0")
	f.Add("for i = 1, i < 10, 2 in putchard(i)")
	f.Add("var a = 1, b in a = b = 2")
	f.Add("1.2.3")
	f.Add("((((")
	f.Add("x ? y; 42")

	f.Fuzz(func(t *testing.T, input string) {
		p := parser.New(lexer.New(input), operators.NewTable())

		for i := 0; i < 1000; i++ {
			unit, err := p.ParseUnit()
			if err != nil {
				if err.Code == "" {
					t.Errorf("diagnostic without a code: %s", err.Error())
				}
				p.Synchronize()
				continue
			}
			if unit == nil {
				return
			}
		}
	})
}
