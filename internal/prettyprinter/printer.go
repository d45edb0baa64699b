// Package prettyprinter renders AST nodes back to source form with
// every grouping made explicit, so the evaluation order chosen by the
// parser is visible in the output.
package prettyprinter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
)

// Print returns the parenthesized source form of node.
func Print(node ast.Node) string {
	var sb strings.Builder
	printNode(&sb, node)
	return sb.String()
}

func printNode(sb *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.Function:
		if n.Proto.IsAnonymous() {
			printNode(sb, n.Body)
			return
		}
		sb.WriteString("def ")
		printPrototype(sb, n.Proto)
		sb.WriteString(" ")
		printNode(sb, n.Body)

	case *ast.Prototype:
		sb.WriteString("extern ")
		printPrototype(sb, n)

	case *ast.NumberExpr:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))

	case *ast.VariableExpr:
		sb.WriteString(n.Name)

	case *ast.UnaryExpr:
		fmt.Fprintf(sb, "(%c", n.Operator)
		printNode(sb, n.Operand)
		sb.WriteString(")")

	case *ast.BinaryExpr:
		sb.WriteString("(")
		printNode(sb, n.Left)
		fmt.Fprintf(sb, " %c ", n.Operator)
		printNode(sb, n.Right)
		sb.WriteString(")")

	case *ast.CallExpr:
		sb.WriteString(n.Callee)
		sb.WriteString("(")
		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			printNode(sb, arg)
		}
		sb.WriteString(")")

	case *ast.IfExpr:
		sb.WriteString("(if ")
		printNode(sb, n.Condition)
		sb.WriteString(" then ")
		printNode(sb, n.Then)
		sb.WriteString(" else ")
		printNode(sb, n.Else)
		sb.WriteString(")")

	case *ast.ForExpr:
		fmt.Fprintf(sb, "(for %s = ", n.VarName)
		printNode(sb, n.Start)
		sb.WriteString(", ")
		printNode(sb, n.End)
		if n.Step != nil {
			sb.WriteString(", ")
			printNode(sb, n.Step)
		}
		sb.WriteString(" in ")
		printNode(sb, n.Body)
		sb.WriteString(")")

	case *ast.VarExpr:
		sb.WriteString("(var ")
		for i, binding := range n.Bindings {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(binding.Name)
			if binding.Init != nil {
				sb.WriteString(" = ")
				printNode(sb, binding.Init)
			}
		}
		sb.WriteString(" in ")
		printNode(sb, n.Body)
		sb.WriteString(")")

	default:
		fmt.Fprintf(sb, "<%T>", node)
	}
}

func printPrototype(sb *strings.Builder, proto *ast.Prototype) {
	switch proto.Kind {
	case ast.OpUnary:
		fmt.Fprintf(sb, "unary%c", proto.Operator)
	case ast.OpBinary:
		fmt.Fprintf(sb, "binary%c %d ", proto.Operator, proto.Precedence)
	default:
		sb.WriteString(proto.Name)
	}
	sb.WriteString("(")
	sb.WriteString(strings.Join(proto.Params, " "))
	sb.WriteString(")")
}
