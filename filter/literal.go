package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// literalEnv lets expressions use True/False/None as well as true/false/nil.
var literalEnv = map[string]any{
	"True":  true,
	"False": false,
	"None":  nil,
}

// evalLiteral evaluates one side of an expression.
// Only literals are accepted: strings, numbers, booleans, nil and lists of them.
func evalLiteral(s string) (any, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty operand", ErrInvalidOperand)
	}

	tree, err := parser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperand, err)
	}
	check := &literalChecker{}
	ast.Walk(&tree.Node, check)
	if check.err != nil {
		return nil, check.err
	}

	v, err := expr.Eval(s, literalEnv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperand, err)
	}
	return v, nil
}

// literalChecker rejects any AST node that is not part of a literal.
type literalChecker struct {
	err error
}

func (c *literalChecker) Visit(node *ast.Node) {
	if c.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.StringNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.NilNode, *ast.ArrayNode:
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			c.err = fmt.Errorf("%w: operator %q is not allowed in a literal", ErrInvalidOperand, n.Operator)
		}
	case *ast.IdentifierNode:
		if _, ok := literalEnv[n.Value]; !ok {
			c.err = fmt.Errorf("%w: unknown identifier %q", ErrInvalidOperand, n.Value)
		}
	default:
		c.err = fmt.Errorf("%w: %T is not a literal", ErrInvalidOperand, n)
	}
}

// flatten expands a list literal into its elements.
func flatten(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
