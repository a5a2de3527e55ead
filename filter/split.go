package filter

import (
	"regexp"
	"strings"
)

var (
	comparisonPattern = regexp.MustCompile(`[=!<>]=?`)
	membershipPattern = regexp.MustCompile(`\bnot\s+in\b|\bin\b`)
)

// Expr is a conditional expression split into its three parts.
type Expr struct {
	Left  string
	Op    string
	Right string
}

// Split partitions an expression on the first operator found.
//
// Comparison operators (==, !=, <, <=, >, >=, and = as a synonym of ==) are
// searched first, anywhere in the string; only when none is present are the
// membership operators (in, not in) searched. The returned Op is normalized to
// one of "==", "!=", "<", "<=", ">", ">=", "in", "not in".
func Split(expression string) (Expr, error) {
	if loc := comparisonPattern.FindStringIndex(expression); loc != nil {
		op := expression[loc[0]:loc[1]]
		switch op {
		case "=":
			op = "=="
		case "!":
			return Expr{}, &TranslationError{Expr: expression, Op: op, Err: ErrNoOperator}
		}
		return Expr{
			Left:  strings.TrimSpace(expression[:loc[0]]),
			Op:    op,
			Right: strings.TrimSpace(expression[loc[1]:]),
		}, nil
	}

	if loc := membershipPattern.FindStringIndex(expression); loc != nil {
		op := "in"
		if strings.HasPrefix(expression[loc[0]:loc[1]], "not") {
			op = "not in"
		}
		return Expr{
			Left:  strings.TrimSpace(expression[:loc[0]]),
			Op:    op,
			Right: strings.TrimSpace(expression[loc[1]:]),
		}, nil
	}

	return Expr{}, &TranslationError{Expr: expression, Err: ErrNoOperator}
}

// mirror swaps the direction of an operator for value-first expressions.
func mirror(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	}
	return op
}
