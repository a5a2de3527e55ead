package filter

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Expr
	}{
		{"equal", "'tail number' == 'N123'", Expr{"'tail number'", "==", "'N123'"}},
		{"single equal", "'tail number' = 'N123'", Expr{"'tail number'", "==", "'N123'"}},
		{"not equal", "'a' != 1", Expr{"'a'", "!=", "1"}},
		{"less", "'a'<1", Expr{"'a'", "<", "1"}},
		{"less or equal", "'a' <= 1", Expr{"'a'", "<=", "1"}},
		{"greater", "'a' > 1", Expr{"'a'", ">", "1"}},
		{"greater or equal", "'a' >= 1", Expr{"'a'", ">=", "1"}},
		{"in", "'a' in ['x', 'y']", Expr{"'a'", "in", "['x', 'y']"}},
		{"not in", "'a' not in ['x']", Expr{"'a'", "not in", "['x']"}},
		{"in without spaces around list", "'a' in['x']", Expr{"'a'", "in", "['x']"}},
		// comparison operators win even inside a membership list
		{"comparison first", "'a' in ['x<y']", Expr{"'a' in ['x", "<", "y']"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.expr)
			if err != nil {
				t.Fatalf("Split(%q) failed: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Split(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestSplitNoOperator(t *testing.T) {
	for _, expr := range []string{"'a' 1", "'takeoff valid'", "'a' ! 1", "inside"} {
		_, err := Split(expr)
		if !errors.Is(err, ErrNoOperator) {
			t.Errorf("Split(%q): expected ErrNoOperator, got %v", expr, err)
		}
		if !errors.Is(err, ErrTranslation) {
			t.Errorf("Split(%q): expected ErrTranslation, got %v", expr, err)
		}
	}
}

func TestMirror(t *testing.T) {
	pairs := map[string]string{
		"<": ">", "<=": ">=", ">": "<", ">=": "<=",
		"==": "==", "!=": "!=", "in": "in", "not in": "not in",
	}
	for op, want := range pairs {
		if got := mirror(op); got != want {
			t.Errorf("mirror(%q) = %q, want %q", op, got, want)
		}
	}
}

func TestEvalLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"'abc'", "abc"},
		{`"abc"`, "abc"},
		{"42", 42},
		{"-3", -3},
		{"4.5", 4.5},
		{"True", true},
		{"false", false},
		{"None", nil},
	}
	for _, tt := range tests {
		got, err := evalLiteral(tt.in)
		if err != nil {
			t.Errorf("evalLiteral(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("evalLiteral(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	list, err := evalLiteral("['KSEA', 2]")
	if err != nil {
		t.Fatalf("evalLiteral(list) failed: %v", err)
	}
	items, ok := list.([]any)
	if !ok || len(items) != 2 || items[0] != "KSEA" || items[1] != 2 {
		t.Errorf("unexpected list literal %#v", list)
	}
}

func TestEvalLiteralRejectsExpressions(t *testing.T) {
	for _, in := range []string{"", "foo", "1 + 2", "'a' + 'b'", "len('x')", "!true"} {
		if _, err := evalLiteral(in); !errors.Is(err, ErrInvalidOperand) {
			t.Errorf("evalLiteral(%q): expected ErrInvalidOperand, got %v", in, err)
		}
	}
}
