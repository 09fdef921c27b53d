package condition

import (
	"testing"
)

func TestEvalBooleanExpression(t *testing.T) {
	cases := []struct {
		expr string
		want bool
	}{
		{"True", true},
		{"False", false},
		{"not True", false},
		{"not False", true},
		{"True and True", true},
		{"True and False", false},
		{"True or False", true},
		{"False or False", false},
		{"not True or True", true},
		{"not ( True or True )", false},
		{"True or False and False", true},
		{"( True or False ) and False", false},
		{"not not True", true},
		{"((True))", true},
		{"True and not False or False", true},
	}
	for _, c := range cases {
		got, err := evalBooleanExpression(c.expr)
		if err != nil {
			t.Fatalf("evalBooleanExpression(%q) returned error: %v", c.expr, err)
		}
		if got != c.want {
			t.Fatalf("evalBooleanExpression(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalBooleanExpressionRejectsForeignTokens(t *testing.T) {
	cases := []string{
		"true",
		"1",
		"True; import",
		"True and file(x)",
		"__import__",
		"",
	}
	for _, expr := range cases {
		if _, err := evalBooleanExpression(expr); err == nil {
			t.Fatalf("evalBooleanExpression(%q) succeeded, want error", expr)
		} else if !IsInvalidCondition(err) {
			t.Fatalf("evalBooleanExpression(%q) error = %v, want InvalidConditionError", expr, err)
		}
	}
}

func TestEvalBooleanExpressionUnbalancedParens(t *testing.T) {
	for _, expr := range []string{"( True", "True )", "( True or ( False )"} {
		if _, err := evalBooleanExpression(expr); err == nil {
			t.Fatalf("evalBooleanExpression(%q) succeeded, want error", expr)
		}
	}
}
