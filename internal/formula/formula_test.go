package formula

import (
	"testing"
	"time"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/tabular"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func identity() *tabular.TabularDataResult {
	return tabular.FromDateInterval(
		catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-03")),
		catalog.GrainDay, nil, nil,
	)
}

func TestEvaluateScalarBroadcastsAcrossIdentity(t *testing.T) {
	out, err := Evaluate("2 + 3 * 4", identity(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range out.Rows {
		if r.Value != 14 {
			t.Fatalf("expected every row to carry 14, got %v", r.Value)
		}
	}
}

func TestEvaluateMixedTableScalarDelegatesToTabular(t *testing.T) {
	x := tabular.FromDateInterval(catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-03")), catalog.GrainDay, nil, nil).AddScalar(10)
	out, err := Evaluate("x / 0", identity(), map[string]any{"x": x})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range out.Rows {
		if r.Value != 0 {
			t.Fatalf("expected safe division by zero to yield 0, got %v", r.Value)
		}
	}
}

func TestEvaluateUnsupportedOperatorFails(t *testing.T) {
	if _, err := Evaluate("x % y", identity(), map[string]any{"x": 1.0, "y": 2.0}); err == nil {
		t.Fatal("expected an error for an unrecognized operator character")
	}
}

func TestEvaluateEmptyIdentityShortCircuits(t *testing.T) {
	empty := tabular.Empty(nil)
	out, err := Evaluate("x + y", empty, map[string]any{"x": 1.0, "y": 2.0})
	if err != nil {
		t.Fatal(err)
	}
	if out != empty {
		t.Fatal("expected the identity to be returned unchanged when empty")
	}
}

func TestEvaluateCaseInsensitiveIdentifiers(t *testing.T) {
	out, err := Evaluate("X + Y", identity(), map[string]any{"x": 1.0, "y": 2.0})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range out.Rows {
		if r.Value != 3 {
			t.Fatalf("expected case-insensitive symbol resolution to yield 3, got %v", r.Value)
		}
	}
}

func TestEvaluateFunctionCall(t *testing.T) {
	out, err := Evaluate("abs(x)", identity(), map[string]any{"x": -7.0})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range out.Rows {
		if r.Value != 7 {
			t.Fatalf("expected abs(-7) == 7, got %v", r.Value)
		}
	}
}
