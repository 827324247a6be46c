package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Type: Expense, Amount: 12.5, Date: "2024-03-10", Category: "Food"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Type: "loan", Amount: 1, Date: "2024-03-10"}, ErrInvalidType},
		{Transaction{Type: Income, Amount: 0, Date: "2024-03-10"}, ErrInvalidAmount},
		{Transaction{Type: Income, Amount: -5, Date: "2024-03-10"}, ErrInvalidAmount},
		{Transaction{Type: Income, Amount: math.NaN(), Date: "2024-03-10"}, ErrInvalidAmount},
		{Transaction{Type: Income, Amount: 1, Date: ""}, ErrInvalidDate},
		{Transaction{Type: Income, Amount: 1, Date: "2024-02-30"}, ErrInvalidDate},
	}
	for i, tc := range cases {
		if err := tc.tx.Validate(); err != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{float64(12.5), 12.5},
		{"42", 42},
		{" 3.5 ", 3.5},
		{"abc", 0},
		{json.Number("7"), 7},
		{nil, 0},
		{math.Inf(1), 0},
	}
	for i, tc := range cases {
		if got := CoerceAmount(tc.in); got != tc.want {
			t.Fatalf("case %d: CoerceAmount(%v) = %v, want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestFallbackCategory(t *testing.T) {
	if got := FallbackCategory(Income); got != "Salary" {
		t.Fatalf("income fallback = %q", got)
	}
	if got := FallbackCategory(Expense); got != "General" {
		t.Fatalf("expense fallback = %q", got)
	}
	if got := FallbackCategory(Saving); got != "General" {
		t.Fatalf("saving fallback = %q", got)
	}
}

func TestDefaultCategories(t *testing.T) {
	for _, typ := range []Type{Income, Expense, Saving} {
		if len(DefaultCategories(typ)) == 0 {
			t.Fatalf("no default categories for %s", typ)
		}
	}
}
