package core

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
	Saving  Type = "saving"
)

type (
	// Type classifies a transaction.
	Type string

	// Transaction is a single income, expense, or saving record.
	// The store assigns ID on create; Timestamp is the creation instant in
	// milliseconds and is the default sort key for display lists.
	Transaction struct {
		ID        string  `json:"id,omitempty"`
		Type      Type    `json:"type"`
		Amount    float64 `json:"amount"`
		Date      string  `json:"date"` // "YYYY-MM-DD"
		Category  string  `json:"category"`
		Desc      string  `json:"desc"`
		Timestamp int64   `json:"timestamp"`
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// IsValid reports whether t is one of the three known transaction types.
func (t Type) IsValid() bool {
	switch t {
	case Income, Expense, Saving:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// FallbackCategory is the category assigned at creation time when the user
// leaves it empty. Applied on create only, never retroactively.
func FallbackCategory(t Type) string {
	if t == Income {
		return "Salary"
	}
	return "General"
}

// DefaultCategories lists the category options offered per type.
func DefaultCategories(t Type) []string {
	switch t {
	case Income:
		return []string{"Gaji", "Bonus", "Penjualan", "Lainnya"}
	case Expense:
		return []string{"Makan & Minum", "Transportasi", "Tagihan", "Belanja", "Hiburan", "Kesehatan", "Lainnya"}
	case Saving:
		return []string{"Tabungan Darurat", "Investasi", "Liburan", "Lainnya"}
	default:
		return nil
	}
}

// Validate checks a transaction at submission time. Amount must be a positive
// finite number and Date a valid calendar date. Records already in storage are
// never validated again; aggregation normalizes bad data silently instead.
func (tx Transaction) Validate() error {
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	if tx.Amount <= 0 || math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return ErrInvalidAmount
	}
	if _, ok := ParseDate(tx.Date); !ok {
		return ErrInvalidDate
	}
	return nil
}

// SafeAmount returns the amount usable in sums: non-finite values count as 0.
func (tx Transaction) SafeAmount() float64 {
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return 0
	}
	return tx.Amount
}

// CoerceAmount converts loosely typed user input to a number, yielding 0 for
// anything non-numeric rather than failing.
func CoerceAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
