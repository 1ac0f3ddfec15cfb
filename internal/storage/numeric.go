package storage

import (
	"fmt"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// NUMERIC columns travel as text in both directions so no value passes
// through float64.

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

func parseNullAmount(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func amountText(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}

// exactAmountText is amountText for caller-supplied values: anything the
// NUMERIC(8,2) column would round is rejected instead.
func exactAmountText(d decimal.Decimal) (string, error) {
	if err := cycle.CheckScale(d); err != nil {
		return "", err
	}
	return amountText(d), nil
}

func nullAmountText(d *decimal.Decimal) (*string, error) {
	if d == nil {
		return nil, nil
	}
	s, err := exactAmountText(*d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
