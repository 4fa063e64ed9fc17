// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings and
// for the percentage arithmetic shared by the analytics views. Amounts are
// kept in integer minor units (paise); decimal.Decimal is used only at the
// edges where rounding happens.
package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromUnits builds a Money value from whole currency units (rupees).
func FromUnits(units int64) Money {
	return Money{Cents: units * 100}
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseNonNegativeCents is ParseDecimalToCents that also admits zero. It is
// used for configured targets such as the savings goal.
func ParseNonNegativeCents(s string) (int64, error) {
	return parseCents(s)
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Units returns the amount in whole currency units for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return decimal.New(m.Cents, -2).InexactFloat64()
}

func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// MarshalJSON writes the amount as a plain number of currency units with two
// decimals, e.g. 5000.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Negative values are
// allowed here because signed amounts travel through the same type. Values
// outside the int64 cent range are rejected with ErrInvalidAmount.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return errors.Join(ErrInvalidAmount, err)
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return ErrInvalidAmount
	}
	m.Cents = cents.IntPart()
	return nil
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is zero.
func Percent(part, whole Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return decimal.NewFromInt(part.Cents).
		Mul(hundred).
		Div(decimal.NewFromInt(whole.Cents)).
		Round(2).
		InexactFloat64()
}

// PercentChange returns the relative change from base to next in percent,
// rounded to two decimals. A zero base reports 0 rather than infinity.
func PercentChange(base, next Money) float64 {
	if base.Cents == 0 {
		return 0
	}
	return decimal.NewFromInt(next.Cents - base.Cents).
		Mul(hundred).
		Div(decimal.NewFromInt(base.Cents).Abs()).
		Round(2).
		InexactFloat64()
}

// RoundFloat rounds a float to the given number of decimal places.
func RoundFloat(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// MoneyFromFloat rounds a fractional cents value half away from zero.
func MoneyFromFloat(cents float64) Money {
	if math.IsNaN(cents) || math.IsInf(cents, 0) {
		return Money{}
	}
	return Money{Cents: decimal.NewFromFloat(cents).Round(0).IntPart()}
}
