// Package money provides an exact fixed-point currency type with two
// decimal places.
//
// All monetary arithmetic in the application goes through this package.
// Values are backed by arbitrary-precision decimals, never binary floats,
// so sums of cent-precise amounts are exact. Rounding is always half-up
// (away from zero), matching how the split allocator distributes amounts.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be parsed as a
// monetary amount.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Money is a currency amount with exactly two fractional digits.
// The zero value is 0.00 and is ready to use.
type Money struct {
	d decimal.Decimal
}

// Zero returns a 0.00 amount.
func Zero() Money {
	return Money{}
}

// FromDecimal quantizes d to two decimal places using half-up rounding
// (away from zero) and returns the resulting amount.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// Parse converts a decimal string into a Money value.
//
// The input must be a plain non-negative decimal with at most two
// fractional digits ("12", "12.3", "12.34"). Signs, exponents, and extra
// precision are rejected; this is the strict form used for expense totals.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("%w: %q has more than 2 decimal places", ErrInvalidAmount, s)
	}
	return Money{d: d.Round(2)}, nil
}

// ParseRounded converts a decimal string into a Money value, quantizing
// any extra precision half-up to two decimal places. Negative values are
// allowed; callers that forbid them check the result. This is the lenient
// form used for caller-supplied custom contributions.
func ParseRounded(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d: d.Round(2)}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and
// tests only.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{d: m.d.Sub(other.d)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	return Money{d: m.d.Abs()}
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.d.GreaterThan(other.d)
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// String renders the amount with exactly two decimal places, e.g. "33.34".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a 2dp decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number. Extra
// precision is rejected, matching Parse. Negative values are accepted so
// net balances round-trip.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	if neg {
		parsed = parsed.Neg()
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as canonical 2dp
// strings so database round-trips are exact.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for TEXT columns written by Value.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidAmount, v)
		}
		m.d = d
		return nil
	case []byte:
		return m.Scan(string(v))
	case nil:
		m.d = decimal.Decimal{}
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidAmount, src)
	}
}
