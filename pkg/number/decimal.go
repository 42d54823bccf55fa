package number

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Scale number of decimal places carried by a Decimal
const Scale = 18

// WAD 1.0 as a scaled integer
const WAD uint64 = 1_000_000_000_000_000_000

var (
	// ErrMathOverflow overflow, underflow or a value that does not fit the target integer
	ErrMathOverflow = errors.New("math operation overflow")
	// ErrDivisionByZero division by zero
	ErrDivisionByZero = errors.New("division by zero")
)

var (
	wad     = uint256.NewInt(WAD)
	halfWad = uint256.NewInt(500_000_000_000_000_000)

	percentScaler = uint256.NewInt(10_000_000_000_000_000)
	decaBpsScaler = uint256.NewInt(1_000_000_000_000_000)
	bpsScaler     = uint256.NewInt(100_000_000_000_000)
)

// Decimal unsigned fixed point number scaled by 10^18 (WAD).
//
// Every arithmetic method is checked and returns ErrMathOverflow or
// ErrDivisionByZero instead of wrapping. The zero value is 0.
type Decimal struct {
	v uint256.Int
}

// Zero 0
func Zero() Decimal {
	return Decimal{}
}

// One 1
func One() Decimal {
	return Decimal{v: *wad}
}

// FromInteger integer value
func FromInteger(v uint64) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(v), wad)
	return d
}

// FromPercent 1 = 1%
func FromPercent(percent uint8) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(uint64(percent)), percentScaler)
	return d
}

// FromPercentU64 percent held in a u64 field, such as the super max borrow rate
func FromPercentU64(percent uint64) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(percent), percentScaler)
	return d
}

// FromBps 1 = 0.01%
func FromBps(bps uint64) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(bps), bpsScaler)
	return d
}

// FromDecaBps 1 = 0.1%
func FromDecaBps(decaBps uint8) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(uint64(decaBps)), decaBpsScaler)
	return d
}

// FromWad raw scaled value, 10^18 = 1
func FromWad(scaled uint64) Decimal {
	var d Decimal
	d.v.SetUint64(scaled)
	return d
}

// FromScaled raw scaled 256-bit value
func FromScaled(scaled *uint256.Int) Decimal {
	var d Decimal
	d.v.Set(scaled)
	return d
}

// Scaled copy of the raw scaled value
func (d Decimal) Scaled() *uint256.Int {
	return d.v.Clone()
}

func (d Decimal) IsZero() bool {
	return d.v.IsZero()
}

func (d Decimal) Cmp(o Decimal) int {
	return d.v.Cmp(&o.v)
}

func (d Decimal) Equal(o Decimal) bool {
	return d.v.Eq(&o.v)
}

func (d Decimal) LessThan(o Decimal) bool {
	return d.v.Lt(&o.v)
}

func (d Decimal) LessThanOrEqual(o Decimal) bool {
	return !d.v.Gt(&o.v)
}

func (d Decimal) GreaterThan(o Decimal) bool {
	return d.v.Gt(&o.v)
}

func (d Decimal) GreaterThanOrEqual(o Decimal) bool {
	return !d.v.Lt(&o.v)
}

// Min smaller of a and b
func Min(a, b Decimal) Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max larger of a and b
func Max(a, b Decimal) Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Add checked addition
func (d Decimal) Add(o Decimal) (Decimal, error) {
	var r Decimal
	if _, overflow := r.v.AddOverflow(&d.v, &o.v); overflow {
		return Zero(), ErrMathOverflow
	}
	return r, nil
}

// Sub checked subtraction, underflow is an overflow error
func (d Decimal) Sub(o Decimal) (Decimal, error) {
	var r Decimal
	if _, underflow := r.v.SubOverflow(&d.v, &o.v); underflow {
		return Zero(), ErrMathOverflow
	}
	return r, nil
}

// SaturatingSub subtraction floored at zero
func (d Decimal) SaturatingSub(o Decimal) Decimal {
	if d.LessThanOrEqual(o) {
		return Zero()
	}
	var r Decimal
	r.v.Sub(&d.v, &o.v)
	return r
}

// Mul d*o, descaled by one WAD
func (d Decimal) Mul(o Decimal) (Decimal, error) {
	var r Decimal
	if _, overflow := r.v.MulDivOverflow(&d.v, &o.v, wad); overflow {
		return Zero(), ErrMathOverflow
	}
	return r, nil
}

// MulInt d*v
func (d Decimal) MulInt(v uint64) (Decimal, error) {
	var r Decimal
	if _, overflow := r.v.MulOverflow(&d.v, uint256.NewInt(v)); overflow {
		return Zero(), ErrMathOverflow
	}
	return r, nil
}

// Div d/o, d rescaled by one WAD before dividing
func (d Decimal) Div(o Decimal) (Decimal, error) {
	if o.IsZero() {
		return Zero(), ErrDivisionByZero
	}
	var r Decimal
	if _, overflow := r.v.MulDivOverflow(&d.v, wad, &o.v); overflow {
		return Zero(), ErrMathOverflow
	}
	return r, nil
}

// DivInt d/v
func (d Decimal) DivInt(v uint64) (Decimal, error) {
	if v == 0 {
		return Zero(), ErrDivisionByZero
	}
	var r Decimal
	r.v.Div(&d.v, uint256.NewInt(v))
	return r, nil
}

// Pow d^exp by squaring
func (d Decimal) Pow(exp uint64) (Decimal, error) {
	base := d
	ret := One()
	if exp%2 != 0 {
		ret = base
	}

	var err error
	for exp /= 2; exp > 0; exp /= 2 {
		if base, err = base.Mul(base); err != nil {
			return Zero(), err
		}

		if exp%2 != 0 {
			if ret, err = ret.Mul(base); err != nil {
				return Zero(), err
			}
		}
	}

	return ret, nil
}

// Round nearest integer, halves away from zero
func (d Decimal) Round() (uint64, error) {
	var r uint256.Int
	if _, overflow := r.AddOverflow(&d.v, halfWad); overflow {
		return 0, ErrMathOverflow
	}
	return toUint64(r.Div(&r, wad))
}

// Ceil smallest integer not below d
func (d Decimal) Ceil() (uint64, error) {
	var r uint256.Int
	if _, overflow := r.AddOverflow(&d.v, uint256.NewInt(wad.Uint64()-1)); overflow {
		return 0, ErrMathOverflow
	}
	return toUint64(r.Div(&r, wad))
}

// Floor largest integer not above d
func (d Decimal) Floor() (uint64, error) {
	var r uint256.Int
	return toUint64(r.Div(&d.v, wad))
}

func toUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrMathOverflow
	}
	return v.Uint64(), nil
}

func (d Decimal) String() string {
	var q, m uint256.Int
	q.DivMod(&d.v, wad, &m)
	if m.IsZero() {
		return q.Dec()
	}

	frac := fmt.Sprintf("%0*s", Scale, m.Dec())
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}

// Parse exact decimal text such as "12.5", at most 18 fractional digits
func Parse(s string) (Decimal, error) {
	intPart, fracPart, _ := strings.Cut(strings.TrimSpace(s), ".")
	if intPart == "" {
		intPart = "0"
	}

	if len(fracPart) > Scale {
		return Zero(), fmt.Errorf("parse %q: more than %d fractional digits", s, Scale)
	}

	i, err := uint256.FromDecimal(intPart)
	if err != nil {
		return Zero(), fmt.Errorf("parse %q: %w", s, err)
	}

	var d Decimal
	if _, overflow := d.v.MulOverflow(i, wad); overflow {
		return Zero(), ErrMathOverflow
	}

	if fracPart != "" {
		f, err := uint256.FromDecimal(fracPart + strings.Repeat("0", Scale-len(fracPart)))
		if err != nil {
			return Zero(), fmt.Errorf("parse %q: %w", s, err)
		}

		if _, overflow := d.v.AddOverflow(&d.v, f); overflow {
			return Zero(), ErrMathOverflow
		}
	}

	return d, nil
}

// MustParse parse or panic, for constants and tests
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Shopspring convert to shopspring decimal for display
func (d Decimal) Shopspring() decimal.Decimal {
	return decimal.NewFromBigInt(d.v.ToBig(), -Scale)
}

func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decimal) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}

	*d = v
	return nil
}

func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Decimal) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Zero()
		return nil
	case []byte:
		return d.UnmarshalText(v)
	case string:
		return d.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("number: cannot scan %T into Decimal", src)
	}
}
