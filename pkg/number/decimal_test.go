package number

import (
	"math"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/holiman/uint256"
)

func TestParseString(t *testing.T) {
	data := map[string]string{
		"0":                     "0",
		"1":                     "1",
		"0.10304":               "0.10304",
		"12.500":                "12.5",
		".25":                   "0.25",
		"0.000000000000000001":  "0.000000000000000001",
		"18446744073709551615.5": "18446744073709551615.5",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			d, err := Parse(k)
			assert.Equal(t, nil, err)
			assert.Equal(t, v, d.String())
		})
	}

	_, err := Parse("0.0000000000000000001")
	assert.NotEqual(t, nil, err)

	_, err = Parse("abc")
	assert.NotEqual(t, nil, err)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "0.5", FromPercent(50).String())
	assert.Equal(t, "0.0001", FromBps(1).String())
	assert.Equal(t, "0.001", FromDecaBps(1).String())
	assert.Equal(t, "1", FromWad(1_000_000_000_000_000_000).String())
	assert.Equal(t, "3", FromInteger(3).String())
	assert.Equal(t, "2.5", FromPercentU64(250).String())
	assert.T(t, One().Equal(FromPercent(100)))
}

func TestMulDiv(t *testing.T) {
	a := MustParse("1.5")
	b := MustParse("2.25")

	p, err := a.Mul(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, "3.375", p.String())

	q, err := b.Div(a)
	assert.Equal(t, nil, err)
	assert.Equal(t, "1.5", q.String())

	_, err = a.Div(Zero())
	assert.Equal(t, ErrDivisionByZero, err)

	_, err = a.DivInt(0)
	assert.Equal(t, ErrDivisionByZero, err)

	third, err := One().DivInt(3)
	assert.Equal(t, nil, err)
	assert.Equal(t, "0.333333333333333333", third.String())

	// two u64 range operands never overflow
	m := FromInteger(math.MaxUint64)
	sq, err := m.Mul(m)
	assert.Equal(t, nil, err)
	assert.T(t, sq.GreaterThan(m))
}

func TestCheckedOverflow(t *testing.T) {
	max := FromScaled(new(uint256.Int).SetAllOne())

	_, err := max.Add(FromWad(1))
	assert.Equal(t, ErrMathOverflow, err)

	_, err = max.Mul(FromInteger(2))
	assert.Equal(t, ErrMathOverflow, err)

	_, err = max.MulInt(2)
	assert.Equal(t, ErrMathOverflow, err)

	_, err = FromInteger(1).Sub(FromInteger(2))
	assert.Equal(t, ErrMathOverflow, err)

	assert.T(t, FromInteger(1).SaturatingSub(FromInteger(2)).IsZero())
	assert.Equal(t, "1", FromInteger(3).SaturatingSub(FromInteger(2)).String())

	_, err = FromInteger(math.MaxUint64).Add(One())
	assert.Equal(t, nil, err)

	v, _ := FromInteger(math.MaxUint64).Add(One())
	_, err = v.Floor()
	assert.Equal(t, ErrMathOverflow, err)
}

func TestRounding(t *testing.T) {
	type expect struct {
		round, ceil, floor uint64
	}

	data := map[string]expect{
		"0":     {0, 0, 0},
		"1.4":   {1, 2, 1},
		"1.5":   {2, 2, 1},
		"2":     {2, 2, 2},
		"2.999": {3, 3, 2},
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			d := MustParse(k)

			r, err := d.Round()
			assert.Equal(t, nil, err)
			assert.Equal(t, v.round, r, "round")

			c, err := d.Ceil()
			assert.Equal(t, nil, err)
			assert.Equal(t, v.ceil, c, "ceil")

			f, err := d.Floor()
			assert.Equal(t, nil, err)
			assert.Equal(t, v.floor, f, "floor")
		})
	}
}

func TestPow(t *testing.T) {
	two := FromInteger(2)
	for exp, want := range map[uint64]string{0: "1", 1: "2", 2: "4", 5: "32", 10: "1024"} {
		p, err := two.Pow(exp)
		assert.Equal(t, nil, err)
		assert.Equal(t, want, p.String())
	}

	half := MustParse("0.5")
	p, err := half.Pow(3)
	assert.Equal(t, nil, err)
	assert.Equal(t, "0.125", p.String())

	_, err = FromInteger(math.MaxUint64).Pow(8)
	assert.Equal(t, ErrMathOverflow, err)
}

func TestMinMaxShopspring(t *testing.T) {
	a, b := MustParse("1.1"), MustParse("1.2")
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, b, Max(a, b))
	assert.Equal(t, "1.2", b.Shopspring().String())

	var d Decimal
	assert.Equal(t, nil, d.UnmarshalText([]byte("42.42")))
	text, _ := d.MarshalText()
	assert.Equal(t, "42.42", string(text))
}
