package fixedpoint

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const DefaultPrecision = 8

const DefaultPow = 1e8

// Value is a decimal stored as an int64 scaled by DefaultPow.
type Value int64

const Zero = Value(0)

func (v Value) Float64() float64 {
	return float64(v) / DefaultPow
}

func (v Value) Int64() int64 {
	return int64(v)
}

func (v Value) Mul(v2 Value) Value {
	return NewFromFloat(v.Float64() * v2.Float64())
}

func (v Value) MulFloat64(v2 float64) Value {
	return NewFromFloat(v.Float64() * v2)
}

func (v Value) Div(v2 Value) Value {
	return NewFromFloat(v.Float64() / v2.Float64())
}

func (v Value) Sub(v2 Value) Value {
	return Value(int64(v) - int64(v2))
}

func (v Value) Add(v2 Value) Value {
	return Value(int64(v) + int64(v2))
}

func (v Value) Abs() Value {
	if v < 0 {
		return -v
	}
	return v
}

func (v Value) Sign() int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (v Value) IsZero() bool {
	return v == 0
}

// Compare returns -1, 0 or 1 when v is less than, equal to or greater than v2.
func (v Value) Compare(v2 Value) int {
	switch {
	case v < v2:
		return -1
	case v > v2:
		return 1
	}
	return 0
}

func (v Value) String() string {
	s := v.FormatString(DefaultPrecision)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// FormatString truncates v to prec fractional digits. A negative prec
// truncates integer digits instead, e.g. 12.34 with prec -1 gives "10".
func (v Value) FormatString(prec int) string {
	u := int64(v)
	negative := u < 0
	if negative {
		u = -u
	}

	intPart := u / int64(DefaultPow)
	frac := u % int64(DefaultPow)

	var sb strings.Builder
	if prec < 0 {
		p := int64(math.Pow10(-prec))
		intPart = intPart / p * p
		if negative && intPart != 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(strconv.FormatInt(intPart, 10))
		return sb.String()
	}

	digits := prec
	if digits > DefaultPrecision {
		digits = DefaultPrecision
	}
	frac /= int64(math.Pow10(DefaultPrecision - digits))

	if negative && (intPart != 0 || frac != 0) {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatInt(intPart, 10))
	if prec == 0 {
		return sb.String()
	}

	sb.WriteByte('.')
	fs := strconv.FormatInt(frac, 10)
	sb.WriteString(strings.Repeat("0", digits-len(fs)))
	sb.WriteString(fs)
	sb.WriteString(strings.Repeat("0", prec-digits))
	return sb.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Value) UnmarshalYAML(unmarshal func(a interface{}) error) (err error) {
	var i int64
	if err = unmarshal(&i); err == nil {
		*v = NewFromInt64(i)
		return
	}

	var f float64
	if err = unmarshal(&f); err == nil {
		*v = NewFromFloat(f)
		return
	}

	var s string
	if err = unmarshal(&s); err == nil {
		nv, err2 := NewFromString(s)
		if err2 == nil {
			*v = nv
			return
		}
	}

	return err
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var a interface{}
	var err = json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	switch d := a.(type) {
	case float64:
		*v = NewFromFloat(d)

	case string:
		nv, err := NewFromString(d)
		if err != nil {
			return err
		}
		*v = nv

	default:
		return errors.Errorf("unsupported type: %T %v", d, d)

	}

	return nil
}

func NewFromString(input string) (Value, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("invalid decimal: %s", input)
	}

	return NewFromFloat(v), nil
}

func MustNewFromString(input string) Value {
	v, err := NewFromString(input)
	if err != nil {
		panic(errors.Wrapf(err, "cannot parse %q as fixedpoint", input))
	}
	return v
}

func NewFromFloat(val float64) Value {
	return Value(int64(math.Round(val * DefaultPow)))
}

func NewFromInt(val int) Value {
	return Value(int64(val) * DefaultPow)
}

func NewFromInt64(val int64) Value {
	return Value(val * DefaultPow)
}

func Min(a, b Value) Value {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Value) Value {
	if a > b {
		return a
	}
	return b
}
