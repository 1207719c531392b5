package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents represents a monetary value stored in minor units.
type Cents = int64

const ratePrecision = 1_000_000

// Rate is an exact decimal fraction (0.065 = 6.5%) stored as parts per
// million. Monetary math never touches floating point.
type Rate struct {
	ppm int64
}

// ZeroRate means "no rate configured" (e.g. no tax jurisdiction).
var ZeroRate = Rate{}

// ParseRate parses a decimal fraction such as "0.07" or "0.065" with up to
// six fractional digits.
func ParseRate(value string) (Rate, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ZeroRate, nil
	}
	intPart := trimmed
	fracPart := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		intPart = trimmed[:idx]
		fracPart = trimmed[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 6 {
		return ZeroRate, fmt.Errorf("rate %q has more than six fractional digits", value)
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || whole < 0 {
		return ZeroRate, fmt.Errorf("invalid rate %q", value)
	}
	var frac int64
	if fracPart != "" {
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil || frac < 0 {
			return ZeroRate, fmt.Errorf("invalid rate %q", value)
		}
		for i := len(fracPart); i < 6; i++ {
			frac *= 10
		}
	}
	return Rate{ppm: whole*ratePrecision + frac}, nil
}

// MustRate panics on parse failure. Intended for literals in tests and seeds.
func MustRate(value string) Rate {
	r, err := ParseRate(value)
	if err != nil {
		panic(err)
	}
	return r
}

// RateFromBps converts basis points (700 = 7%) into a Rate.
func RateFromBps(bps int64) Rate {
	return Rate{ppm: bps * 100}
}

// IsZero reports whether the rate is unset or zero.
func (r Rate) IsZero() bool { return r.ppm == 0 }

func (r Rate) String() string {
	whole := r.ppm / ratePrecision
	frac := r.ppm % ratePrecision
	if frac == 0 {
		return strconv.FormatInt(whole, 10)
	}
	s := fmt.Sprintf("%d.%06d", whole, frac)
	return strings.TrimRight(s, "0")
}

// MarshalJSON encodes the rate as its decimal string form.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.String())), nil
}

// UnmarshalJSON accepts the decimal string form produced by MarshalJSON.
func (r *Rate) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("rate must be a JSON string: %w", err)
	}
	parsed, err := ParseRate(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Apply multiplies an amount in cents by the rate and rounds half to even
// on the final cents value.
func (r Rate) Apply(amount Cents) Cents {
	if amount <= 0 || r.ppm <= 0 {
		return 0
	}
	product := amount * r.ppm
	quotient := product / ratePrecision
	remainder := product % ratePrecision
	half := int64(ratePrecision / 2)
	switch {
	case remainder > half:
		quotient++
	case remainder == half && quotient%2 != 0:
		quotient++
	}
	return quotient
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi Cents) Cents {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NonNegative floors v at zero.
func NonNegative(v Cents) Cents {
	if v < 0 {
		return 0
	}
	return v
}
