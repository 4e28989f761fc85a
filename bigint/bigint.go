// Package bigint normalizes the numeric representations that reach proofs and
// circuit inputs (decimal strings, hex strings, native integers) into *big.Int.
package bigint

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedNumber is returned when a value does not denote an integer.
var ErrMalformedNumber = errors.New("malformed number")

// Normalize converts v into its canonical *big.Int form. Accepted inputs are
// decimal strings, 0x-prefixed hex strings, *big.Int, big.Int, json.Number and
// Go integer types. The returned value is always a fresh copy.
func Normalize(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case string:
		return stringToBigInt(n)
	case json.Number:
		return stringToBigInt(n.String())
	case *big.Int:
		if n == nil {
			return nil, errors.Wrap(ErrMalformedNumber, "nil *big.Int")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case nil:
		return nil, errors.Wrap(ErrMalformedNumber, "missing value")
	default:
		return nil, errors.Wrapf(ErrMalformedNumber, "unsupported type %T", v)
	}
}

// Equal reports whether a and b denote the same integer. Malformed values are
// never equal to anything.
func Equal(a, b interface{}) bool {
	x, err := Normalize(a)
	if err != nil {
		return false
	}
	y, err := Normalize(b)
	if err != nil {
		return false
	}
	return x.Cmp(y) == 0
}

// String returns the canonical decimal representation of n.
func String(n *big.Int) string {
	if n == nil {
		return ""
	}
	return n.Text(10)
}

// ArrayStringToBigInt converts string array to array of big integers.
// It fails on the first element that is not a number.
func ArrayStringToBigInt(s []string) ([]*big.Int, error) {
	o := make([]*big.Int, 0, len(s))
	for i := range s {
		si, err := stringToBigInt(s[i])
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		o = append(o, si)
	}
	return o, nil
}

// Strings converts big integers to their canonical decimal strings.
func Strings(ns []*big.Int) []string {
	o := make([]string, len(ns))
	for i, n := range ns {
		o[i] = String(n)
	}
	return o
}

func stringToBigInt(s string) (*big.Int, error) {
	orig := s
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	// SetString accepts underscores and its own prefixes with base 0, we don't.
	if s == "" || strings.ContainsAny(s, "_+- \t\n") {
		return nil, errors.Wrapf(ErrMalformedNumber, "can not parse string to *big.Int: %q", orig)
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedNumber, "can not parse string to *big.Int: %q", orig)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}
