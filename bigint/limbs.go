package bigint

import (
	"math/big"

	"github.com/pkg/errors"
)

// Split decomposes a non-negative n into limbCount little-endian limbs of
// limbBits bits each.
func Split(n *big.Int, limbBits, limbCount int) ([]*big.Int, error) {
	if n == nil {
		return nil, errors.Wrap(ErrMalformedNumber, "nil value")
	}
	if limbBits <= 0 || limbCount <= 0 {
		return nil, errors.Errorf("invalid limb layout %dx%d", limbBits, limbCount)
	}
	if n.Sign() < 0 {
		return nil, errors.Wrapf(ErrMalformedNumber, "negative value %s", n)
	}
	if n.BitLen() > limbBits*limbCount {
		return nil, errors.Wrapf(ErrMalformedNumber,
			"value of %d bits does not fit in %d limbs of %d bits", n.BitLen(), limbCount, limbBits)
	}

	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(limbBits)), big.NewInt(1))
	rest := new(big.Int).Set(n)
	limbs := make([]*big.Int, limbCount)
	for i := 0; i < limbCount; i++ {
		limbs[i] = new(big.Int).And(rest, mask)
		rest.Rsh(rest, uint(limbBits))
	}
	return limbs, nil
}

// Join is the inverse of Split.
func Join(limbs []*big.Int, limbBits int) (*big.Int, error) {
	n := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		l := limbs[i]
		if l == nil || l.Sign() < 0 || l.BitLen() > limbBits {
			return nil, errors.Wrapf(ErrMalformedNumber, "limb %d out of range", i)
		}
		n.Lsh(n, uint(limbBits))
		n.Or(n, l)
	}
	return n, nil
}
