package cipher

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// ErrShiftParse is returned when a shift value is not a base-10 integer
var ErrShiftParse = errors.New("invalid shift value")

var bigAlphabetSize = big.NewInt(AlphabetSize)

// ParseShift parses a base-10 integer with an optional sign.
//
// Values that fit into an int64 are returned unchanged. Larger values are
// reduced modulo 26, so the result is congruent to the input and Normalize
// gives the same effective shift either way.
func ParseShift(text string) (int64, error) {
	shift, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return shift, nil
	}

	var numErr *strconv.NumError
	if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrShiftParse, text)
	}

	// out of int64 range but syntactically valid
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrShiftParse, text)
	}
	return new(big.Int).Mod(n, bigAlphabetSize).Int64(), nil
}
