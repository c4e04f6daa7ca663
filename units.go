package lvspace

import (
	"fmt"
	"math"
	"math/bits"
	"unicode"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
)

// Binary size units understood by lvm size arguments.
const (
	Byte     = uint64(datasize.B)
	Kibibyte = uint64(datasize.KB)
	Mebibyte = uint64(datasize.MB)
	Gibibyte = uint64(datasize.GB)
	Tebibyte = uint64(datasize.TB)
	Pebibyte = uint64(datasize.PB)
	Exbibyte = uint64(datasize.EB)
)

// unitLetters is ordered by power of 1024.
const unitLetters = "bkmgtpe"

// unitScale returns the multiplier for the unit letter u. The lookup is case
// insensitive.
func unitScale(u byte) (uint64, bool) {
	switch unicode.ToLower(rune(u)) {
	case 'b':
		return Byte, true
	case 'k':
		return Kibibyte, true
	case 'm':
		return Mebibyte, true
	case 'g':
		return Gibibyte, true
	case 't':
		return Tebibyte, true
	case 'p':
		return Pebibyte, true
	case 'e':
		return Exbibyte, true
	}

	return 0, false
}

// IsUnit reports whether u is one of b, k, m, g, t, p, e in either case.
func IsUnit(u byte) bool {
	_, ok := unitScale(u)
	return ok
}

// ToBytes returns size expressed in unit as a byte count.
func ToBytes(size uint64, unit byte) (uint64, error) {
	scale, ok := unitScale(unit)
	if !ok {
		return 0, errors.Errorf("unknown size unit '%c'", unit)
	}

	hi, lo := bits.Mul64(size, scale)
	if hi != 0 {
		return 0, errors.Errorf("size %d%c overflows a byte count", size, unit)
	}

	return lo, nil
}

// FloatToBytes is ToBytes for fractional magnitudes such as the "1.50g"
// values lvm reports. The result is truncated toward zero.
func FloatToBytes(size float64, unit byte) (uint64, error) {
	scale, ok := unitScale(unit)
	if !ok {
		return 0, errors.Errorf("unknown size unit '%c'", unit)
	}

	if size < 0 || math.IsNaN(size) {
		return 0, errors.Errorf("invalid size %v%c", size, unit)
	}

	b := size * float64(scale)
	if b >= math.MaxUint64 {
		return 0, errors.Errorf("size %v%c overflows a byte count", size, unit)
	}

	return uint64(b), nil
}

// ToUnitString renders n with the largest unit that keeps the magnitude
// below 1024. The magnitude is truncated, not rounded, to two decimals:
//  ToUnitString(629145600) == "600.0m"
//  ToUnitString(1288490188) == "1.19g"
func ToUnitString(n uint64) string {
	i := 0
	scale := Byte

	for i < len(unitLetters)-1 && n/scale >= 1024 {
		scale *= 1024
		i++
	}

	whole, rem := n/scale, n%scale

	// rem < scale, so the high word stays below the divisor.
	hi, lo := bits.Mul64(rem, 100) //nolint:gomnd
	frac, _ := bits.Div64(hi, lo, scale)

	switch {
	case frac == 0:
		return fmt.Sprintf("%d.0%c", whole, unitLetters[i])
	case frac%10 == 0:
		return fmt.Sprintf("%d.%d%c", whole, frac/10, unitLetters[i])
	}

	return fmt.Sprintf("%d.%02d%c", whole, frac, unitLetters[i])
}
