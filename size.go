package lvspace

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Percentage bases accepted after '%' in a size.
const (
	BaseVG     = "VG"
	BaseFree   = "FREE"
	BaseOrigin = "ORIGIN"
)

// OriginSizer looks up the size of an origin volume for %ORIGIN sizes.
type OriginSizer interface {
	VolumeSize(vgName string, lvName string) (uint64, error)
}

// SizeSpec is the size of a volume request as written by the caller. It is
// either a string in lvm size syntax ("10g", "20%FREE") or a json integer.
// The integer 0 asks for no reserved space (thin provisioning), any other
// integer is a count of megabytes.
type SizeSpec struct {
	str   string
	num   uint64
	isStr bool
}

// SizeString returns a SizeSpec for the lvm size syntax s.
func SizeString(s string) SizeSpec {
	return SizeSpec{str: s, isStr: true}
}

// SizeMegabytes returns a SizeSpec for a plain integer size.
func SizeMegabytes(n uint64) SizeSpec {
	return SizeSpec{num: n}
}

// IsThin reports whether the size is the integer 0.
func (s SizeSpec) IsThin() bool {
	return !s.isStr && s.num == 0
}

// IsOrigin reports whether the size is a percentage of the origin volume.
func (s SizeSpec) IsOrigin() bool {
	if !s.isStr {
		return false
	}

	parts := strings.Split(s.str, "%")

	return len(parts) == 2 && parts[1] == BaseOrigin
}

func (s SizeSpec) String() string {
	if s.isStr {
		return s.str
	}

	return strconv.FormatUint(s.num, 10)
}

// MarshalJSON writes the size back in the form it was read.
func (s SizeSpec) MarshalJSON() ([]byte, error) {
	if s.isStr {
		return json.Marshal(s.str)
	}

	return json.Marshal(s.num)
}

// UnmarshalJSON accepts a json string or a non-negative json integer. A null
// size is an error; leave the field out to ask for thin provisioning.
func (s *SizeSpec) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return errors.New("size must not be null")
	}

	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = SizeString(str)
		return nil
	}

	var num uint64
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("size must be a string or a non-negative integer, got %s", b)
	}

	*s = SizeMegabytes(num)

	return nil
}

// SizeSpecError is returned when a size cannot be read.
type SizeSpecError struct {
	Spec string
	Err  error
}

func (e *SizeSpecError) Error() string {
	return fmt.Sprintf("failed to read requested size %s", e.Spec)
}

func (e *SizeSpecError) Unwrap() error {
	return e.Err
}

// UnsupportedBaseError is returned for a percentage of anything other than
// VG, FREE or ORIGIN.
type UnsupportedBaseError struct {
	Base string
}

func (e *UnsupportedBaseError) Error() string {
	return fmt.Sprintf("unsupported base type %s", e.Base)
}

// Bytes normalizes the size of a request in group into bytes. origin is only
// consulted for %ORIGIN sizes and may be nil otherwise.
func (s SizeSpec) Bytes(group *GroupInfo, vgName, lvName string, origin OriginSizer) (uint64, error) {
	if !s.isStr {
		if s.num == 0 {
			return 0, nil
		}

		n, err := ToBytes(s.num, 'm')
		if err != nil {
			return 0, &SizeSpecError{Spec: s.String(), Err: err}
		}

		return n, nil
	}

	parts := strings.Split(s.str, "%")
	if len(parts) == 2 { //nolint:gomnd
		return s.percentBytes(parts[0], parts[1], group, vgName, lvName, origin)
	}

	return s.absoluteBytes()
}

func (s SizeSpec) absoluteBytes() (uint64, error) {
	if len(s.str) < 2 { //nolint:gomnd
		return 0, &SizeSpecError{Spec: s.str}
	}

	num, err := parseUnsigned(s.str[:len(s.str)-1])
	if err != nil {
		return 0, &SizeSpecError{Spec: s.str, Err: err}
	}

	n, err := ToBytes(num, s.str[len(s.str)-1])
	if err != nil {
		return 0, &SizeSpecError{Spec: s.str, Err: err}
	}

	return n, nil
}

func (s SizeSpec) percentBytes(percent, base string, group *GroupInfo,
	vgName, lvName string, origin OriginSizer) (uint64, error) {
	var of uint64

	switch base {
	case BaseVG, BaseFree, BaseOrigin:
	default:
		return 0, &UnsupportedBaseError{Base: base}
	}

	pct, err := parseUnsigned(percent)
	if err != nil {
		return 0, &SizeSpecError{Spec: s.str, Err: err}
	}

	switch base {
	case BaseVG:
		of = group.Size
	case BaseFree:
		of = group.Free
	case BaseOrigin:
		if origin == nil {
			return 0, errors.Errorf("no origin lookup for %s/%s", vgName, lvName)
		}

		of, err = origin.VolumeSize(vgName, lvName)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to get origin size of %s/%s", vgName, lvName)
		}
	}

	return percentOf(pct, of, s.str)
}

// percentOf returns pct percent of n, truncated.
func percentOf(pct, n uint64, spec string) (uint64, error) {
	hi, lo := bits.Mul64(pct, n)
	if hi >= 100 { //nolint:gomnd
		return 0, &SizeSpecError{Spec: spec, Err: errors.New("size overflows a byte count")}
	}

	q, _ := bits.Div64(hi, lo, 100) //nolint:gomnd

	return q, nil
}

// parseUnsigned accepts only decimal digits, no sign.
func parseUnsigned(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty number")
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.Errorf("invalid character %q in %q", s[i], s)
		}
	}

	return strconv.ParseUint(s, 10, 64)
}
