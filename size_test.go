package lvspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type originSizes struct {
	sizes map[string]uint64
	calls map[string]int
}

func (o *originSizes) VolumeSize(vgName, lvName string) (uint64, error) {
	key := vgName + "/" + lvName

	if o.calls == nil {
		o.calls = map[string]int{}
	}

	o.calls[key]++

	size, ok := o.sizes[key]
	if !ok {
		return 0, fmt.Errorf("no such volume %s", key)
	}

	return size, nil
}

func testGroup() *GroupInfo {
	return &GroupInfo{Name: "vg0", Size: 10 * Gibibyte, Free: 4 * Gibibyte}
}

func TestSizeSpecBytes(t *testing.T) {
	assert := assert.New(t)
	origin := &originSizes{sizes: map[string]uint64{"vg0/root": 8 * Gibibyte}}

	tables := []struct {
		spec     SizeSpec
		expected uint64
	}{
		{SizeSpec{}, 0},
		{SizeMegabytes(0), 0},
		{SizeMegabytes(100), 100 * Mebibyte},
		{SizeString("512b"), 512},
		{SizeString("10k"), 10 * Kibibyte},
		{SizeString("10K"), 10 * Kibibyte},
		{SizeString("500m"), 500 * Mebibyte},
		{SizeString("2G"), 2 * Gibibyte},
		{SizeString("1t"), Tebibyte},
		{SizeString("1p"), Pebibyte},
		{SizeString("1e"), Exbibyte},
		{SizeString("50%VG"), 5 * Gibibyte},
		{SizeString("100%FREE"), 4 * Gibibyte},
		{SizeString("25%FREE"), Gibibyte},
		{SizeString("0%VG"), 0},
		{SizeString("20%ORIGIN"), 8 * Gibibyte / 5},
		{SizeString("150%ORIGIN"), 12 * Gibibyte},
		{SizeString("33%VG"), 10 * Gibibyte * 33 / 100},
	}

	for _, table := range tables {
		found, err := table.spec.Bytes(testGroup(), "vg0", "root", origin)
		assert.NoError(err, table.spec.String())
		assert.Equal(table.expected, found, table.spec.String())
	}
}

func TestSizeSpecThinSkipsOrigin(t *testing.T) {
	assert := assert.New(t)
	origin := &originSizes{}

	found, err := SizeSpec{}.Bytes(testGroup(), "vg0", "root", origin)
	assert.NoError(err)
	assert.Equal(uint64(0), found)
	assert.Empty(origin.calls)

	_, err = SizeString("50%VG").Bytes(testGroup(), "vg0", "root", origin)
	assert.NoError(err)
	assert.Empty(origin.calls, "only %ORIGIN sizes query the volume")
}

func TestSizeSpecBadSize(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{"abc", "", "g", "10", "10x", "+10g", "-10g", "1.5g", " 10g", "10 g",
		"%VG", "abc%VG", "-5%VG", "1%2%VG", "99999999999999999999g"} {
		_, err := SizeString(s).Bytes(testGroup(), "vg0", "root", nil)

		var specErr *SizeSpecError

		if assert.True(errors.As(err, &specErr), "%q: %v", s, err) {
			assert.Equal(s, specErr.Spec)
			assert.Equal("failed to read requested size "+s, specErr.Error())
		}
	}
}

func TestSizeSpecUnsupportedBase(t *testing.T) {
	assert := assert.New(t)

	for _, base := range []string{"BOGUS", "vg", "Free", "origin", "PVS", ""} {
		_, err := SizeString("50%"+base).Bytes(testGroup(), "vg0", "root", nil)

		var baseErr *UnsupportedBaseError

		if assert.True(errors.As(err, &baseErr), "%q: %v", base, err) {
			assert.Equal(base, baseErr.Base)
		}
	}

	_, err := SizeString("50%BOGUS").Bytes(testGroup(), "vg0", "root", nil)
	assert.EqualError(err, "unsupported base type BOGUS")
}

func TestSizeSpecOriginError(t *testing.T) {
	assert := assert.New(t)
	origin := &originSizes{}

	_, err := SizeString("10%ORIGIN").Bytes(testGroup(), "vg0", "missing", origin)
	assert.Error(err)
	assert.Equal(1, origin.calls["vg0/missing"])

	_, err = SizeString("10%ORIGIN").Bytes(testGroup(), "vg0", "missing", nil)
	assert.Error(err)
}

func TestSizeSpecOverflow(t *testing.T) {
	assert := assert.New(t)
	group := &GroupInfo{Name: "big", Size: Exbibyte * 15}

	found, err := SizeString("100%VG").Bytes(group, "big", "lv", nil)
	assert.NoError(err)
	assert.Equal(Exbibyte*15, found)

	_, err = SizeString("200%VG").Bytes(group, "big", "lv", nil)

	var specErr *SizeSpecError
	assert.True(errors.As(err, &specErr))
}

func TestSizeSpecIsOrigin(t *testing.T) {
	assert := assert.New(t)

	assert.True(SizeString("10%ORIGIN").IsOrigin())
	assert.False(SizeString("10%VG").IsOrigin())
	assert.False(SizeString("10g").IsOrigin())
	assert.False(SizeSpec{}.IsOrigin())
	assert.True(SizeSpec{}.IsThin())
	assert.False(SizeMegabytes(1).IsThin())
	assert.False(SizeString("0").IsThin())
}

func TestSizeSpecJSON(t *testing.T) {
	assert := assert.New(t)

	tables := []struct {
		json     string
		expected SizeSpec
	}{
		{`"10g"`, SizeString("10g")},
		{`"50%FREE"`, SizeString("50%FREE")},
		{`0`, SizeMegabytes(0)},
		{`1024`, SizeMegabytes(1024)},
	}

	for _, table := range tables {
		var found SizeSpec

		assert.NoError(json.Unmarshal([]byte(table.json), &found), table.json)
		assert.Equal(table.expected, found, table.json)
	}

	for _, bad := range []string{`-1`, `1.5`, `true`, `{}`, `["1g"]`, `null`} {
		var found SizeSpec

		assert.Error(json.Unmarshal([]byte(bad), &found), bad)
	}

	jbytes, err := json.Marshal(SizeString("20%VG"))
	assert.NoError(err)
	assert.Equal(`"20%VG"`, string(jbytes))

	jbytes, err = json.Marshal(SizeSpec{})
	assert.NoError(err)
	assert.Equal(`0`, string(jbytes))
}
