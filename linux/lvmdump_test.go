//go:build linux
// +build linux

package linux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const gib = 1024 * 1024 * 1024

func TestParseReportSize(t *testing.T) {
	assert := assert.New(t)

	tables := []struct {
		input    string
		expected uint64
	}{
		{"<49.50g", 49*gib + gib/2},
		{"49.50g", 49*gib + gib/2},
		{"10.00G", 10 * gib},
		{"512.00m", 512 * 1024 * 1024},
		{"4.00k", 4096},
		{"4096b", 4096},
		{"1.00t", 1024 * gib},
		{"0 ", 0},
		{"0", 0},
		{"1024", 1024 * 1024 * 1024},
		{"1.5", 1024 * 1024 * 3 / 2},
		{" <2.00g ", 2 * gib},
	}

	for _, table := range tables {
		found, err := parseReportSize(table.input)
		assert.NoError(err, table.input)
		assert.Equal(table.expected, found, table.input)
	}
}

func TestParseReportSizeBad(t *testing.T) {
	assert := assert.New(t)

	for _, input := range []string{"", "<", "g", "abcg", "10x", "<<1g", "-1.0g"} {
		_, err := parseReportSize(input)
		assert.Error(err, input)
	}
}

func TestParseLvReport(t *testing.T) {
	ast := assert.New(t)
	rawStub := map[string]string{"ignore-key": "ignore-val"}

	found, err := parseLvReport([]byte(
		`{"report": [{"lv": [{
          "lv_uuid": "yY7AfO-dtWE-ROJR-f7G9-d70P-pjGF-lFfXgf",
          "lv_name": "root",
          "vg_name": "vg0",
          "lv_attr": "-wi-ao----",
          "lv_size": "<19.53g",
          "pool_lv": "",
          "origin": ""
		}]}]}`))

	ast.NoError(err)
	ast.Len(found, 1)

	found[0].raw = rawStub
	ast.Equal(
		[]lvmLVData{
			{
				Name:   "root",
				VGName: "vg0",
				Size:   20970177822,
				raw:    rawStub,
			}}, found)
}

func TestParseVgReport(t *testing.T) {
	ast := assert.New(t)
	rawStub := map[string]string{"ignore-key": "ignore-val"}
	found, err := parseVgReport([]byte(
		`{"report": [{"vg": [{
          "vg_name": "vg0",
          "vg_attr": "wz--n-",
          "vg_extent_size": "4.00m",
          "pv_count": "1",
          "lv_count": "3",
          "snap_count": "0",
          "vg_size": "<49.00g",
          "vg_free": "0 ",
          "vg_uuid": "pB0WKT-WukN-IAjl-Q1Lr-bLmH-Xh5x-In0V5e",
          "vg_profile": ""
	    }]}]}`))

	ast.NoError(err)
	ast.Len(found, 1)

	found[0].raw = rawStub
	ast.Equal(
		[]lvmVGData{
			{
				Name: "vg0",
				Size: 49 * gib,
				Free: 0,
				raw:  rawStub,
			}}, found)
}

func TestParseVgReportBad(t *testing.T) {
	ast := assert.New(t)

	for _, report := range []string{
		`not json`,
		`{"report": []}`,
		`{"report": [{"vg": [{"vg_name": "vg0", "vg_size": "bad", "vg_free": "0"}]}]}`,
		`{"report": [{"vg": [{"vg_name": "vg0", "vg_size": "1g", "vg_free": "x"}]}]}`,
	} {
		_, err := parseVgReport([]byte(report))
		ast.Error(err, report)
	}
}

func TestParseVgReportEmpty(t *testing.T) {
	ast := assert.New(t)

	found, err := parseVgReport([]byte(`{"report": [{"vg": []}]}`))
	ast.NoError(err)
	ast.Empty(found)
}
