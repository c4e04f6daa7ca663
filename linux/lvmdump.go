//go:build linux
// +build linux

package linux

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"machinerun.io/lvspace"
)

// parseReportSize reads a size as printed by vgs and lvs without --units:
// a decimal magnitude followed by a unit letter ("<49.50g", "512.00m"), or a
// bare number of megabytes. A leading '<' marks a rounded value and is
// ignored.
func parseReportSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return lvspace.FloatToBytes(v, 'm')
	}

	s = strings.TrimPrefix(s, "<")
	if len(s) < 2 { //nolint:gomnd
		return 0, fmt.Errorf("invalid size '%s' in lvm report", s)
	}

	v, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size '%s' in lvm report", s)
	}

	return lvspace.FloatToBytes(v, s[len(s)-1])
}

type lvmVGData struct {
	Name string
	Size uint64
	Free uint64
	raw  map[string]string
}

func (d *lvmVGData) UnmarshalJSON(b []byte) error {
	var m map[string]string
	err := json.Unmarshal(b, &m)

	if err != nil {
		return err
	}

	d.raw = m
	d.Name = m["vg_name"]

	if d.Size, err = parseReportSize(m["vg_size"]); err != nil {
		return errors.Wrap(err, "vg_size")
	}

	if d.Free, err = parseReportSize(m["vg_free"]); err != nil {
		return errors.Wrap(err, "vg_free")
	}

	return nil
}

func parseVgReport(report []byte) ([]lvmVGData, error) {
	var d map[string]([]map[string]([]lvmVGData))
	err := json.Unmarshal(report, &d)

	if err != nil {
		return []lvmVGData{}, err
	}

	if len(d["report"]) == 0 {
		return []lvmVGData{}, fmt.Errorf("lvm report has no entries")
	}

	return d["report"][0]["vg"], nil
}

type lvmLVData struct {
	Name   string
	VGName string
	Size   uint64
	raw    map[string]string
}

func (d *lvmLVData) UnmarshalJSON(b []byte) error {
	var m map[string]string

	err := json.Unmarshal(b, &m)
	if err != nil {
		return err
	}

	d.raw = m
	d.Name = m["lv_name"]
	d.VGName = m["vg_name"]

	if d.Size, err = parseReportSize(m["lv_size"]); err != nil {
		return errors.Wrap(err, "lv_size")
	}

	return nil
}

func parseLvReport(report []byte) ([]lvmLVData, error) {
	var d map[string]([]map[string]([]lvmLVData))

	err := json.Unmarshal(report, &d)
	if err != nil {
		return []lvmLVData{}, err
	}

	if len(d["report"]) == 0 {
		return []lvmLVData{}, fmt.Errorf("lvm report has no entries")
	}

	return d["report"][0]["lv"], nil
}

func getVgReport(vgs string, vgName string) ([]lvmVGData, error) {
	cmd := []string{vgs, vgName, "-v", "--reportformat", "json"}
	out, stderr, rc := runCommandWithOutputErrorRc(cmd...)

	if rc != 0 {
		return []lvmVGData{}, cmdError(cmd, out, stderr, rc)
	}

	return parseVgReport(out)
}

func getLvReport(lvs string, vgName string, lvName string) ([]lvmLVData, error) {
	cmd := []string{lvs, vgLv(vgName, lvName), "-v", "--reportformat", "json"}
	out, stderr, rc := runCommandWithOutputErrorRc(cmd...)

	if rc != 0 {
		return []lvmLVData{}, cmdError(cmd, out, stderr, rc)
	}

	return parseLvReport(out)
}
