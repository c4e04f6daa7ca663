package mockos

import (
	"encoding/json"
	"io/ioutil"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"machinerun.io/lvspace"
)

// Sys is a mock os implementation of the lvspace.System interface, backed
// by a json layout. Sizes in the layout are datasize strings ("10GB",
// "512MB", "1000B").
type Sys struct {
	VGs    map[string]VG `json:"vgs"`
	Mounts []Mount       `json:"mounts"`

	queries map[string]int
}

// VG is a volume group of the layout.
type VG struct {
	Size    datasize.ByteSize            `json:"size"`
	Free    datasize.ByteSize            `json:"free"`
	Volumes map[string]datasize.ByteSize `json:"volumes"`
}

// Mount is a mounted filesystem of the layout.
type Mount struct {
	Device     string            `json:"device"`
	MountPoint string            `json:"mountPoint"`
	FSType     string            `json:"fsType"`
	Used       datasize.ByteSize `json:"used"`
}

// System returns the mock system described by the layout file. It panics if
// the layout cannot be read.
func System(layout string) *Sys {
	sys, err := Load(layout)
	if err != nil {
		panic(err)
	}

	return sys
}

// Load reads a layout file.
func Load(layout string) (*Sys, error) {
	file, err := ioutil.ReadFile(layout)
	if err != nil {
		return nil, err
	}

	sys, err := Parse(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse layout %s", layout)
	}

	return sys, nil
}

// Parse reads a layout from its json content.
func Parse(content []byte) (*Sys, error) {
	sys := &Sys{}

	if err := json.Unmarshal(content, sys); err != nil {
		return nil, err
	}

	if sys.VGs == nil {
		sys.VGs = map[string]VG{}
	}

	sys.queries = map[string]int{}

	return sys, nil
}

// Queries returns how many times the query named key was made. Keys are
// "vgs <vg>", "lvs <vg>/<lv>", "mtab" and "statfs <mount point>".
func (ms *Sys) Queries(key string) int {
	return ms.queries[key]
}

func (ms *Sys) count(key string) {
	if ms.queries == nil {
		ms.queries = map[string]int{}
	}

	ms.queries[key]++
}

func (ms *Sys) MountTable() (lvspace.MountTable, error) {
	ms.count("mtab")

	mtab := lvspace.MountTable{}

	for _, m := range ms.Mounts {
		mtab[m.Device] = lvspace.MountEntry{
			Device:     m.Device,
			MountPoint: m.MountPoint,
			FSType:     m.FSType,
		}
	}

	return mtab, nil
}

func (ms *Sys) UsedBytes(mountPoint string) (uint64, error) {
	ms.count("statfs " + mountPoint)

	for _, m := range ms.Mounts {
		if m.MountPoint == mountPoint {
			return m.Used.Bytes(), nil
		}
	}

	return 0, errors.Errorf("%s is not mounted", mountPoint)
}
