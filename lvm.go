package lvspace

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// VolumeReporter provides the read-only lvm queries needed to account for
// space in volume groups.
type VolumeReporter interface {
	// GroupInfo returns the size and free space of the named volume group.
	// RequestedSize of the returned value is always zero.
	GroupInfo(vgName string) (GroupInfo, error)

	// VolumeSize returns the current size of the logical volume lvName in
	// the volume group vgName.
	VolumeSize(vgName string, lvName string) (uint64, error)
}

// VolumeRequest is a single entry of the batch being checked: a logical
// volume and the size requested for it (a snapshot size or a new size).
type VolumeRequest struct {
	// VG is the name of the volume group.
	VG string `json:"vg"`

	// LV is the name of the logical volume.
	LV string `json:"lv"`

	// Size is the requested size as given by the caller.
	Size SizeSpec `json:"size"`

	// NormalizedSize is Size in bytes. It is filled in by Checker.Load.
	NormalizedSize uint64 `json:"-"`
}

// Key returns the "<vg>_<lv>" name used in diagnostics.
func (r VolumeRequest) Key() string {
	return r.VG + "_" + r.LV
}

// ParseRequests decodes a JSON array of volume requests. Each element must
// name both a vg and an lv, the size defaults to 0.
func ParseRequests(data []byte) ([]VolumeRequest, error) {
	var reqs []VolumeRequest

	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, &InputError{Input: string(data), Err: err}
	}

	if reqs == nil {
		return nil, &InputError{Input: string(data), Err: errors.New("expected a json array")}
	}

	for i, r := range reqs {
		if r.VG == "" {
			return nil, &InputError{Input: string(data), Err: errors.Errorf("volume %d has no vg", i)}
		}

		if r.LV == "" {
			return nil, &InputError{Input: string(data), Err: errors.Errorf("volume %d has no lv", i)}
		}
	}

	return reqs, nil
}

// GroupInfo is the capacity of a volume group together with the space the
// batch requests from it.
type GroupInfo struct {
	// Name is the name of the volume group.
	Name string `json:"name"`

	// Size is the total size of the volume group in bytes.
	Size uint64 `json:"size"`

	// Free is the unallocated space of the volume group in bytes.
	Free uint64 `json:"free"`

	// RequestedSize is the sum of the normalized sizes of every request
	// that targets this volume group.
	RequestedSize uint64 `json:"requested_size"`
}

// GroupSet is a set of volume groups indexed by their name.
type GroupSet map[string]*GroupInfo

// Names returns the group names in sorted order.
func (gs GroupSet) Names() []string {
	names := make([]string, 0, len(gs))
	for n := range gs {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// MountEntry is one line of the mount table.
type MountEntry struct {
	Device     string `json:"device"`
	MountPoint string `json:"mountPoint"`
	FSType     string `json:"fsType"`
}

// MountTable is the mount table indexed by device path.
type MountTable map[string]MountEntry
