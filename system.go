package lvspace

import "strings"

// FilesystemInspector provides the mounted filesystem information used by
// the resize check.
type FilesystemInspector interface {
	// MountTable reads the system mount table.
	MountTable() (MountTable, error)

	// UsedBytes returns the space in use on the filesystem mounted at
	// mountPoint.
	UsedBytes(mountPoint string) (uint64, error)
}

// System interface provides the lvm and filesystem queries that are
// implemented by the specific system.
type System interface {
	VolumeReporter
	FilesystemInspector
}

// DevicePath returns the device-mapper path of the logical volume lvName in
// vgName. Hyphens inside either name are doubled the way device-mapper does
// when it joins them.
func DevicePath(vgName, lvName string) string {
	return "/dev/mapper/" + dmEscape(vgName) + "-" + dmEscape(lvName)
}

// LVPath returns the /dev/<vg>/<lv> symlink path of a logical volume.
func LVPath(vgName, lvName string) string {
	return "/dev/" + vgName + "/" + lvName
}

// Lookup returns the mount entry of the logical volume lvName in vgName. The
// device-mapper path is tried first, then the /dev/<vg>/<lv> path.
func (mt MountTable) Lookup(vgName, lvName string) (MountEntry, bool) {
	if e, ok := mt[DevicePath(vgName, lvName)]; ok {
		return e, true
	}

	e, ok := mt[LVPath(vgName, lvName)]

	return e, ok
}

func dmEscape(name string) string {
	return strings.ReplaceAll(name, "-", "--")
}
