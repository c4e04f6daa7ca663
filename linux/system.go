//go:build linux
// +build linux

package linux

import (
	"machinerun.io/lvspace"
)

type linuxSystem struct {
	lvspace.VolumeReporter
	mtabPath string
}

// System returns an linux specific implementation of lvspace.System
// interface.
func System(config lvspace.Config) lvspace.System {
	return &linuxSystem{
		VolumeReporter: VolumeReporter(config),
		mtabPath:       config.MountTablePath,
	}
}

func (ls *linuxSystem) MountTable() (lvspace.MountTable, error) {
	return readMountTable(ls.mtabPath)
}

func (ls *linuxSystem) UsedBytes(mountPoint string) (uint64, error) {
	return filesystemUsed(mountPoint)
}
