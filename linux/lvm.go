//go:build linux
// +build linux

package linux

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"machinerun.io/lvspace"
)

// VolumeReporter returns the linux implementation of lvspace.VolumeReporter
// interface, running the vgs and lvs commands named in config.
func VolumeReporter(config lvspace.Config) lvspace.VolumeReporter {
	return &linuxLVM{vgs: config.VGSCommand, lvs: config.LVSCommand}
}

type linuxLVM struct {
	vgs string
	lvs string
}

func (ls *linuxLVM) GroupInfo(vgName string) (lvspace.GroupInfo, error) {
	log.WithField("vg", vgName).Debug("querying volume group")

	vgdatum, err := getVgReport(ls.vgs, vgName)
	if err != nil {
		return lvspace.GroupInfo{}, err
	}

	if len(vgdatum) == 0 {
		return lvspace.GroupInfo{}, fmt.Errorf("vgs reported no volume group %s", vgName)
	}

	return lvspace.GroupInfo{
		Name: vgName,
		Size: vgdatum[0].Size,
		Free: vgdatum[0].Free,
	}, nil
}

func (ls *linuxLVM) VolumeSize(vgName string, lvName string) (uint64, error) {
	log.WithFields(log.Fields{"vg": vgName, "lv": lvName}).Debug("querying logical volume")

	lvdatum, err := getLvReport(ls.lvs, vgName, lvName)
	if err != nil {
		return 0, err
	}

	if len(lvdatum) == 0 {
		return 0, fmt.Errorf("lvs reported no logical volume %s", vgLv(vgName, lvName))
	}

	return lvdatum[0].Size, nil
}
