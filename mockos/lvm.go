package mockos

import (
	"fmt"

	"machinerun.io/lvspace"
)

func (ms *Sys) GroupInfo(vgName string) (lvspace.GroupInfo, error) {
	ms.count("vgs " + vgName)

	vg, ok := ms.VGs[vgName]
	if !ok {
		return lvspace.GroupInfo{}, fmt.Errorf("volume group \"%s\" not found", vgName)
	}

	return lvspace.GroupInfo{
		Name: vgName,
		Size: vg.Size.Bytes(),
		Free: vg.Free.Bytes(),
	}, nil
}

func (ms *Sys) VolumeSize(vgName string, lvName string) (uint64, error) {
	ms.count("lvs " + vgName + "/" + lvName)

	vg, ok := ms.VGs[vgName]
	if !ok {
		return 0, fmt.Errorf("volume group \"%s\" not found", vgName)
	}

	size, ok := vg.Volumes[lvName]
	if !ok {
		return 0, fmt.Errorf("failed to find logical volume \"%s/%s\"", vgName, lvName)
	}

	return size.Bytes(), nil
}
