package lvspace

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// CheckKind selects which check is run over a batch.
type CheckKind string

const (
	// CheckSnapshots verifies that each group has the free space to create
	// a snapshot of the requested size for every volume.
	CheckSnapshots CheckKind = "snapshots"

	// CheckResize verifies that each group can hold every volume at its
	// requested size and that every volume can grow past its filesystem.
	CheckResize CheckKind = "resize"
)

// InputError is returned when the batch itself cannot be read.
type InputError struct {
	Input string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("provided volume list '%s' is not valid: %s", e.Input, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Checker accounts the space requested by a batch of volumes against the
// volume groups they live in.
type Checker struct {
	sys    System
	vr     VolumeReporter
	config Config

	volumes []VolumeRequest
	groups  GroupSet
}

// NewChecker returns a Checker that queries sys. Volume group and origin
// volume queries are each made at most once.
func NewChecker(sys System, config Config) *Checker {
	return &Checker{
		sys:    sys,
		vr:     CachingReporter(sys),
		config: config,
	}
}

// Load queries every volume group named in reqs, normalizes each requested
// size and adds it to its group. Any error aborts the whole batch.
func (c *Checker) Load(reqs []VolumeRequest) error {
	names := lo.Uniq(lo.Map(reqs, func(r VolumeRequest, _ int) string { return r.VG }))
	groups := make(GroupSet, len(names))

	for _, name := range names {
		info, err := c.vr.GroupInfo(name)
		if err != nil {
			return errors.Wrapf(err, "failed to query volume group %s", name)
		}

		info.Name = name
		info.RequestedSize = 0
		groups[name] = &info

		log.WithFields(log.Fields{"vg": name, "size": info.Size, "free": info.Free}).Debug("volume group")
	}

	volumes := make([]VolumeRequest, len(reqs))

	for i, r := range reqs {
		g := groups[r.VG]

		n, err := r.Size.Bytes(g, r.VG, r.LV, c.vr)
		if err != nil {
			return err
		}

		r.NormalizedSize = n
		g.RequestedSize += n
		volumes[i] = r

		log.WithFields(log.Fields{"vg": r.VG, "lv": r.LV, "size": r.Size.String(), "bytes": n}).Debug("requested size")
	}

	c.volumes = volumes
	c.groups = groups

	return nil
}

// Groups returns the accounting built by Load.
func (c *Checker) Groups() GroupSet {
	return c.groups
}

// Volumes returns the requests of the batch with NormalizedSize filled in.
func (c *Checker) Volumes() []VolumeRequest {
	return c.volumes
}

// Check runs the check selected by kind over the loaded batch.
func (c *Checker) Check(kind CheckKind) (Result, error) {
	switch kind {
	case CheckSnapshots:
		return c.CheckSnapshots(), nil
	case CheckResize:
		return c.CheckResize()
	}

	return Result{}, errors.Errorf("unknown check '%s'", kind)
}

// CheckSnapshots verifies that no group is asked for more than its free
// space.
func (c *Checker) CheckSnapshots() Result {
	return c.checkGroups(func(g *GroupInfo) uint64 { return g.Free })
}

func (c *Checker) checkGroups(capacity func(*GroupInfo) uint64) Result {
	enough := lo.EveryBy(lo.Values(c.groups), func(g *GroupInfo) bool {
		return g.RequestedSize <= capacity(g)
	})

	if !enough {
		return Result{Outcome: GroupSpace, Groups: c.groups}
	}

	return Result{Outcome: Success}
}

// volumeState is what the resize stages learn about one volume.
type volumeState struct {
	req    VolumeRequest
	fsType string
	used   uint64
}

// resizeStage returns Success to let the next stage run.
type resizeStage func(states []volumeState) Outcome

// CheckResize runs, in order, the group total capacity check, the
// filesystem type check and the per-volume headroom check, stopping at the
// first that fails.
func (c *Checker) CheckResize() (Result, error) {
	if r := c.checkGroups(func(g *GroupInfo) uint64 { return g.Size }); !r.OK() {
		return r, nil
	}

	states, err := c.volumeStates()
	if err != nil {
		return Result{}, err
	}

	stages := []resizeStage{c.checkFilesystemTypes, c.checkHeadroom}

	for _, stage := range stages {
		if o := stage(states); o != Success {
			return Result{Outcome: o, Volumes: usageRows(states)}, nil
		}
	}

	return Result{Outcome: Success}, nil
}

func (c *Checker) volumeStates() ([]volumeState, error) {
	mtab, err := c.sys.MountTable()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the mount table")
	}

	states := make([]volumeState, len(c.volumes))

	for i, v := range c.volumes {
		states[i].req = v

		entry, ok := mtab.Lookup(v.VG, v.LV)
		if !ok {
			continue
		}

		used, err := c.sys.UsedBytes(entry.MountPoint)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get used space of %s", entry.MountPoint)
		}

		states[i].fsType = entry.FSType
		states[i].used = used

		log.WithFields(log.Fields{
			"vg": v.VG, "lv": v.LV, "mount": entry.MountPoint, "type": entry.FSType, "used": used,
		}).Debug("mounted filesystem")
	}

	return states, nil
}

func (c *Checker) checkFilesystemTypes(states []volumeState) Outcome {
	if lo.EveryBy(states, func(s volumeState) bool { return c.config.IsSupportedFilesystem(s.fsType) }) {
		return Success
	}

	return FilesystemType
}

func (c *Checker) checkHeadroom(states []volumeState) Outcome {
	if lo.EveryBy(states, func(s volumeState) bool { return s.req.NormalizedSize > s.used }) {
		return Success
	}

	return VolumeSpace
}

func usageRows(states []volumeState) map[string]VolumeUsage {
	rows := make(map[string]VolumeUsage, len(states))

	for _, s := range states {
		rows[s.req.Key()] = VolumeUsage{
			FSType:        s.fsType,
			Used:          ToUnitString(s.used),
			RequestedSize: ToUnitString(s.req.NormalizedSize),
		}
	}

	return rows
}

// Run parses the json batch in input, loads it and runs the kind check.
func Run(sys System, config Config, kind CheckKind, input []byte) (Result, error) {
	reqs, err := ParseRequests(input)
	if err != nil {
		return Result{}, err
	}

	c := NewChecker(sys, config)
	if err := c.Load(reqs); err != nil {
		return Result{}, err
	}

	return c.Check(kind)
}
