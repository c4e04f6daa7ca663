package lvspace

import (
	"fmt"

	"github.com/patrickmn/go-cache"
)

type cachingReporter struct {
	vr    VolumeReporter
	cache *cache.Cache
}

// CachingReporter wraps vr so each volume group and each logical volume is
// queried at most once. Entries never expire; use one per check run.
func CachingReporter(vr VolumeReporter) VolumeReporter {
	if _, ok := vr.(*cachingReporter); ok {
		return vr
	}

	return &cachingReporter{
		vr:    vr,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (cr *cachingReporter) GroupInfo(vgName string) (GroupInfo, error) {
	type qresult struct {
		info GroupInfo
		err  error
	}

	cacheName := "vg-" + vgName

	if cached, found := cr.cache.Get(cacheName); found {
		ret := cached.(qresult)
		return ret.info, ret.err
	}

	info, err := cr.vr.GroupInfo(vgName)
	cr.cache.Set(cacheName, qresult{info: info, err: err}, cache.NoExpiration)

	return info, err
}

func (cr *cachingReporter) VolumeSize(vgName string, lvName string) (uint64, error) {
	type qresult struct {
		size uint64
		err  error
	}

	cacheName := fmt.Sprintf("lv-%s/%s", vgName, lvName)

	if cached, found := cr.cache.Get(cacheName); found {
		ret := cached.(qresult)
		return ret.size, ret.err
	}

	size, err := cr.vr.VolumeSize(vgName, lvName)
	cr.cache.Set(cacheName, qresult{size: size, err: err}, cache.NoExpiration)

	return size, err
}
