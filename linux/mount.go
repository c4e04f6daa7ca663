//go:build linux
// +build linux

package linux

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"machinerun.io/lvspace"
)

// mtabFields is the number of fields on a mount table line: device, mount
// point, type, options, dump and pass.
const mtabFields = 6

// ParseMountTable reads a mount table in fstab(5) format and indexes it by
// device. Later lines win over earlier ones for the same device.
func ParseMountTable(r io.Reader) (lvspace.MountTable, error) {
	mtab := lvspace.MountTable{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		toks := strings.Fields(scanner.Text())

		if len(toks) != mtabFields {
			return mtab, fmt.Errorf("mount table line %d: expected %d fields, found %d: %q",
				lineNum, mtabFields, len(toks), scanner.Text())
		}

		entry := lvspace.MountEntry{
			Device:     unescapeOctal(toks[0]),
			MountPoint: unescapeOctal(toks[1]),
			FSType:     toks[2],
		}
		mtab[entry.Device] = entry
	}

	if err := scanner.Err(); err != nil {
		return mtab, errors.Wrap(err, "failed to read mount table")
	}

	return mtab, nil
}

func readMountTable(path string) (lvspace.MountTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return lvspace.MountTable{}, err
	}

	defer f.Close()

	mtab, err := ParseMountTable(f)
	if err != nil {
		return mtab, errors.Wrapf(err, "failed to parse %s", path)
	}

	return mtab, nil
}

// unescapeOctal decodes the \ooo escapes the kernel uses for spaces, tabs,
// newlines and backslashes in mount table fields.
//  unescapeOctal(`/mnt/my\040data`) == "/mnt/my data"
func unescapeOctal(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1:i+4]) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3

				continue
			}
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

func isOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}

	return true
}

// filesystemUsed returns the bytes in use on the filesystem mounted at
// mountPoint, counting blocks reserved for root as free.
func filesystemUsed(mountPoint string) (uint64, error) {
	var stat unix.Statfs_t

	if err := unix.Statfs(mountPoint, &stat); err != nil {
		return 0, errors.Wrapf(err, "statfs %s", mountPoint)
	}

	return (stat.Blocks - stat.Bfree) * uint64(stat.Bsize), nil
}
