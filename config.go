package lvspace

import "github.com/samber/lo"

// Config holds the settings of a check run. It is built once at startup and
// not modified afterwards.
type Config struct {
	// VGSCommand is the path of the vgs binary.
	VGSCommand string

	// LVSCommand is the path of the lvs binary.
	LVSCommand string

	// MountTablePath is the mount table read by the resize check.
	MountTablePath string

	supportedFS []string
}

// Defaults used by DefaultConfig.
const (
	DefaultVGSCommand     = "/usr/sbin/vgs"
	DefaultLVSCommand     = "/usr/sbin/lvs"
	DefaultMountTablePath = "/etc/mtab"
)

// DefaultConfig returns the configuration matching a stock lvm2 install.
// The empty filesystem type stands for a volume with nothing mounted.
func DefaultConfig() Config {
	return Config{
		VGSCommand:     DefaultVGSCommand,
		LVSCommand:     DefaultLVSCommand,
		MountTablePath: DefaultMountTablePath,
		supportedFS:    []string{"", "ext2", "ext3", "ext4"},
	}
}

// SupportedFilesystems returns a copy of the filesystem types the resize
// check accepts.
func (c Config) SupportedFilesystems() []string {
	return append([]string(nil), c.supportedFS...)
}

// IsSupportedFilesystem reports whether fsType may be resized online.
func (c Config) IsSupportedFilesystem(fsType string) bool {
	return lo.Contains(c.supportedFS, fsType)
}

// WithSupportedFilesystems returns a copy of c that accepts only types.
func (c Config) WithSupportedFilesystems(types ...string) Config {
	c.supportedFS = append([]string(nil), types...)
	return c
}
