//go:build linux
// +build linux

// nolint:errcheck
package linux_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func runCommand(args ...string) error {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v failed: %s\n out: %s err: %s", args, err, stdout.String(), stderr.String())
	}

	return nil
}

// connectLoop attaches fname to a free loop device and waits for the device
// to report its size. The returned cleanup detaches it.
func connectLoop(fname string) (func() error, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command("losetup", "--find", "--show", fname)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return func() error { return nil }, "", fmt.Errorf("losetup %s: %s: %s", fname, err, stderr.String())
	}

	devPath := strings.TrimSpace(stdout.String())
	cleanup := func() error {
		return runCommand("losetup", "--detach="+devPath)
	}

	sizePath := "/sys/class/block/" + strings.TrimPrefix(devPath, "/dev/") + "/size"
	deadline := time.Now().Add(30 * time.Second) // nolint: gomnd

	for time.Now().Before(deadline) {
		if content, err := os.ReadFile(sizePath); err == nil && strings.TrimSpace(string(content)) != "0" {
			return cleanup, devPath, nil
		}

		time.Sleep(10 * time.Millisecond) // nolint: gomnd
	}

	return cleanup, devPath, fmt.Errorf("gave up waiting for non-zero size of %s", devPath)
}

func getTempFile(size int64) string {
	fp, err := os.CreateTemp("", "lvspace_test")
	if err != nil {
		panic(err)
	}

	name := fp.Name()
	fp.Close()

	if err := os.Truncate(name, size); err != nil {
		panic(err)
	}

	return name
}

func randStr(n int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"

	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))] //nolint:gosec
	}

	return string(b)
}

// canUse returns an error unless running as root with the control device
// writable and every command on PATH.
func canUse(control string, commands ...string) error {
	if uid := os.Geteuid(); uid != 0 {
		return fmt.Errorf("not root (euid=%d)", uid)
	}

	if err := unix.Access(control, unix.W_OK); err != nil {
		return fmt.Errorf("%s: not writable", control)
	}

	for _, name := range commands {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("%s: command not present", name)
		}
	}

	return nil
}

func skipIfNoLoop(t *testing.T) {
	if err := canUse("/dev/loop-control", "losetup"); err != nil {
		t.Skip(err)
	}
}

func skipIfNoLVM(t *testing.T) {
	if err := canUse("/dev/mapper/control", "lvm", "pvcreate", "vgcreate", "lvcreate", "vgs", "lvs", "mkfs.ext4"); err != nil {
		t.Skip(err)
	}
}
