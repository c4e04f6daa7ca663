//go:build linux
// +build linux

package linux

import (
	"bytes"
	"fmt"
	"os/exec"
	"path"
	"syscall"

	log "github.com/sirupsen/logrus"
)

func getCommandErrorRCDefault(err error, rcError int) int {
	if err == nil {
		return 0
	}

	exitError, ok := err.(*exec.ExitError)
	if ok {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
	}

	return rcError
}

func getCommandErrorRC(err error) int {
	return getCommandErrorRCDefault(err, 127)
}

func cmdError(args []string, out []byte, err []byte, rc int) error {
	if rc == 0 {
		return nil
	}

	return fmt.Errorf(
		"command failed [%d]:\n cmd: %v\nout:%s\nerr:%s",
		rc, args, out, err)
}

func runCommandWithOutputErrorRc(args ...string) ([]byte, []byte, int) {
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	rc := getCommandErrorRC(err)

	log.WithFields(log.Fields{"cmd": args, "rc": rc}).Debug("ran command")

	return stdout.Bytes(), stderr.Bytes(), rc
}

func vgLv(vgName, lvName string) string {
	return path.Join(vgName, lvName)
}
