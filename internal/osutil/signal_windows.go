//go:build windows

package osutil

import (
	"os"
	"os/signal"
)

// SignalNotify subscribes to the interrupt signal - the only one Windows offers us
func SignalNotify(c chan os.Signal) {
	signal.Notify(c, os.Interrupt)
}

func IsSignalUSR1(s os.Signal) bool {
	return false
}

// Constrain is a no-op on Windows as there is no chroot/setuid/setgid equivalent worth emulating.
func Constrain(userName, groupName, chrootDir string) error {
	return nil
}

// ConstraintReport has nothing useful to say on Windows.
func ConstraintReport() string {
	return "no constraints on windows"
}
