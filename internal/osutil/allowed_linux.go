//go:build linux

// setuid/setgid don't reliably work on Linux via Go because each Linux thread carries its own
// uid/gid and the Go runtime does not apply the change to every thread. For more details see:
// https://github.com/golang/go/issues/1435

package osutil

const (
	setuidAllowed = false
	setgidAllowed = false
)
