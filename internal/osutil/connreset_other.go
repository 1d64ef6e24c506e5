//go:build !windows

package osutil

import (
	"net"
)

// DisableUDPConnReset is a no-op everywhere but Windows. See connreset_windows.go for the why.
func DisableUDPConnReset(pc net.PacketConn) error {
	return nil
}
