//go:build windows

package osutil

import (
	"net"
	"unsafe"

	"golang.org/x/sys/windows"
)

// sioUDPConnReset is the WSAIoctl control code for SIO_UDP_CONNRESET. When a datagram sent on a
// UDP socket elicits an ICMP "port unreachable", Windows by default reports WSAECONNRESET on the
// *next* receive call which effectively kills a long-running listener. Turning the behavior off
// keeps the receive loop alive.
const sioUDPConnReset = 0x9800000C

// DisableUDPConnReset turns off the SIO_UDP_CONNRESET behavior on the supplied UDP listen socket.
func DisableUDPConnReset(pc net.PacketConn) error {
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		return nil
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var ctlErr error
	err = raw.Control(func(fd uintptr) {
		enabled := uint32(0) // FALSE - do not report ICMP unreachable as a reset
		var returned uint32
		ctlErr = windows.WSAIoctl(windows.Handle(fd), sioUDPConnReset,
			(*byte)(unsafe.Pointer(&enabled)), uint32(unsafe.Sizeof(enabled)),
			nil, 0, &returned, nil, 0)
	})
	if err != nil {
		return err
	}

	return ctlErr
}
