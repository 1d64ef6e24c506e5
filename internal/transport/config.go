package transport

import (
	"time"

	"golang.org/x/net/proxy"
)

// Config is passed to the New() constructor.
type Config struct {
	// Timeout bounds a whole exchange: dial, write, read-size and read-body all share one
	// deadline computed when the exchange starts. Defaults to constants.ExchangeTimeout.
	Timeout time.Duration

	// Port is the authoritative server port. Defaults to 53.
	Port uint16

	// Dialer makes the TCP connection to the authoritative server. Defaults to a plain
	// net.Dialer. Callers can substitute a SOCKS dialer, or tests an in-memory one.
	Dialer proxy.ContextDialer
}
