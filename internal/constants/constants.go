/*
Package constants provides common values used across all rootwalk packages. Usage is to call the
global Get() function which returns the Constants by value ensuring that any modifications made
(accidental or otherwise) will not affect other modules when they call Get().

Typically usage:

	consts := constants.Get()
	fmt.Println("I am", consts.ServerProgramName)

The primary reason for making this a constructed struct rather than the more typical const () block
is so that it can be fed directly into templating packages for printing usage messages.
*/
package constants

import (
	"time"
)

// Constants contains the system-wide constants
type Constants struct {
	DigProgramName    string
	ServerProgramName string // Package related constants
	Version           string
	PackageName       string
	PackageURL        string

	DNSDefaultPort string // DNS related constants
	ARecordTTL     uint32 // TTL placed on synthesized A answers

	MaxSendsPerResolve int           // Upstream queries allowed within one top-level resolution
	ExchangeTimeout    time.Duration // Covers connect+write+read of one upstream exchange

	DNSUDPTransport string // Suitable for the "net" package, but just to make sure we're
	DNSTCPTransport string // consistent across the whole package.
}

var readOnlyConstants *Constants

// createReadOnlyConstants creates a read-only copy of the Constants which is copied whenever a
// caller asks for the constants set.
func createReadOnlyConstants() {
	readOnlyConstants = &Constants{
		DigProgramName:    "rootwalk-dig",
		ServerProgramName: "rootwalk-server",
		Version:           "v0.1.0",
		PackageName:       "Rootwalk Iterative DNS",
		PackageURL:        "https://github.com/rootwalkdns/rootwalk",

		DNSDefaultPort: "53",
		ARecordTTL:     60,

		MaxSendsPerResolve: 100,
		ExchangeTimeout:    10 * time.Second,

		DNSUDPTransport: "udp",
		DNSTCPTransport: "tcp",
	}
}

func init() {
	createReadOnlyConstants()
}

// Get returns a copy of the Constant struct. Return by value so internal values cannot be
// inadvertently changed by callers.
func Get() Constants {
	return *readOnlyConstants
}
