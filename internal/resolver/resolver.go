// Interface for resolving a domain name to an address
package resolver

import (
	"net"
	"time"
)

// ResponseMetaData returns metadata about the work done by Resolve(). It mostly contains
// statistical and trace meta-information for logging and tests.
type ResponseMetaData struct {
	ConfigHit bool // Satisfied from the static map with zero upstream sends

	Sends    int           // Upstream sends charged to this resolution's budget
	Duration time.Duration // Wall-clock time for the whole resolution

	FinalAuthority net.IP // The authoritative server that produced the answer, if any
}

type Resolver interface {
	// Resolve produces an A-record address for qname by whatever means the implementation
	// has at its disposal. Returns the address plus metadata, or an error.
	Resolve(qname string) (net.IP, *ResponseMetaData, error)
}
