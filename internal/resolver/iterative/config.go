package iterative

import (
	"io"
	"net"

	"github.com/rootwalkdns/rootwalk/internal/picker"
	"github.com/rootwalkdns/rootwalk/internal/staticmap"

	"github.com/miekg/dns"
)

// Exchanger sends one query to one authoritative server and returns the parsed response. It is
// the only I/O the engine performs. Production wires the transport client; tests supply a
// scripted mock.
type Exchanger interface {
	Exchange(query *dns.Msg, server net.IP) (*dns.Msg, error)
}

// Config is passed to the New() constructor.
type Config struct {
	// Static short-circuits resolution for exact-match names. May be nil.
	Static *staticmap.Map

	// Exchanger is mandatory.
	Exchanger Exchanger

	// Picker makes the random choices: root server, glue address, authority name and CNAME
	// target. Defaults to picker.NewRand(). Tests supply a scripted one.
	Picker picker.Picker

	// Roots overrides the compiled-in root server addresses. Mainly for tests.
	Roots []net.IP

	// MaxSends bounds the upstream sends charged to one top-level Resolve call. Defaults to
	// constants.MaxSendsPerResolve.
	MaxSends int

	// EventLog receives one-line events: config hits, completions and failures. TraceLog
	// receives a line per delegation step. A nil writer is silent.
	EventLog io.Writer
	TraceLog io.Writer
}
