package main

import (
	"time"

	"github.com/rootwalkdns/rootwalk/internal/flagutil"
)

type config struct {
	gops    bool
	help    bool
	verbose bool
	version bool

	listenAddresses flagutil.StringList // Addresses for inbound DNS queries

	configFile     string // Static domain=address map consulted before any resolution
	statusInterval time.Duration
	requestTimeout time.Duration // Deadline covering one whole upstream exchange
	maxSends       int           // Upstream send budget per top-level resolution

	logAll        bool // Turns on all other log options
	logClientIn   bool // Compact print of DNS query arriving from the client
	logClientOut  bool // Compact print of DNS response returned to the client
	logResolver   bool // One-line resolution events: config hits, completions, refusals
	logDelegation bool // A line per delegation step of the suffix walk

	cpuprofile, memprofile string

	setuidName, setgidName, chrootDir string // Process constraint settings
}
