package iterative

import (
	"net"
)

// The 13 IPv4 root server addresses per the IANA root hints file. Refreshed by hand on the rare
// occasion a root operator renumbers.
var rootServerStrings = []string{
	"198.41.0.4",     // a.root-servers.net
	"170.247.170.2",  // b.root-servers.net
	"192.33.4.12",    // c.root-servers.net
	"199.7.91.13",    // d.root-servers.net
	"192.203.230.10", // e.root-servers.net
	"192.5.5.241",    // f.root-servers.net
	"192.112.36.4",   // g.root-servers.net
	"198.97.190.53",  // h.root-servers.net
	"192.36.148.17",  // i.root-servers.net
	"192.58.128.30",  // j.root-servers.net
	"193.0.14.129",   // k.root-servers.net
	"199.7.83.42",    // l.root-servers.net
	"202.12.27.33",   // m.root-servers.net
}

func rootServers() []net.IP {
	roots := make([]net.IP, 0, len(rootServerStrings))
	for _, s := range rootServerStrings {
		roots = append(roots, net.ParseIP(s).To4())
	}

	return roots
}
