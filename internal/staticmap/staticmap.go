// Package staticmap loads the static domain-to-address configuration file (conventionally
// dns.cfg) which short-circuits resolution for exact-match names. The format is one record per
// line:
//
//	domain=ip.v4.addr.ess
//
// Lines are split on the first '='. Blank lines are skipped; anything else that does not parse is
// a startup error as a silently ignored record is a misdirected query waiting to happen.
package staticmap

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/rootwalkdns/rootwalk/internal/dnsutil"
)

const me = "staticmap"

// Map holds the loaded configuration. It is read-only after New() returns and therefore safe for
// concurrent lookups.
type Map struct {
	path    string
	entries map[string]net.IP
}

// NewEmpty returns a Map with no entries for callers that run without a configuration file.
func NewEmpty() *Map {
	return &Map{entries: make(map[string]net.IP)}
}

// New loads and parses the configuration file at path.
func New(path string) (*Map, error) {
	if len(path) == 0 {
		return nil, errors.New(me + ": Empty config file path is invalid")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(me+": %s", err.Error())
	}
	defer f.Close()

	t := &Map{path: path, entries: make(map[string]net.IP)}

	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		ix := strings.Index(line, "=")
		if ix < 1 {
			return nil, fmt.Errorf(me+": %s:%d: Expected domain=address, not '%s'",
				path, lineNo, line)
		}
		name := dnsutil.Normalize(line[:ix])
		if len(name) == 0 {
			return nil, fmt.Errorf(me+": %s:%d: Empty domain name", path, lineNo)
		}
		ip := net.ParseIP(strings.TrimSpace(line[ix+1:]))
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf(me+": %s:%d: '%s' is not an IPv4 address",
				path, lineNo, line[ix+1:])
		}
		t.entries[name] = ip.To4()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(me+": %s: %s", path, err.Error())
	}

	return t, nil
}

// Lookup returns the configured address for an exact normalized name match.
func (t *Map) Lookup(name string) (net.IP, bool) {
	ip, ok := t.entries[dnsutil.Normalize(name)]

	return ip, ok
}

// Len returns the number of configured entries.
func (t *Map) Len() int {
	return len(t.entries)
}

// Path returns the file the entries were loaded from. Empty for NewEmpty maps.
func (t *Map) Path() string {
	return t.path
}
