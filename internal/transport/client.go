// Package transport exchanges one DNS message with one authoritative server over TCP with
// 2-byte big-endian length framing, and fronts that with a process-wide response cache.
//
// The cache is keyed on (question text, server address) and is append-only for the life of the
// process: identical keys always return the identical response message, so callers must treat
// returned messages as immutable. The cache is also unbounded - acceptable for the intended
// deployment, a known leak for anything long-running with an adversarial query stream.
package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rootwalkdns/rootwalk/internal/constants"

	"github.com/miekg/dns"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const me = "transport"

// tfx = Transport Failure indeX into the failure counter array

type tfxInt int

const (
	tfxDial tfxInt = iota
	tfxWrite
	tfxRead
	tfxArraySize
)

// clientStats is kept as a separate struct from Client so that resetCounters() is trivial via a
// struct copy.
type clientStats struct {
	exchanges    int // Calls that went to the network
	cacheHits    int
	failures     [tfxArraySize]int
	totalLatency time.Duration
}

type Client struct {
	config Config

	cache cmap.ConcurrentMap[string, *dns.Msg]

	mu sync.RWMutex // Protects everything below here
	clientStats
}

// Caller has protected the data structures
func (t *Client) resetCounters() {
	t.clientStats = clientStats{}
}

// New is the constructor for a transport client. Zero-value Config fields are filled with
// defaults.
func New(config Config) *Client {
	t := &Client{config: config, cache: cmap.New[*dns.Msg]()}
	consts := constants.Get()
	if t.config.Timeout <= 0 {
		t.config.Timeout = consts.ExchangeTimeout
	}
	if t.config.Port == 0 {
		t.config.Port = 53
	}
	if t.config.Dialer == nil {
		t.config.Dialer = &net.Dialer{}
	}

	return t
}

// cacheKey builds the canonical (question, server) cache key: the space-joined textual form of
// the request's question list plus the server address.
func cacheKey(query *dns.Msg, server net.IP) string {
	qs := make([]string, 0, len(query.Question))
	for _, q := range query.Question {
		qs = append(qs, q.String())
	}

	return strings.Join(qs, " ") + "@" + server.String()
}

// Exchange resolves query against the authoritative server at the supplied address. The response
// cache is consulted first; on a miss one TCP exchange is made and the parsed response is cached
// before being returned. There are no retries: every dial, write, read or parse error propagates
// to the caller.
func (t *Client) Exchange(query *dns.Msg, server net.IP) (*dns.Msg, error) {
	key := cacheKey(query, server)
	if resp, ok := t.cache.Get(key); ok {
		t.addCacheHit()
		return resp, nil
	}

	deadline := time.Now().Add(t.config.Timeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	addr := net.JoinHostPort(server.String(), strconv.Itoa(int(t.config.Port)))
	raw, err := t.config.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.addFailure(tfxDial)
		return nil, fmt.Errorf(me+": Dial %s: %w", addr, err)
	}
	defer raw.Close()
	_ = raw.SetDeadline(deadline) // One deadline covers write, read-size and read-body

	start := time.Now()
	conn := &dns.Conn{Conn: raw} // dns.Conn does the 2-byte length framing on TCP
	if err = conn.WriteMsg(query); err != nil {
		t.addFailure(tfxWrite)
		return nil, fmt.Errorf(me+": Write to %s: %w", addr, err)
	}
	resp, err := conn.ReadMsg()
	if err != nil {
		t.addFailure(tfxRead)
		return nil, fmt.Errorf(me+": Read from %s: %w", addr, err)
	}

	// Duplicate in-flight exchanges for the same key each insert here; last writer wins which
	// is fine as responses for a given key are interchangeable.
	t.cache.Set(key, resp)
	t.addExchange(time.Now().Sub(start))

	return resp, nil
}

// CacheEntries returns the current response cache population.
func (t *Client) CacheEntries() int {
	return t.cache.Count()
}
