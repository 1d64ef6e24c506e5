package transport

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// mockDialer hands out one end of a net.Pipe and serves a canned DNS response on the other end
// using the same length-prefixed framing the client expects.
type mockDialer struct {
	mu      sync.Mutex
	dials   int
	dialErr error
	mute    bool // Accept the connection but never respond
	respond func(q *dns.Msg) *dns.Msg
}

func (d *mockDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}

	c1, c2 := net.Pipe()
	go func() {
		defer c2.Close()
		if d.mute {
			time.Sleep(time.Second)
			return
		}
		sc := &dns.Conn{Conn: c2}
		q, err := sc.ReadMsg()
		if err != nil {
			return
		}
		sc.WriteMsg(d.respond(q))
	}()

	return c1, nil
}

func (d *mockDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dials
}

func answerFor(q *dns.Msg) *dns.Msg {
	r := new(dns.Msg)
	r.SetReply(q)
	r.Answer = append(r.Answer, &dns.A{
		Hdr: dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
		A:   net.ParseIP("93.184.216.34"),
	})

	return r
}

func newQuery(name string) *dns.Msg {
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(name), dns.TypeA)
	q.RecursionDesired = false

	return q
}

func TestExchange(t *testing.T) {
	md := &mockDialer{respond: answerFor}
	c := New(Config{Dialer: md})

	resp, err := c.Exchange(newQuery("example.com"), net.ParseIP("192.0.2.1"))
	if err != nil {
		t.Fatal("Exchange failed", err)
	}
	if len(resp.Answer) != 1 {
		t.Fatal("Expected one answer record, not", len(resp.Answer))
	}
	a, ok := resp.Answer[0].(*dns.A)
	if !ok || a.A.String() != "93.184.216.34" {
		t.Error("Wrong answer record", resp.Answer[0])
	}
	if md.dialCount() != 1 {
		t.Error("Expected exactly one dial, not", md.dialCount())
	}
}

// Two Exchange calls with the same (question, server) must yield the identical response message
// and the second must make no network I/O.
func TestExchangeCacheIdempotence(t *testing.T) {
	md := &mockDialer{respond: answerFor}
	c := New(Config{Dialer: md})
	server := net.ParseIP("192.0.2.1")

	r1, err := c.Exchange(newQuery("example.com"), server)
	if err != nil {
		t.Fatal("First Exchange failed", err)
	}
	r2, err := c.Exchange(newQuery("example.com"), server)
	if err != nil {
		t.Fatal("Second Exchange failed", err)
	}
	if r1 != r2 {
		t.Error("Cache hit should return the identical response message")
	}
	if md.dialCount() != 1 {
		t.Error("Second Exchange should not touch the network. Dials:", md.dialCount())
	}
	if c.CacheEntries() != 1 {
		t.Error("Expected one cache entry, not", c.CacheEntries())
	}

	// A different server is a different key even for the same question
	_, err = c.Exchange(newQuery("example.com"), net.ParseIP("192.0.2.2"))
	if err != nil {
		t.Fatal("Exchange against second server failed", err)
	}
	if md.dialCount() != 2 {
		t.Error("Different server should miss the cache. Dials:", md.dialCount())
	}
}

func TestExchangeDialError(t *testing.T) {
	md := &mockDialer{dialErr: errors.New("no route to host")}
	c := New(Config{Dialer: md})

	_, err := c.Exchange(newQuery("example.com"), net.ParseIP("192.0.2.1"))
	if err == nil {
		t.Fatal("Expected a dial error")
	}
	if !strings.Contains(err.Error(), "Dial") {
		t.Error("Expected a Dial-flavored error, not", err)
	}
	if c.CacheEntries() != 0 {
		t.Error("A failed exchange must not populate the cache")
	}
}

// A server that accepts but never answers must trip the whole-exchange deadline.
func TestExchangeTimeout(t *testing.T) {
	md := &mockDialer{mute: true}
	c := New(Config{Dialer: md, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := c.Exchange(newQuery("example.com"), net.ParseIP("192.0.2.1"))
	if err == nil {
		t.Fatal("Expected a timeout error")
	}
	if time.Now().Sub(start) > time.Second {
		t.Error("Timeout took far longer than the configured deadline")
	}
}

func TestReport(t *testing.T) {
	md := &mockDialer{respond: answerFor}
	c := New(Config{Dialer: md})

	c.Exchange(newQuery("example.com"), net.ParseIP("192.0.2.1"))
	c.Exchange(newQuery("example.com"), net.ParseIP("192.0.2.1"))

	if c.Name() == "" {
		t.Error("Reporter Name() is empty")
	}
	s := c.Report(true)
	for _, want := range []string{"req=2", "net=1", "hits=1", "entries=1"} {
		if !strings.Contains(s, want) {
			t.Error("Report missing", want, "in", s)
		}
	}
	s = c.Report(false)
	if !strings.Contains(s, "req=0") {
		t.Error("Report(true) should have reset counters. Got", s)
	}
}
