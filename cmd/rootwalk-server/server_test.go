package main

import (
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/rootwalkdns/rootwalk/internal/resolver"
	"github.com/rootwalkdns/rootwalk/internal/resolver/iterative"

	"github.com/miekg/dns"
)

//////////////////////////////////////////////////////////////////////
// Mocks: a scripted resolver and a capturing dns.ResponseWriter
//////////////////////////////////////////////////////////////////////

type mockResolver struct {
	ips      map[string]string
	failWith error
	calls    int
}

func (m *mockResolver) Resolve(qname string) (net.IP, *resolver.ResponseMetaData, error) {
	m.calls++
	if m.failWith != nil {
		return nil, &resolver.ResponseMetaData{}, m.failWith
	}
	if ip, ok := m.ips[qname]; ok {
		return net.ParseIP(ip), &resolver.ResponseMetaData{Sends: 3}, nil
	}

	return nil, &resolver.ResponseMetaData{}, fmt.Errorf("%w: no A records for %s",
		iterative.ErrResolveFailed, qname)
}

type mockResponseWriter struct {
	written *dns.Msg
}

func (m *mockResponseWriter) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 53}
}
func (m *mockResponseWriter) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.ParseIP("192.0.2.99"), Port: 5353}
}
func (m *mockResponseWriter) WriteMsg(msg *dns.Msg) error { m.written = msg; return nil }
func (m *mockResponseWriter) Write(b []byte) (int, error) { return len(b), nil }
func (m *mockResponseWriter) Close() error                { return nil }
func (m *mockResponseWriter) TsigStatus() error           { return nil }
func (m *mockResponseWriter) TsigTimersOnly(bool)         {}
func (m *mockResponseWriter) Hijack()                     {}

func newTestServer(res resolver.Resolver) (*server, *bytes.Buffer) {
	cfg = &config{} // ServeDNS consults the package-wide config for log settings
	out := &bytes.Buffer{}

	return &server{stdout: out, resolver: res, listenAddress: "127.0.0.1:53"}, out
}

func newAQuery(name string) *dns.Msg {
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(name), dns.TypeA)

	return q
}

//////////////////////////////////////////////////////////////////////

func TestServeDNSSuccess(t *testing.T) {
	s, _ := newTestServer(&mockResolver{ips: map[string]string{"example.com.": "93.184.216.34"}})
	w := &mockResponseWriter{}

	s.ServeDNS(w, newAQuery("example.com"))
	if w.written == nil {
		t.Fatal("Expected a response datagram")
	}
	if w.written.Rcode != dns.RcodeSuccess {
		t.Error("Expected RcodeSuccess, not", dns.RcodeToString[w.written.Rcode])
	}
	if len(w.written.Answer) != 1 {
		t.Fatal("Expected one answer record, not", len(w.written.Answer))
	}
	a, ok := w.written.Answer[0].(*dns.A)
	if !ok {
		t.Fatal("Answer is not an A record:", w.written.Answer[0])
	}
	if a.A.String() != "93.184.216.34" {
		t.Error("Wrong answer address", a.A)
	}
	if a.Hdr.Ttl != consts.ARecordTTL {
		t.Error("Expected TTL", consts.ARecordTTL, "not", a.Hdr.Ttl)
	}
	if a.Hdr.Name != "example.com." {
		t.Error("Answer owner should match the question, not", a.Hdr.Name)
	}
}

// An unresolvable name maps onto REFUSED with no answer records, and the datagram is still
// answered.
func TestServeDNSRefused(t *testing.T) {
	s, _ := newTestServer(&mockResolver{})
	w := &mockResponseWriter{}

	s.ServeDNS(w, newAQuery("unresolvable.test"))
	if w.written == nil {
		t.Fatal("A REFUSED question must still produce a response datagram")
	}
	if w.written.Rcode != dns.RcodeRefused {
		t.Error("Expected RcodeRefused, not", dns.RcodeToString[w.written.Rcode])
	}
	if len(w.written.Answer) != 0 {
		t.Error("A REFUSED response must carry no answers, not", w.written.Answer)
	}
}

// Any non-A question drops the whole datagram into the fatal log path: no response at all.
func TestServeDNSNonAQuestion(t *testing.T) {
	mr := &mockResolver{ips: map[string]string{"example.com.": "93.184.216.34"}}
	s, out := newTestServer(mr)
	w := &mockResponseWriter{}

	q := new(dns.Msg)
	q.SetQuestion("example.com.", dns.TypeAAAA)
	s.ServeDNS(w, q)
	if w.written != nil {
		t.Error("A non-A question must drop the datagram, but a response was written")
	}
	if mr.calls != 0 {
		t.Error("A non-A question must not reach the resolver")
	}
	if !strings.Contains(out.String(), "FE:") {
		t.Error("Expected a fatal log line, got", out.String())
	}
}

// Budget overruns and transport errors abandon the datagram without a response.
func TestServeDNSFatalError(t *testing.T) {
	s, out := newTestServer(&mockResolver{failWith: iterative.ErrOverrun})
	w := &mockResponseWriter{}

	s.ServeDNS(w, newAQuery("spinning.test"))
	if w.written != nil {
		t.Error("A fatal resolution error must drop the datagram")
	}
	if !strings.Contains(out.String(), "FE:") {
		t.Error("Expected a fatal log line, got", out.String())
	}
}

// A multi-question datagram proceeds past a REFUSED question.
func TestServeDNSMultiQuestion(t *testing.T) {
	s, _ := newTestServer(&mockResolver{ips: map[string]string{"good.test.": "10.9.8.7"}})
	w := &mockResponseWriter{}

	q := new(dns.Msg)
	q.SetQuestion("bad.test.", dns.TypeA)
	q.Question = append(q.Question, dns.Question{
		Name: "good.test.", Qtype: dns.TypeA, Qclass: dns.ClassINET})
	s.ServeDNS(w, q)
	if w.written == nil {
		t.Fatal("Expected a response datagram")
	}
	if w.written.Rcode != dns.RcodeRefused {
		t.Error("The failed question should have set REFUSED")
	}
	if len(w.written.Answer) != 1 {
		t.Error("The resolvable question should still be answered. Answers:", w.written.Answer)
	}
}

func TestServerReport(t *testing.T) {
	s, _ := newTestServer(&mockResolver{ips: map[string]string{"example.com.": "93.184.216.34"}})

	s.ServeDNS(&mockResponseWriter{}, newAQuery("example.com"))
	s.ServeDNS(&mockResponseWriter{}, newAQuery("nope.test")) // REFUSED but still a success

	q := new(dns.Msg) // Dropped datagram
	q.SetQuestion("example.com.", dns.TypeTXT)
	s.ServeDNS(&mockResponseWriter{}, q)

	if !strings.Contains(s.Name(), s.listenAddress) {
		t.Error("Server Name() should mention the listen address:", s.Name())
	}
	rep := s.Report(true)
	for _, want := range []string{"req=3", "ok=2", "errs=1", "Concurrency=1"} {
		if !strings.Contains(rep, want) {
			t.Error("Report missing", want, "in", rep)
		}
	}
	rep = s.Report(false)
	if !strings.Contains(rep, "req=0") {
		t.Error("Report(true) should have reset counters. Got", rep)
	}
}
