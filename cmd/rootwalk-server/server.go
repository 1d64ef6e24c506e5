package main

/*

This module is the UDP front-end. Each inbound datagram is parsed by miekg/dns and handled in its
own go-routine; the resolution engine does the heavy lifting and this code's job is reduced to
policy: which questions are admitted, how failures map onto DNS response codes, and when the
whole datagram is abandoned.

The policy is deliberately blunt. Only A questions are served - anything else drops the entire
datagram into the fatal log path rather than answering with NOTIMPL, on the theory that a client
sending us other types has misidentified what we are and deserves a timeout it will notice. A
name the engine cannot resolve from observed records gets REFUSED for that question while the
rest of the datagram proceeds. Budget overruns and transport failures abandon the datagram: the
client's retry is as likely to succeed as anything we could do.

*/

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rootwalkdns/rootwalk/internal/concurrencytracker"
	"github.com/rootwalkdns/rootwalk/internal/dnsutil"
	"github.com/rootwalkdns/rootwalk/internal/osutil"
	"github.com/rootwalkdns/rootwalk/internal/resolver"
	"github.com/rootwalkdns/rootwalk/internal/resolver/iterative"

	"github.com/miekg/dns"
)

const ( // ser = Server ERror index into failureCounters
	serUnsupportedQtype = iota // iota resets to zero in each const() spec set
	serResolutionFatal
	serDNSWriteFailed
	serListSize
)

const ( // ev = EVent index into events array
	evConfigHit = iota // Question answered from the static map
	evRefused          // Question answered with REFUSED
	evListSize
)

type events [evListSize]bool

type stats struct {
	successCount    int              // Datagrams that ran to completion without error
	totalLatency    time.Duration    // Duration of all successful datagrams
	eventCounters   [evListSize]int  // Events that occur during the course of a datagram
	failureCounters [serListSize]int // Errors that stop a datagram from progressing
}

type server struct {
	stdout        io.Writer
	resolver      resolver.Resolver
	listenAddress string
	server        *dns.Server
	cct           concurrencytracker.Counter // Track peak concurrent handlers

	mu sync.RWMutex // Protects everything below - everything above is read-only or self-protected
	stats
}

// start opens the UDP socket, applies the Windows connreset workaround while we still hold the
// raw PacketConn, and hands it to a dns.Server running in its own go-routine. The socket error
// cases surface here, synchronously, so main can bail before constraining the process.
func (t *server) start(errorChan chan error, wg *sync.WaitGroup) error {
	pc, err := net.ListenPacket(consts.DNSUDPTransport, t.listenAddress)
	if err != nil {
		return err
	}
	if err = osutil.DisableUDPConnReset(pc); err != nil {
		pc.Close()
		return err
	}

	t.server = &dns.Server{PacketConn: pc, Handler: t}

	wg.Add(1) // Add to caller's waitGroup
	go func() {
		errorChan <- t.server.ActivateAndServe()
		wg.Done()
	}()

	return nil
}

// ServeDNS is called once per datagram in a newly created go-routine. Each question gets an
// independent resolution with its own scratch cache and send budget.
func (t *server) ServeDNS(writer dns.ResponseWriter, query *dns.Msg) {
	var evs events // Track events for end-of-request call to addSuccessStats()

	t.cct.Add() // Track peak concurrency for reporting purposes
	defer t.cct.Done()

	if cfg.logClientIn {
		fmt.Fprintln(t.stdout, "CI:"+writer.RemoteAddr().String()+":"+dnsutil.CompactMsgString(query))
	}

	resp := new(dns.Msg)
	resp.SetReply(query)

	startTime := time.Now() // Track latency
	for _, q := range query.Question {
		if q.Qtype != dns.TypeA {
			t.addFailureStats(serUnsupportedQtype, evs)
			fmt.Fprintln(t.stdout, "FE:"+writer.RemoteAddr().String(),
				"unsupported question type", dns.TypeToString[q.Qtype], "for", q.Name)
			return // The whole datagram is dropped
		}

		ip, respMeta, err := t.resolver.Resolve(q.Name)
		switch {
		case err == nil:
			if respMeta.ConfigHit {
				evs[evConfigHit] = true
			}
			resp.Answer = append(resp.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA,
					Class: dns.ClassINET, Ttl: consts.ARecordTTL},
				A: ip,
			})

		case errors.Is(err, iterative.ErrResolveFailed):
			// This question is unanswerable from observed records. Tell the client so
			// and keep going with any remaining questions.
			evs[evRefused] = true
			resp.Rcode = dns.RcodeRefused

		default:
			// Budget overruns and transport errors abandon the datagram
			t.addFailureStats(serResolutionFatal, evs)
			fmt.Fprintln(t.stdout, "FE:"+q.Name, err.Error())
			return
		}
	}
	duration := time.Now().Sub(startTime)

	err := writer.WriteMsg(resp)
	if err != nil {
		t.addFailureStats(serDNSWriteFailed, evs)
		if cfg.logClientOut {
			fmt.Fprintln(t.stdout, "CE:"+err.Error())
		}
		return
	}

	t.addSuccessStats(duration, evs)
	if cfg.logClientOut {
		fmt.Fprintln(t.stdout, "CO:"+dnsutil.CompactMsgString(resp), duration)
	}
}

// stop performs an orderly shutdown of the listen socket.
func (t *server) stop() {
	if t.server != nil {
		t.server.Shutdown()
	}
}
