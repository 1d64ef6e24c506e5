// Package iterative implements the resolution core: it answers A-record queries by walking the
// public DNS hierarchy from the root servers down, following delegations label by label, chasing
// CNAMEs and falling back to SOA master names when additional-section glue is missing. It relies
// on no upstream recursive resolver.
package iterative

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rootwalkdns/rootwalk/internal/constants"
	"github.com/rootwalkdns/rootwalk/internal/dnsutil"
	"github.com/rootwalkdns/rootwalk/internal/picker"
	"github.com/rootwalkdns/rootwalk/internal/resolver"

	"github.com/miekg/dns"
)

const me = "iterative"

var (
	// ErrResolveFailed means the observed records cannot produce an address for the name.
	// The front-end downgrades this to a REFUSED response.
	ErrResolveFailed = errors.New(me + ": resolve failed")

	// ErrOverrun means one top-level resolution tried to exceed its send budget.
	ErrOverrun = errors.New(me + ": send budget exceeded")
)

type iterative struct {
	config Config

	statsHolder // engineStats plus its mutex - see reporter.go
}

// New is the constructor for the iterative resolution engine. Zero-value Config fields other
// than Exchanger are filled with defaults.
func New(config Config) (*iterative, error) {
	t := &iterative{config: config}
	if t.config.Exchanger == nil {
		return nil, errors.New(me + ": Config.Exchanger is mandatory")
	}
	if t.config.Picker == nil {
		t.config.Picker = picker.NewRand()
	}
	if len(t.config.Roots) == 0 {
		t.config.Roots = rootServers()
	}
	if t.config.MaxSends <= 0 {
		t.config.MaxSends = constants.Get().MaxSendsPerResolve
	}

	return t, nil
}

// resolution carries the state owned by one top-level Resolve call: the scratch glue cache and
// the send budget. It is created fresh per call and never shared, so two concurrent resolutions
// cannot contaminate each other's glue.
type resolution struct {
	engine *iterative
	micro  map[string]net.IP // name -> address learned from glue during this resolution
	sends  int
}

// Resolve satisfies resolver.Resolver. The static map is consulted first; otherwise the suffix
// walk finds the most specific authority and a final A query against it produces the answer.
func (t *iterative) Resolve(qname string) (net.IP, *resolver.ResponseMetaData, error) {
	start := time.Now()
	name := dnsutil.Normalize(qname)
	meta := &resolver.ResponseMetaData{}

	if t.config.Static != nil {
		if ip, ok := t.config.Static.Lookup(name); ok {
			meta.ConfigHit = true
			meta.Duration = time.Now().Sub(start)
			t.addConfigHit()
			t.eventf("RI:config %s %s", name, ip)
			return ip, meta, nil
		}
	}

	r := &resolution{engine: t, micro: make(map[string]net.IP)}
	authority, answer, err := r.resolveAuthority(name)
	if err == nil && answer == nil {
		answer, err = r.finalA(name, authority)
	}

	meta.Sends = r.sends
	meta.Duration = time.Now().Sub(start)
	meta.FinalAuthority = authority

	if err != nil {
		t.addFailure(failureIndex(err))
		if errors.Is(err, ErrResolveFailed) {
			t.eventf("RW:refused %s sends=%d: %s", name, r.sends, err)
		} else {
			t.eventf("RE:error %s sends=%d: %s", name, r.sends, err)
		}
		return nil, meta, err
	}

	t.addSuccess(r.sends, meta.Duration)
	t.eventf("RI:resolved %s %s sends=%d", name, answer, r.sends)

	return answer, meta, nil
}

// send issues one query via the exchanger, charging it to this resolution's budget first. The
// charge lands before the exchanger sees the query so a response-cache hit still counts, keeping
// budget accounting independent of cache state.
func (r *resolution) send(qname string, qtype uint16, server net.IP) (*dns.Msg, error) {
	r.sends++
	if r.sends > r.engine.config.MaxSends {
		return nil, fmt.Errorf("%w: %d sends within one resolution", ErrOverrun, r.sends)
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(qname), qtype)
	m.RecursionDesired = false

	return r.engine.config.Exchanger.Exchange(m, server)
}

// glueAddr is one additional-section A record whose owner is a delegated name server.
type glueAddr struct {
	name string
	ip   net.IP
}

// delegation buckets one NS response the way the walk classifies it at each suffix.
type delegation struct {
	authorityDomains []string   // NS target names owned by the suffix, deduped, arrival order
	glue             []glueAddr // additional-section A records for those targets
	soaDomains       []string   // SOA master names from the authority section
	cnameDomains     []string   // CNAME targets from the answer section
}

func classify(resp *dns.Msg, part string) *delegation {
	d := &delegation{}

	seenNS := make(map[string]bool)
	nsRecords := make([]dns.RR, 0, len(resp.Answer)+len(resp.Ns))
	nsRecords = append(nsRecords, resp.Answer...)
	nsRecords = append(nsRecords, resp.Ns...)
	for _, rr := range nsRecords {
		if ns, ok := rr.(*dns.NS); ok && dnsutil.Equal(ns.Hdr.Name, part) {
			target := dnsutil.Normalize(ns.Ns)
			if !seenNS[target] {
				seenNS[target] = true
				d.authorityDomains = append(d.authorityDomains, target)
			}
		}
	}

	for _, rr := range resp.Extra {
		if a, ok := rr.(*dns.A); ok {
			if owner := dnsutil.Normalize(a.Hdr.Name); seenNS[owner] {
				d.glue = append(d.glue, glueAddr{name: owner, ip: a.A})
			}
		}
	}

	for _, rr := range resp.Ns {
		if soa, ok := rr.(*dns.SOA); ok {
			d.soaDomains = append(d.soaDomains, dnsutil.Normalize(soa.Ns))
		}
	}

	for _, rr := range resp.Answer {
		if cname, ok := rr.(*dns.CNAME); ok {
			d.cnameDomains = append(d.cnameDomains, dnsutil.Normalize(cname.Target))
		}
	}

	return d
}

// resolveAuthority walks the suffix list from a randomly chosen root downwards and returns the
// address of the most specific authority reached. A CNAME encountered on the way terminates the
// walk early and also produces the final answer, which is returned alongside the authority.
//
// The classification at each suffix applies the first matching row:
//
//	glue present                 -> descend to a glue address
//	CNAME and SOA                -> answer the CNAME target via the SOA master
//	CNAME only                   -> restart the walk at the target
//	SOA only                     -> hop to the SOA master and keep walking
//	NS names without addresses   -> resolve one name server's address from scratch
//	nothing                      -> the name is unresolvable
func (r *resolution) resolveAuthority(name string) (net.IP, net.IP, error) {
	t := r.engine
	authority := t.config.Roots[t.config.Picker.Pick(len(t.config.Roots))]

	for _, part := range dnsutil.Suffixes(name) {
		resp, err := r.send(part, dns.TypeNS, authority)
		if err != nil {
			return nil, nil, err
		}

		d := classify(resp, part)
		for _, g := range d.glue {
			r.micro[g.name] = g.ip // Bank the glue before acting on the response
		}
		t.tracef("DL:%s @%s ns=%d glue=%d soa=%d cname=%d",
			part, authority, len(d.authorityDomains), len(d.glue),
			len(d.soaDomains), len(d.cnameDomains))

		switch {
		case len(d.glue) > 0:
			// Delegation with glue: descend directly
			authority = d.glue[t.config.Picker.Pick(len(d.glue))].ip

		case len(d.cnameDomains) > 0 && len(d.soaDomains) > 0:
			// CNAME alongside an SOA: the zone authority answers for the target itself
			target := d.cnameDomains[t.config.Picker.Pick(len(d.cnameDomains))]
			soaIP, err := r.resolveSOA(d.soaDomains[0], part, authority)
			if err != nil {
				return nil, nil, err
			}
			t.tracef("DL:%s cname %s via soa %s", part, target, soaIP)
			answer, err := r.finalA(target, soaIP)
			if err != nil {
				return nil, nil, err
			}
			return soaIP, answer, nil

		case len(d.cnameDomains) > 0:
			// Bare CNAME: restart the walk at the target
			target := d.cnameDomains[t.config.Picker.Pick(len(d.cnameDomains))]
			t.tracef("DL:%s cname %s from root", part, target)
			targetAuthority, answer, err := r.resolveAuthority(target)
			if err != nil {
				return nil, nil, err
			}
			if answer == nil {
				answer, err = r.finalA(target, targetAuthority)
				if err != nil {
					return nil, nil, err
				}
			}
			return targetAuthority, answer, nil

		case len(d.soaDomains) > 0:
			// Glueless zone cut: hop to the SOA master
			soaIP, err := r.resolveSOA(d.soaDomains[0], part, authority)
			if err != nil {
				return nil, nil, err
			}
			authority = soaIP

		case len(d.authorityDomains) > 0:
			// Glueless NS: resolve the name server's own address from scratch
			nsName := d.authorityDomains[t.config.Picker.Pick(len(d.authorityDomains))]
			nsIP, _, err := t.Resolve(nsName)
			if err != nil {
				return nil, nil, err
			}
			authority = nsIP

		default:
			return nil, nil, fmt.Errorf("%w: no viable records for %s", ErrResolveFailed, part)
		}
	}

	return authority, nil, nil
}

// resolveSOA turns an SOA master name into an address. The scratch cache is consulted first, a
// master equal to the suffix being walked reuses the current authority (no self-recursion on an
// in-bailiwick SOA), and anything else gets its own full resolution.
func (r *resolution) resolveSOA(soaName, part string, authority net.IP) (net.IP, error) {
	if ip, ok := r.micro[soaName]; ok {
		return ip, nil
	}
	if soaName == part {
		return authority, nil
	}
	ip, _, err := r.engine.Resolve(soaName)

	return ip, err
}

// finalA asks the authority directly for the name's address. Answer records are filtered by the
// question's record type rather than by TypeA; the front-end only admits A questions so the two
// are equivalent today, but extending the front-end to other types requires revisiting this
// filter.
func (r *resolution) finalA(name string, authority net.IP) (net.IP, error) {
	t := r.engine
	resp, err := r.send(name, dns.TypeA, authority)
	if err != nil {
		return nil, err
	}

	qtype := uint16(dns.TypeA)
	if len(resp.Question) > 0 {
		qtype = resp.Question[0].Qtype
	}
	var addrs []net.IP
	for _, rr := range resp.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		if a, ok := rr.(*dns.A); ok {
			addrs = append(addrs, a.A)
		}
	}
	soaSeen := false
	for _, rr := range resp.Ns {
		if _, ok := rr.(*dns.SOA); ok {
			soaSeen = true
			break
		}
	}

	switch {
	case len(addrs) > 0:
		return addrs[t.config.Picker.Pick(len(addrs))], nil
	case soaSeen:
		// The zone authority answered without an address record. Best effort is the
		// authority's own address.
		t.tracef("DL:%s soa-only answer @%s", name, authority)
		return authority, nil
	}

	return nil, fmt.Errorf("%w: no A records for %s", ErrResolveFailed, name)
}

func (t *iterative) eventf(format string, args ...interface{}) {
	if t.config.EventLog != nil {
		fmt.Fprintf(t.config.EventLog, format+"\n", args...)
	}
}

func (t *iterative) tracef(format string, args ...interface{}) {
	if t.config.TraceLog != nil {
		fmt.Fprintf(t.config.TraceLog, format+"\n", args...)
	}
}
