package transport

import (
	"fmt"
	"time"
)

//////////////////////////////////////////////////////////////////////
// reporter implementation
//////////////////////////////////////////////////////////////////////

func (t *Client) addCacheHit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cacheHits++
}

func (t *Client) addExchange(latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.exchanges++
	t.totalLatency += latency
}

func (t *Client) addFailure(tfx tfxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[tfx]++
}

func (t *Client) Name() string {
	return "Transport Client"
}

/*
Report returns a single line of stats suitable for printing to a log file. Zero counters if
resetCounters is true.

Totals: req=217 net=58 hits=159 al=0.031 errs=0 (0/0/0) entries=58
        ^       ^      ^        ^        ^       ^ ^ ^   ^
        |       |      |        |        |       | | |   |
        |       |      |        |        |       | | |   +--Response cache population
        |       |      |        |        |       | | +--Read/parse errors
        |       |      |        |        |       | +--Write errors
        |       |      |        |        |       +--Dial errors
        |       |      |        |        +--Total failed exchanges
        |       |      |        +--Average network latency
        |       |      +--Cache hits
        |       +--Exchanges that went to the network
        +--Total requests
*/
func (t *Client) Report(resetCounters bool) string {
	if resetCounters {
		t.mu.Lock()
		defer t.mu.Unlock()
	} else {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}

	errs := 0
	for _, v := range t.failures {
		errs += v
	}

	var al float64
	if t.exchanges > 0 {
		al = t.totalLatency.Seconds() / float64(t.exchanges)
	}

	s := fmt.Sprintf("req=%d net=%d hits=%d al=%0.3f errs=%d (%s) entries=%d",
		t.exchanges+t.cacheHits+errs, t.exchanges, t.cacheHits, al,
		errs, formatCounters("%d", "/", t.failures[:]), t.cache.Count())

	if resetCounters {
		t.resetCounters()
	}

	return s
}

// formatCounters returns a nice %d/%d/%d format from an array of ints. This is less error-prone
// than hard-coding one big ol' Sprintf string but obviously slower which is irrelevant here.
func formatCounters(vfmt string, delim string, vals []int) string {
	res := ""
	for ix, v := range vals {
		if ix > 0 {
			res += delim
		}
		res += fmt.Sprintf(vfmt, v)
	}

	return res
}
