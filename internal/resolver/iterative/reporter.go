package iterative

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

//////////////////////////////////////////////////////////////////////
// reporter implementation
//////////////////////////////////////////////////////////////////////

// rfx = Resolution Failure indeX into the failure counter array

type rfxInt int

const (
	rfxResolveFailed rfxInt = iota
	rfxOverrun
	rfxTransport
	rfxArraySize
)

// engineStats is kept separate so that resetCounters() is a trivial struct copy.
type engineStats struct {
	configHits   int
	success      int
	totalSends   int
	totalLatency time.Duration
	failures     [rfxArraySize]int
}

type statsHolder struct {
	mu sync.RWMutex // Protects engineStats
	engineStats
}

// Caller has protected the data structures
func (t *statsHolder) resetCounters() {
	t.engineStats = engineStats{}
}

func failureIndex(err error) rfxInt {
	switch {
	case errors.Is(err, ErrOverrun):
		return rfxOverrun
	case errors.Is(err, ErrResolveFailed):
		return rfxResolveFailed
	}

	return rfxTransport
}

func (t *iterative) addConfigHit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.configHits++
}

func (t *iterative) addSuccess(sends int, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.success++
	t.totalSends += sends
	t.totalLatency += latency
}

func (t *iterative) addFailure(rfx rfxInt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[rfx]++
}

func (t *iterative) Name() string {
	return "Iterative Resolver"
}

/*
Report returns a single line of stats suitable for printing to a log file. Zero counters if
resetCounters is true.

Totals: req=97 ok=91 cfg=12 sends=312 al=0.062 errs=6 (5/0/1)
        ^      ^     ^      ^         ^        ^       ^ ^ ^
        |      |     |      |         |        |       | | |
        |      |     |      |         |        |       | | +--Transport errors
        |      |     |      |         |        |       | +--Budget overruns
        |      |     |      |         |        |       +--Unresolvable names
        |      |     |      |         |        +--Total failed resolutions
        |      |     |      |         +--Average latency of successful walks
        |      |     |      +--Upstream sends charged across all walks
        |      |     +--Static config hits (included in ok)
        |      +--Successful resolutions
        +--Total resolutions
*/
func (t *iterative) Report(resetCounters bool) string {
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
	ok := t.success + t.configHits

	var al float64
	if t.success > 0 {
		al = t.totalLatency.Seconds() / float64(t.success)
	}

	s := fmt.Sprintf("req=%d ok=%d cfg=%d sends=%d al=%0.3f errs=%d (%s)",
		ok+errs, ok, t.configHits, t.totalSends, al,
		errs, formatCounters("%d", "/", t.failures[:]))

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
