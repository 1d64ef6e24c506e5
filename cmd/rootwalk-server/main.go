// Listen for inbound DNS queries and resolve them by walking the hierarchy from the root servers
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rootwalkdns/rootwalk/internal/constants"
	"github.com/rootwalkdns/rootwalk/internal/osutil"
	"github.com/rootwalkdns/rootwalk/internal/picker"
	"github.com/rootwalkdns/rootwalk/internal/reporter"
	"github.com/rootwalkdns/rootwalk/internal/resolver/iterative"
	"github.com/rootwalkdns/rootwalk/internal/staticmap"
	"github.com/rootwalkdns/rootwalk/internal/transport"

	"github.com/google/gops/agent"
)

// Program-wide variables
var (
	consts               = constants.Get()
	cfg                  *config
	defaultListenAddress = ":" + consts.DNSDefaultPort

	stdout io.Writer // All I/O goes via these writers
	stderr io.Writer

	startTime   = time.Now()
	stopChannel chan os.Signal
	flagSet     *flag.FlagSet
)

//////////////////////////////////////////////////////////////////////

func fatal(args ...interface{}) int {
	fmt.Fprint(stderr, "Fatal: ", consts.ServerProgramName, ": ")
	fmt.Fprintln(stderr, args...)

	return 1
}

func stopMain() {
	stopChannel <- syscall.SIGINT
}

//////////////////////////////////////////////////////////////////////
// main wrappers make it easy for test programs
//////////////////////////////////////////////////////////////////////

// mainInit resets everything such that mainExecute() can be called multiple times in one program
// execution. stopChannel is buffered as the reader may disappear if there is a fatal error and
// multiple writers may try and write to the channel and we don't want those writers to stall
// forever.
func mainInit(out io.Writer, err io.Writer) {
	cfg = &config{}
	stdout = out
	stderr = err
	mainState(initial)
	stopChannel = make(chan os.Signal, 4) // All reasonable signals cause us to quit or stats report
	osutil.SignalNotify(stopChannel)
}

func main() {
	mainInit(os.Stdout, os.Stderr)
	os.Exit(mainExecute(os.Args))
}

func mainExecute(args []string) int {
	defer mainState(stopped) // Tell testers we've stopped even on error returns
	flagSet = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	err := parseCommandLine(args)
	if err != nil {
		return 1 // Error already printed by the flag package
	}
	if cfg.help {
		usage(stdout)
		return 0
	}
	if cfg.version {
		fmt.Fprintln(stdout, consts.ServerProgramName, "Version:", consts.Version)
		return 0
	}

	if flagSet.NArg() > 0 {
		return fatal("Unexpected parameters on the command line", strings.Join(flagSet.Args(), " "))
	}

	if cfg.logAll {
		cfg.logClientIn = true
		cfg.logClientOut = true
		cfg.logResolver = true
		cfg.logDelegation = true
	}

	if cfg.maxSends < 1 {
		return fatal("--max-sends must be greater than zero")
	}
	if cfg.requestTimeout <= 0 {
		return fatal("-t timeout must be greater than zero")
	}

	var reporters []reporter.Reporter // Track all reportables for periodic reporting
	var servers []*server             // Track all servers so we can shut them down

	// Load the static map, if any, before opening sockets so config typos fail fast

	static := staticmap.NewEmpty()
	if len(cfg.configFile) > 0 {
		static, err = staticmap.New(cfg.configFile)
		if err != nil {
			return fatal(err)
		}
	}

	// Construct the upstream transport and the resolution engine it feeds

	client := transport.New(transport.Config{Timeout: cfg.requestTimeout})
	reporters = append(reporters, client)

	var eventLog, traceLog io.Writer
	if cfg.logResolver {
		eventLog = stdout
	}
	if cfg.logDelegation {
		traceLog = stdout
	}
	engine, err := iterative.New(iterative.Config{
		Static:    static,
		Exchanger: client,
		Picker:    picker.NewRand(),
		MaxSends:  cfg.maxSends,
		EventLog:  eventLog,
		TraceLog:  traceLog,
	})
	if err != nil {
		return fatal(err)
	}
	reporters = append(reporters, engine)

	if cfg.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fatal(err)
		}
		defer agent.Close()
	}

	if cfg.listenAddresses.NArg() == 0 { // Use wildcard if none supplied
		cfg.listenAddresses.Set(defaultListenAddress)
	}

	// Start CPU profiling now that most error checking is complete

	if len(cfg.cpuprofile) > 0 {
		f, err := os.Create(cfg.cpuprofile)
		if err != nil {
			return fatal(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	// Memory profile is triggered at the end of the program but we open the output file and
	// hold it open prior to any possible chroot/setuid/setgid action.

	var memProfileFile *os.File
	if len(cfg.memprofile) > 0 {
		memProfileFile, err = os.Create(cfg.memprofile)
		if err != nil {
			return fatal(err)
		}
		defer memProfileFile.Close()
	}

	// Start a server for each listen address

	if cfg.verbose {
		fmt.Fprintln(stdout, consts.ServerProgramName, consts.Version, "Starting")
		if static.Len() > 0 {
			fmt.Fprintln(stdout, "Static config:", static.Path(), "entries:", static.Len())
		}
	}

	errorChannel := make(chan error, cfg.listenAddresses.NArg())
	wg := &sync.WaitGroup{} // Wait on all servers

	for _, addr := range cfg.listenAddresses.Args() {
		ip := net.ParseIP(addr) // We have to wrap unadorned ipv6 addresses so we can append port
		if ip != nil && ip.To16() != nil {
			addr = "[" + addr + "]" // It's naked, so wrap it
		}

		// If addr is neither v4addr:port, [v6addr]:port or host:port, append the default port
		if !(strings.LastIndex(addr, ":") > strings.LastIndex(addr, "]")) {
			addr += ":" + consts.DNSDefaultPort
		}

		s := &server{stdout: stdout, resolver: engine, listenAddress: addr}
		if err := s.start(errorChannel, wg); err != nil {
			return fatal(err)
		}
		if cfg.verbose {
			fmt.Fprintln(stdout, "Listening:", s.Name())
		}
		reporters = append(reporters, s)
		servers = append(servers, s)
	}

	// Constrain the process via setuid/setgid/chroot. This is a no-op call if all parameters
	// are empty strings. The listen sockets were opened synchronously above so the privileges
	// they needed are no longer required.

	err = osutil.Constrain(cfg.setuidName, cfg.setgidName, cfg.chrootDir)
	if err != nil {
		return fatal(err)
	}
	if cfg.verbose && (len(cfg.setuidName) > 0 || len(cfg.setgidName) > 0 || len(cfg.chrootDir) > 0) {
		fmt.Fprintf(stdout, "Constraints: %s\n", osutil.ConstraintReport())
	}

	// Loop forever giving periodic status reports and checking for a termination event.

	mainState(started) // Tell testers we're up and running
	nextStatusIn := nextInterval(time.Now(), cfg.statusInterval)

Running:
	for {
		select {
		case s := <-stopChannel:
			if osutil.IsSignalUSR1(s) {
				statusReport("User1", false, reporters)
				break
			}
			if cfg.verbose {
				fmt.Fprintln(stdout, "\nSignal", s)
			}
			break Running // All signals bar USR1 cause loop exit

		case err := <-errorChannel:
			return fatal(err) // No cleanup if we get a server startup error

		case <-time.After(nextStatusIn):
			if cfg.verbose {
				statusReport("Status", true, reporters)
			}
			nextStatusIn = nextInterval(time.Now(), cfg.statusInterval)
		}
	}

	// Shutting down

	for _, s := range servers {
		s.stop()
	}
	mainState(stopped) // Tell testers we've stopped accepting requests
	wg.Wait()          // Wait for all servers to completely shut down

	if cfg.verbose {
		statusReport("Status", true, reporters) // One last report prior to exiting
		fmt.Fprintln(stdout, consts.ServerProgramName, consts.Version, "Exiting after", uptime())
	}

	// Memory profile is written at the end of the program

	if memProfileFile != nil {
		runtime.GC() // get up-to-date statistics
		err := pprof.WriteHeapProfile(memProfileFile)
		if err != nil {
			return fatal(err)
		}
	}

	return 0
}

// nextInterval calculates the duration to now+modulo interval. If now is 00:01:17 and the
// interval is 15m then the returned duration is 13m43s which is the distance to 00:15:00. The
// idea is to provide a wait/sleep value which gets the caller to the next interval tick-over.
func nextInterval(now time.Time, interval time.Duration) time.Duration {
	return now.Truncate(interval).Add(interval).Sub(now)
}

// uptime calculates how long this server has been running and returns a log-friendly and
// granularity-appropriate representation of that duration.
func uptime() string {
	return time.Now().Sub(startTime).Truncate(time.Second).String()
}

// statusReport prints stats about the server and all known reporters
func statusReport(what string, resetCounters bool, reporters []reporter.Reporter) {
	fmt.Fprintln(stdout, "Status Up:", consts.ServerProgramName, consts.Version, uptime())
	for _, r := range reporters {
		reps := strings.Split(r.Report(resetCounters), "\n")
		for _, s := range reps {
			if len(s) > 0 {
				fmt.Fprintf(stdout, "%s %s: %s\n", what, r.Name(), s)
			}
		}
	}
}
