package main

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// The "flag" package is not tty aware so we've arbitrarily picked 100 columns as a conservative
// tty width for the usage output.

const usageMessageTemplate = `
NAME
          {{.ServerProgramName}} -- an iterative DNS resolver for A queries

SYNOPSIS
          {{.ServerProgramName}} [options]

DESCRIPTION
          {{.ServerProgramName}} accepts DNS A queries over UDP and answers them by walking the
          public DNS hierarchy itself, starting from the root name servers. No upstream recursive
          resolver is involved: for each name the authoritative server is discovered by following
          delegations label by label, chasing CNAMEs and consulting SOA records when glue is
          missing.

          Queries for any record type other than A are not served; such datagrams are dropped
          with a logged error.

          A static configuration file of the form

              domain=ip.v4.addr.ess

          (one record per line) may be supplied with -c. Names that exact-match an entry are
          answered from the file with no network activity at all.

          Upstream queries to authoritative servers travel over TCP port 53 with the standard
          2-byte length framing. Responses are cached for the life of the process, keyed on the
          question and the server that answered it. Each top-level resolution is bounded by a
          work budget of upstream sends (--max-sends) so that delegation loops cannot spin
          forever.

          The wildcard interface address and default DNS port are used if no listen addresses
          are specified.

INVOCATION
          Typical invocation as a LAN resolver with a few local overrides:

              # {{.ServerProgramName}} -v -c /etc/dns.cfg

OPTIONS
          [-h | --help] [-v] [-c config-file] [-A listen-address]...
          [-i status-interval] [-t request-timeout] [--max-sends count]

          [--log-all] [--log-client-in] [--log-client-out]
          [--log-resolver] [--log-delegation]

          [--gops] [--cpu-profile file] [--mem-profile file]

          [--user userName] [--group groupName] [--chroot directory]

          [--version]

`

//////////////////////////////////////////////////////////////////////

func usage(out io.Writer) {
	tmpl, err := template.New("usage").Parse(usageMessageTemplate)
	if err != nil {
		panic(err) // We've messed up our template
	}
	err = tmpl.Execute(out, consts)
	if err != nil {
		panic(err) // We've messed up our template
	}
	flagSet.SetOutput(out) // This is permanent so we assume an exit summarily
	flagSet.PrintDefaults()
	fmt.Fprintln(out, "\nVersion:", consts.Version)
}

// parseCommandLine sets up the flags-to-config mapping and parses the supplied command line
// arguments. It starts from scratch each time to make it easier for test wrappers to use.
func parseCommandLine(args []string) error {
	flagSet.BoolVar(&cfg.help, "h", false, "Print usage message to Stdout then exit(0)")
	flagSet.BoolVar(&cfg.help, "help", false, "Print usage message to Stdout then exit(0)")

	flagSet.Var(&cfg.listenAddresses, "A",
		"Listen `address` to accept DNS queries (default "+defaultListenAddress+")")

	flagSet.StringVar(&cfg.configFile, "c", "", "Static domain=address `file` consulted before resolution")
	flagSet.DurationVar(&cfg.statusInterval, "i", time.Minute*15, "Periodic Status Report `interval` (needs -v set)")
	flagSet.DurationVar(&cfg.requestTimeout, "t", consts.ExchangeTimeout, "Upstream exchange `timeout`")
	flagSet.IntVar(&cfg.maxSends, "max-sends", consts.MaxSendsPerResolve,
		"Upstream send `budget` for one resolution")
	flagSet.BoolVar(&cfg.verbose, "v", false, "Verbose status and stats - otherwise only errors are output")

	flagSet.BoolVar(&cfg.logAll, "log-all", false, "Turns on all other --log-* options")
	flagSet.BoolVar(&cfg.logClientIn, "log-client-in", false, "Compact print of inbound DNS query (from client)")
	flagSet.BoolVar(&cfg.logClientOut, "log-client-out", false, "Compact print of outbound DNS response (to client)")
	flagSet.BoolVar(&cfg.logResolver, "log-resolver", false, "One-line resolution events: hits, completions, refusals")
	flagSet.BoolVar(&cfg.logDelegation, "log-delegation", false, "A line per delegation step of the suffix walk")

	// gops and go pprof settings

	flagSet.BoolVar(&cfg.gops, "gops", false, "Start github.com/google/gops agent")
	flagSet.StringVar(&cfg.cpuprofile, "cpu-profile", "", "write cpu profile to `file`")
	flagSet.StringVar(&cfg.memprofile, "mem-profile", "", "write mem profile to `file`")

	// Process Constraint parameters

	flagSet.StringVar(&cfg.setuidName, "user", "", "setuid `username` to constrain process after start-up (disabled for Linux)")
	flagSet.StringVar(&cfg.setgidName, "group", "", "setgid `groupname` to constrain process after start-up (disabled for Linux)")
	flagSet.StringVar(&cfg.chrootDir, "chroot", "", "chroot `directory` to constrain process after start-up")

	flagSet.BoolVar(&cfg.version, "version", false, "Print version and exit")

	return flagSet.Parse(args[1:])
}
