package main

import (
	"fmt"
	"io"
	"text/template"
)

// The "flag" package is not tty aware so we've arbitrarily picked 100 columns as a conservative
// tty width for the usage output.

const usageMessageTemplate = `
NAME
          {{.DigProgramName}} -- a one-shot iterative DNS resolution program

SYNOPSIS
          {{.DigProgramName}} [options] FQDN...

DESCRIPTION
          {{.DigProgramName}} resolves each FQDN to an IPv4 address exactly the way
          {{.ServerProgramName}} does: by walking the public DNS hierarchy from the root servers,
          following delegations, chasing CNAMEs and consulting SOA records when glue is missing.
          Only A records are resolved. It purposely uses the same packages as
          {{.ServerProgramName}} so it doubles as a diagnostic for that server's behavior.

          With --trace each delegation step of the walk is printed as it happens which is the
          easiest way to see why a particular name does or does not resolve.

EXAMPLES
            $ {{.DigProgramName}} example.com
            $ {{.DigProgramName}} --trace --short example.com www.example.net

OPTIONS
          [-h | --help] [--short] [--trace]

          [-c config-file] [-t request-timeout] [--max-sends count]

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
	flagSet.BoolVar(&cfg.short, "short", false, "Print just the resolved address, one per line")
	flagSet.BoolVar(&cfg.trace, "trace", false, "Print each delegation step of the walk")

	flagSet.StringVar(&cfg.configFile, "c", "", "Static domain=address `file` consulted before resolution")
	flagSet.DurationVar(&cfg.requestTimeout, "t", consts.ExchangeTimeout, "Upstream exchange `timeout`")
	flagSet.IntVar(&cfg.maxSends, "max-sends", consts.MaxSendsPerResolve,
		"Upstream send `budget` for one resolution")

	flagSet.BoolVar(&cfg.version, "version", false, "Print version and exit")

	return flagSet.Parse(args[1:])
}
