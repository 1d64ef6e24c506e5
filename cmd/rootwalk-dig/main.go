// Resolve names from the command line with the same iterative engine rootwalk-server uses
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rootwalkdns/rootwalk/internal/constants"
	"github.com/rootwalkdns/rootwalk/internal/picker"
	"github.com/rootwalkdns/rootwalk/internal/resolver/iterative"
	"github.com/rootwalkdns/rootwalk/internal/staticmap"
	"github.com/rootwalkdns/rootwalk/internal/transport"
)

// Program-wide variables
var (
	consts = constants.Get()
	cfg    *config

	stdout io.Writer
	stderr io.Writer

	flagSet *flag.FlagSet
)

//////////////////////////////////////////////////////////////////////

func fatal(args ...interface{}) int {
	fmt.Fprint(stderr, "Fatal: ", consts.DigProgramName, ": ")
	fmt.Fprintln(stderr, args...)

	return 1
}

//////////////////////////////////////////////////////////////////////
// main is a wrapper for mainExecute() so tests can call mainExecute()
//////////////////////////////////////////////////////////////////////

func mainInit(out io.Writer, err io.Writer) {
	cfg = &config{}
	stdout = out
	stderr = err
}

func main() {
	mainInit(os.Stdout, os.Stderr)
	os.Exit(mainExecute(os.Args))
}

func mainExecute(args []string) int {
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
		fmt.Fprintln(stdout, consts.DigProgramName, "Version:", consts.Version)
		return 0
	}

	if flagSet.NArg() < 1 {
		return fatal("Require at least one FQDN on the command line. Consider -h")
	}
	if cfg.maxSends < 1 {
		return fatal("--max-sends must be greater than zero")
	}

	static := staticmap.NewEmpty()
	if len(cfg.configFile) > 0 {
		static, err = staticmap.New(cfg.configFile)
		if err != nil {
			return fatal(err)
		}
	}

	var traceLog io.Writer
	if cfg.trace {
		traceLog = stdout
	}
	engine, err := iterative.New(iterative.Config{
		Static:    static,
		Exchanger: transport.New(transport.Config{Timeout: cfg.requestTimeout}),
		Picker:    picker.NewRand(),
		MaxSends:  cfg.maxSends,
		TraceLog:  traceLog,
	})
	if err != nil {
		return fatal(err)
	}

	exitStatus := 0
	for _, qname := range flagSet.Args() {
		ip, meta, err := engine.Resolve(qname)
		if err != nil {
			exitStatus = 1
			fmt.Fprintln(stderr, consts.DigProgramName+":", qname, "failed:", err.Error())
			continue
		}
		if cfg.short {
			fmt.Fprintln(stdout, ip.String())
			continue
		}
		source := "static config"
		if !meta.ConfigHit {
			source = "walk via " + meta.FinalAuthority.String()
		}
		fmt.Fprintf(stdout, "%s %s (%s, %d sends, %s)\n",
			qname, ip.String(), source, meta.Sends, meta.Duration.Truncate(time.Millisecond).String())
	}

	return exitStatus
}
