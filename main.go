package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/v6watch/cmd"
	"grimm.is/v6watch/internal/brand"
	"grimm.is/v6watch/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	args := os.Args[1:]
	command := "run"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	switch command {
	case "run":
		runFlags := flag.NewFlagSet("run", flag.ExitOnError)
		configFile := runFlags.String("config", "", "Configuration file (default $"+brand.ConfigEnvPrefix+"_CONFIG or "+brand.DefaultConfigPath()+")")
		runFlags.StringVar(configFile, "c", "", "Configuration file (short)")

		dryRun := runFlags.Bool("dry-run", false, "Dry run - log changes without applying them")
		runFlags.BoolVar(dryRun, "n", false, "Dry run (short)")

		runFlags.Parse(args)

		ctx, cancel := context.WithCancel(context.Background())
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		code := cmd.RunMonitor(ctx, *configFile, *dryRun)
		signal.Stop(sigCh)
		cancel()
		os.Exit(code)

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.Bool("verbose", false, "Verbose output")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(args)

		configFile := brand.DefaultConfigPath()
		if len(checkFlags.Args()) > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(os.Stdout, configFile, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		configFile := showFlags.String("config", "", "Configuration file")
		showFlags.StringVar(configFile, "c", "", "Configuration file (short)")
		showFlags.Parse(args)

		if err := cmd.RunShow(os.Stdout, *configFile); err != nil {
			printer.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		printer.Printf("%s %s (commit %s, built %s)\n", brand.BinaryName, brand.Version, brand.GitCommit, brand.BuildTime)

	case "help":
		printUsage()

	default:
		printer.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s [command] [options]

Commands:
  run       Check every configured interface once and remediate (default)
            Options: --config (-c) <file>, --dry-run (-n)
  check     Validate configuration file
            Options: --verbose (-v)
  show      Show interface state and classified IPv6 addresses
            Options: --config (-c) <file>
  version   Print version information

Examples:
  %s                                # Run with %s
  %s run -n                         # Dry run
  %s check -v /etc/v6watch/v6watch.hcl
  %s show
`,
		brand.Name, brand.Description,
		brand.BinaryName,
		brand.BinaryName, brand.DefaultConfigPath(),
		brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
