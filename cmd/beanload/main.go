package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanload/cli"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	cli.Version = version
	cli.CommitSHA = commit

	var commands struct {
		cli.Commands
		Version kong.VersionFlag `help:"Print version and exit."`
	}

	ctx := kong.Parse(&commands,
		kong.Name("beanload"),
		kong.Description("Load, validate and book beancount ledgers."),
		kong.UsageOnError(),
		kong.Vars{"version": buildVersion()},
		kong.Bind(&commands.Globals),
	)

	err := ctx.Run()
	if code := cli.ExitCode(err); code != 0 {
		if _, ok := err.(*cli.CommandError); !ok {
			fmt.Fprintf(os.Stderr, "beanload: %v\n", err)
		}
		os.Exit(code)
	}
}

func buildVersion() string {
	if commit == "" {
		return version
	}
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", version, short)
}
