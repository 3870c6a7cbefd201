// Command etrade is a small E*TRADE client: it logs in with OAuth1, runs one
// query and logs out again.
//
// Credentials come from ETRADE_CONSUMER_KEY and ETRADE_CONSUMER_SECRET (or a
// .env file). The sandbox is used unless ETRADE_PRODUCTION=true.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/aristath/etrade/internal/config"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	register(commander, &app{
		loadConfig: config.Load,
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
	})

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func register(c *subcommands.Commander, a *app) {
	c.Register(&accountsCmd{app: a}, "accounts")
	c.Register(&balanceCmd{app: a}, "accounts")
	c.Register(&portfolioCmd{app: a}, "accounts")
	c.Register(&transactionsCmd{app: a}, "accounts")
	c.Register(&transactionCmd{app: a}, "accounts")

	c.Register(&quoteCmd{app: a}, "market")
	c.Register(&chainsCmd{app: a}, "market")
	c.Register(&expiriesCmd{app: a}, "market")
	c.Register(&watchCmd{app: a}, "market")
}
