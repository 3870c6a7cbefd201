package main

import (
	"context"
	"flag"
	"strings"

	"github.com/aristath/etrade/internal/clients/etrade"
	"github.com/google/subcommands"
)

type quoteCmd struct {
	*app
	detail          string
	requireEarnings bool
	skipMini        bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "get quotes for up to 50 symbols" }
func (*quoteCmd) Usage() string {
	return `etrade quote [-detail <level>] [-earnings] [-skip-mini] <symbol>...

  Symbols may be given as separate arguments or comma separated.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.detail, "detail", "ALL", "ALL, FUNDAMENTAL, INTRADAY, OPTIONS, WEEK_52 or MF_DETAIL")
	f.BoolVar(&c.requireEarnings, "earnings", true, "Include the next earnings date")
	f.BoolVar(&c.skipMini, "skip-mini", false, "Skip the mini options check")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := splitSymbols(f.Args())
	if len(symbols) == 0 {
		return c.usageError("at least one symbol is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		resp, err := env.user.GetQuote(ctx, symbols, etrade.Detail(strings.ToUpper(c.detail)), c.requireEarnings, c.skipMini)
		if err != nil {
			return err
		}
		return writeResponse(c.out, resp)
	})
}

type chainsCmd struct {
	*app
	symbol    string
	month     string
	chainType string
	params    paramFlags
}

func (*chainsCmd) Name() string     { return "chains" }
func (*chainsCmd) Synopsis() string { return "get the option chain of a symbol" }
func (*chainsCmd) Usage() string {
	return `etrade chains -symbol <symbol> -month <MM> [-type CALL|PUT|CALLPUT] [-param key=value]...

  Extra -param values are passed through to the API and override the
  values set by the other flags.
`
}

func (c *chainsCmd) SetFlags(f *flag.FlagSet) {
	c.params = paramFlags{}
	f.StringVar(&c.symbol, "symbol", "", "Underlying symbol")
	f.StringVar(&c.month, "month", "", "Expiry month, e.g. 05")
	f.StringVar(&c.chainType, "type", "CALLPUT", "CALL, PUT or CALLPUT")
	f.Var(c.params, "param", "Extra query parameter as key=value (can be specified multiple times)")
}

func (c *chainsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		return c.usageError("-symbol is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		resp, err := env.user.GetOptionChains(ctx, strings.ToUpper(c.symbol), c.month,
			etrade.ChainType(strings.ToUpper(c.chainType)), c.params)
		if err != nil {
			return err
		}
		return writeResponse(c.out, resp)
	})
}

type expiriesCmd struct {
	*app
	symbol     string
	expiryType string
}

func (*expiriesCmd) Name() string     { return "expiries" }
func (*expiriesCmd) Synopsis() string { return "list option expiry dates of a symbol" }
func (*expiriesCmd) Usage() string {
	return `etrade expiries -symbol <symbol> [-type ALL|MONTHLY|WEEKLY|QUARTERLY]
`
}

func (c *expiriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Underlying symbol")
	f.StringVar(&c.expiryType, "type", "ALL", "ALL, MONTHLY, WEEKLY or QUARTERLY")
}

func (c *expiriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		return c.usageError("-symbol is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		resp, err := env.user.GetOptionExpires(ctx, strings.ToUpper(c.symbol), etrade.ExpiryType(strings.ToUpper(c.expiryType)))
		if err != nil {
			return err
		}
		return writeResponse(c.out, resp)
	})
}
