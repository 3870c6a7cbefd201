package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/aristath/etrade/internal/clients/etrade"
	"github.com/google/subcommands"
)

type accountsCmd struct {
	*app
	json bool
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the brokerage accounts of the user" }
func (*accountsCmd) Usage() string {
	return `etrade accounts [-json]

  Lists every account with its ID, key, name, type and status.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the raw account list response as JSON")
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		accounts, err := env.user.GetAllAccounts(ctx)
		if err != nil {
			return err
		}
		if c.json {
			resp := make([]map[string]interface{}, 0, len(accounts))
			for _, a := range accounts {
				resp = append(resp, map[string]interface{}{
					"accountId":       a.AccountID,
					"accountIdKey":    a.AccountIDKey,
					"accountMode":     a.AccountMode,
					"accountDesc":     a.AccountDesc,
					"accountName":     a.AccountName,
					"accountType":     a.AccountType,
					"institutionType": a.InstitutionType,
					"accountStatus":   a.AccountStatus,
					"closedDate":      a.ClosedDate,
				})
			}
			return writeResponse(c.out, etrade.Response{"accounts": resp})
		}

		fmt.Fprintf(c.out, "%-12s| %-24s| %-24s| %-12s| %-8s| %s\n", "ID", "KEY", "NAME", "TYPE", "MODE", "STATUS")
		for _, a := range accounts {
			fmt.Fprintf(c.out, "%-12s| %-24s| %-24s| %-12s| %-8s| %s\n",
				a.AccountID, a.AccountIDKey, a.AccountName, a.AccountType, a.AccountMode, a.AccountStatus)
		}
		return nil
	})
}

type balanceCmd struct {
	*app
	account  accountFlags
	realTime bool
	summary  bool
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show the balance of an account" }
func (*balanceCmd) Usage() string {
	return `etrade balance (-account <name> | -id <id>) [-realtime] [-summary]

  Prints the balance response. -summary prints the headline cash and
  buying power figures only.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	c.account.set(f)
	f.BoolVar(&c.realTime, "realtime", true, "Request real-time net asset value")
	f.BoolVar(&c.summary, "summary", false, "Print a short summary instead of the full response")
}

func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.account.valid() {
		return c.usageError("-account or -id is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		account, err := c.account.resolve(ctx, env.user)
		if err != nil {
			return err
		}
		if !c.summary {
			resp, err := account.GetBalance(ctx, c.realTime)
			if err != nil {
				return err
			}
			return writeResponse(c.out, resp)
		}

		s, err := account.GetBalanceSummary(ctx, c.realTime)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Account:             %s (%s, %s)\n", s.AccountID, s.AccountType, s.AccountDescription)
		fmt.Fprintf(c.out, "Cash balance:        %s\n", s.CashBalance.StringFixed(2))
		fmt.Fprintf(c.out, "Net cash:            %s\n", s.NetCash.StringFixed(2))
		fmt.Fprintf(c.out, "Cash buying power:   %s\n", s.CashBuyingPower.StringFixed(2))
		fmt.Fprintf(c.out, "Margin buying power: %s\n", s.MarginBuyingPower.StringFixed(2))
		fmt.Fprintf(c.out, "Total account value: %s\n", s.TotalAccountValue.StringFixed(2))
		return nil
	})
}

type portfolioCmd struct {
	*app
	account accountFlags
	view    string
	count   int
	sortBy  string
	order   string
	totals  bool
	lots    bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show the positions held in an account" }
func (*portfolioCmd) Usage() string {
	return `etrade portfolio (-account <name> | -id <id>) [-view <view>] [-count <n>] [-sort <field>] [-order ASC|DESC] [-totals] [-lots]
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	c.account.set(f)
	f.StringVar(&c.view, "view", "", "PERFORMANCE, FUNDAMENTAL, OPTIONSWATCH, QUICK or COMPLETE")
	f.IntVar(&c.count, "count", 0, "Maximum number of positions")
	f.StringVar(&c.sortBy, "sort", "", "Field to sort positions by, e.g. SYMBOL")
	f.StringVar(&c.order, "order", "", "Sort order, ASC or DESC")
	f.BoolVar(&c.totals, "totals", false, "Include portfolio totals")
	f.BoolVar(&c.lots, "lots", false, "Include position lots")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.account.valid() {
		return c.usageError("-account or -id is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		account, err := c.account.resolve(ctx, env.user)
		if err != nil {
			return err
		}
		resp, err := account.GetPortfolio(ctx, etrade.PortfolioOptions{
			Count:          c.count,
			SortBy:         c.sortBy,
			SortOrder:      etrade.SortOrder(strings.ToUpper(c.order)),
			View:           strings.ToUpper(c.view),
			TotalsRequired: c.totals,
			LotsRequired:   c.lots,
		})
		if err != nil {
			return err
		}
		return writeResponse(c.out, resp)
	})
}

type transactionsCmd struct {
	*app
	account accountFlags
	marker  string
	count   int
	order   string
	start   string
	end     string
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the transactions of an account" }
func (*transactionsCmd) Usage() string {
	return `etrade transactions (-account <name> | -id <id>) [-start MMDDYYYY] [-end MMDDYYYY] [-count <n>] [-order ASC|DESC] [-marker <marker>]

  Prints one page of transactions. Pass the marker from the response to
  fetch the next page.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	c.account.set(f)
	f.StringVar(&c.marker, "marker", "", "Page marker returned by a previous call")
	f.IntVar(&c.count, "count", 50, "Transactions per page")
	f.StringVar(&c.order, "order", "", "Sort order, ASC or DESC")
	f.StringVar(&c.start, "start", "", "Start date, MMDDYYYY")
	f.StringVar(&c.end, "end", "", "End date, MMDDYYYY")
}

func (c *transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.account.valid() {
		return c.usageError("-account or -id is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		account, err := c.account.resolve(ctx, env.user)
		if err != nil {
			return err
		}
		resp, err := account.ListTransactions(ctx, etrade.TransactionsOptions{
			Marker:    c.marker,
			Count:     c.count,
			SortOrder: etrade.SortOrder(strings.ToUpper(c.order)),
			StartDate: c.start,
			EndDate:   c.end,
		})
		if err != nil {
			return err
		}
		return writeResponse(c.out, resp)
	})
}

type transactionCmd struct {
	*app
	account accountFlags
}

func (*transactionCmd) Name() string     { return "transaction" }
func (*transactionCmd) Synopsis() string { return "show the details of one transaction" }
func (*transactionCmd) Usage() string {
	return `etrade transaction (-account <name> | -id <id>) <transaction-id>
`
}

func (c *transactionCmd) SetFlags(f *flag.FlagSet) {
	c.account.set(f)
}

func (c *transactionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.account.valid() {
		return c.usageError("-account or -id is required")
	}
	if f.NArg() != 1 {
		return c.usageError("exactly one transaction id is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		account, err := c.account.resolve(ctx, env.user)
		if err != nil {
			return err
		}
		resp, err := account.GetTransactionDetails(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		return writeResponse(c.out, resp)
	})
}
