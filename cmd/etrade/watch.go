package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aristath/etrade/internal/clients/etrade"
	"github.com/aristath/etrade/internal/scheduler"
	"github.com/google/subcommands"
)

type watchCmd struct {
	*app
	every string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print quotes on a schedule until interrupted" }
func (*watchCmd) Usage() string {
	return `etrade watch [-every <schedule>] <symbol>...

  Keeps the session open, printing the last trade of each symbol on the
  given cron schedule and renewing the access token on
  ETRADE_RENEW_SCHEDULE. Logs out on interrupt.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.every, "every", "@every 1m", "Cron schedule for quotes (seconds field supported)")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := splitSymbols(f.Args())
	if len(symbols) == 0 {
		return c.usageError("at least one symbol is required")
	}
	return c.run(ctx, func(ctx context.Context, env *runEnv) error {
		sched := scheduler.New(env.log)
		quotes := &quoteJob{user: env.user, symbols: symbols, out: c.out, timeout: env.cfg.HTTPTimeout()}

		if err := sched.AddJob(env.cfg.RenewSchedule, etrade.NewRenewJob(env.user, env.cfg.HTTPTimeout())); err != nil {
			return fmt.Errorf("invalid renew schedule %q: %w", env.cfg.RenewSchedule, err)
		}
		if err := sched.AddJob(c.every, quotes); err != nil {
			return fmt.Errorf("invalid quote schedule %q: %w", c.every, err)
		}

		if err := sched.RunNow(quotes); err != nil {
			return err
		}
		sched.Start()
		<-ctx.Done()
		sched.Stop()
		return nil
	})
}

// quoteJob prints one line per symbol with its last trade.
type quoteJob struct {
	user    *etrade.User
	symbols []string
	timeout time.Duration

	mu  sync.Mutex
	out io.Writer
}

func (j *quoteJob) Name() string { return "etrade_watch_quotes" }

func (j *quoteJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	resp, err := j.user.GetQuote(ctx, j.symbols, etrade.DetailAll, false, false)
	if err != nil {
		return err
	}
	quotes, err := resp.ValuesForPath("QuoteResponse.QuoteData")
	if err != nil {
		return fmt.Errorf("failed to read quotes: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, q := range quotes {
		m, ok := q.(map[string]interface{})
		if !ok {
			continue
		}
		quote := etrade.Response(m)
		fmt.Fprintf(j.out, "%-24s %-8s %s\n",
			quote.String("dateTime"), quote.String("Product.symbol"), quote.String("All.lastTrade"))
	}
	return nil
}
