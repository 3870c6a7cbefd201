package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aristath/etrade/internal/clients/etrade"
	"github.com/aristath/etrade/internal/config"
	"github.com/aristath/etrade/pkg/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// app carries what every command needs to open a session.
type app struct {
	loadConfig func() (*config.Config, error)
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	// options are applied after the defaults built from config.
	options []etrade.Option
}

// runEnv is handed to a command once the user is logged in.
type runEnv struct {
	cfg  *config.Config
	log  zerolog.Logger
	user *etrade.User
}

func (a *app) newUser(cfg *config.Config, log zerolog.Logger) *etrade.User {
	env := etrade.EnvironmentSandbox
	if cfg.Production {
		env = etrade.EnvironmentProduction
	}

	// Prompts go to errOut so stdout only carries command output.
	var authorizer etrade.Authorizer
	if cfg.CallbackAddr != "" {
		authorizer = etrade.NewCallbackAuthorizer(cfg.CallbackAddr, a.errOut, log)
	} else {
		authorizer = etrade.NewTerminalAuthorizer(a.in, a.errOut, log)
	}

	opts := []etrade.Option{
		etrade.WithAuthorizer(authorizer),
		etrade.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
	}
	opts = append(opts, a.options...)
	return etrade.NewUser(cfg.ConsumerKey, cfg.ConsumerSecret, env, log, opts...)
}

// run logs in, calls fn and logs out.
func (a *app) run(ctx context.Context, fn func(context.Context, *runEnv) error) subcommands.ExitStatus {
	cfg, err := a.loadConfig()
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: failed to load configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: a.errOut})
	logger.SetGlobalLogger(log)

	user := a.newUser(cfg, log)
	err = user.WithSession(ctx, func(u *etrade.User) error {
		return fn(ctx, &runEnv{cfg: cfg, log: log, user: u})
	})
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		var ve *etrade.ValidationError
		if errors.As(err, &ve) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (a *app) usageError(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(a.errOut, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

func writeResponse(w io.Writer, resp etrade.Response) error {
	out, err := resp.JSON(true)
	if err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// accountFlags selects one account by name or ID.
type accountFlags struct {
	name string
	id   string
}

func (f *accountFlags) set(fs *flag.FlagSet) {
	fs.StringVar(&f.name, "account", "", "Account name, as shown by the accounts command")
	fs.StringVar(&f.id, "id", "", "Account ID. Takes precedence over -account.")
}

func (f *accountFlags) valid() bool {
	return f.name != "" || f.id != ""
}

func (f *accountFlags) resolve(ctx context.Context, u *etrade.User) (*etrade.Account, error) {
	var (
		account *etrade.Account
		err     error
		label   string
	)
	if f.id != "" {
		account, err = u.GetAccountByID(ctx, f.id)
		label = "id " + f.id
	} else {
		account, err = u.GetAccountByName(ctx, f.name)
		label = "name " + f.name
	}
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("no account with %s", label)
	}
	return account, nil
}

// paramFlags collects repeated -param key=value flags.
type paramFlags map[string]string

func (p paramFlags) String() string {
	parts := make([]string, 0, len(p))
	for k, v := range p {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (p paramFlags) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	p[k] = v
	return nil
}

// splitSymbols accepts symbols as separate arguments or comma separated.
func splitSymbols(args []string) []string {
	var symbols []string
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, strings.ToUpper(s))
			}
		}
	}
	return symbols
}
