package etrade

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

// oobCallback tells the provider to display the verifier instead of redirecting.
const oobCallback = "oob"

// Authorizer presents the authorization URL to a human and collects the
// verifier code they receive. Authorize blocks until a verifier is available
// or ctx is done; the core applies no timeout of its own.
type Authorizer interface {
	// CallbackURL is sent with the request token. "oob" means the verifier
	// is shown to the user and typed back.
	CallbackURL() string
	Authorize(ctx context.Context, authorizeURL string) (string, error)
}

// AuthorizerFunc adapts a function to an out-of-band Authorizer.
type AuthorizerFunc func(ctx context.Context, authorizeURL string) (string, error)

func (f AuthorizerFunc) CallbackURL() string { return oobCallback }

func (f AuthorizerFunc) Authorize(ctx context.Context, authorizeURL string) (string, error) {
	return f(ctx, authorizeURL)
}

// TerminalAuthorizer opens the authorization page in the default browser and
// reads the verifier code from a terminal.
//
// A single goroutine reads the input for the lifetime of the authorizer, so a
// cancelled Authorize does not leave a reader behind. A line entered while no
// Authorize is waiting is returned to the next call.
type TerminalAuthorizer struct {
	in   *bufio.Reader
	out  io.Writer
	open func(string) error
	log  zerolog.Logger

	startReader sync.Once
	lines       chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewTerminalAuthorizer reads verifiers from in and writes prompts to out.
func NewTerminalAuthorizer(in io.Reader, out io.Writer, log zerolog.Logger) *TerminalAuthorizer {
	return &TerminalAuthorizer{
		in:    bufio.NewReader(in),
		out:   out,
		open:  browser.OpenURL,
		log:   log.With().Str("component", "etrade-authorizer").Logger(),
		lines: make(chan lineResult),
	}
}

// readLines runs until the input fails. The final result carries the error,
// then the channel is closed.
func (a *TerminalAuthorizer) readLines() {
	defer close(a.lines)
	for {
		line, err := a.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line != "" {
				a.lines <- lineResult{line: line}
			}
			a.lines <- lineResult{err: err}
			return
		}
		a.lines <- lineResult{line: line}
	}
}

func (a *TerminalAuthorizer) CallbackURL() string { return oobCallback }

// Authorize prints the URL, tries to open it, then waits for one input line.
func (a *TerminalAuthorizer) Authorize(ctx context.Context, authorizeURL string) (string, error) {
	if a.open != nil {
		if err := a.open(authorizeURL); err != nil {
			a.log.Warn().Err(err).Msg("Failed to open browser, continuing with manual authorization")
		}
	}
	fmt.Fprintf(a.out, "\nAuthorize access at:\n%s\n\nEnter verification code: ", authorizeURL)

	a.startReader.Do(func() { go a.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-a.lines:
		if !ok {
			res.err = io.EOF
		}
		if res.err != nil {
			return "", fmt.Errorf("failed to read verification code: %w", res.err)
		}
		verifier := strings.TrimSpace(res.line)
		if verifier == "" {
			return "", &ValidationError{Field: "verifier", Message: "verification code is empty"}
		}
		return verifier, nil
	}
}
