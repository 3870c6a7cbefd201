package etrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

const callbackPath = "/callback"

// CallbackAuthorizer receives the verifier through the provider's redirect to
// a local HTTP listener. The consumer key must be registered with the
// matching callback URL.
type CallbackAuthorizer struct {
	addr string
	out  io.Writer
	open func(string) error
	log  zerolog.Logger

	mu    sync.Mutex
	bound string
}

// NewCallbackAuthorizer listens on addr (host:port) while a login is pending.
func NewCallbackAuthorizer(addr string, out io.Writer, log zerolog.Logger) *CallbackAuthorizer {
	return &CallbackAuthorizer{
		addr: addr,
		out:  out,
		open: browser.OpenURL,
		log:  log.With().Str("component", "etrade-callback").Logger(),
	}
}

func (a *CallbackAuthorizer) CallbackURL() string {
	return "http://" + a.addr + callbackPath
}

func (a *CallbackAuthorizer) boundAddr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bound
}

// Authorize serves the callback route until a verifier arrives or ctx is done.
func (a *CallbackAuthorizer) Authorize(ctx context.Context, authorizeURL string) (string, error) {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen for oauth callback: %w", err)
	}
	a.mu.Lock()
	a.bound = ln.Addr().String()
	a.mu.Unlock()

	requestToken := requestTokenOf(authorizeURL)
	verifiers := make(chan string, 1)
	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		verifier := q.Get("oauth_verifier")
		if verifier == "" {
			http.Error(w, "missing oauth_verifier", http.StatusBadRequest)
			return
		}
		if token := q.Get("oauth_token"); token != "" && requestToken != "" && token != requestToken {
			a.log.Warn().Msg("Ignoring OAuth callback for another request token")
			http.Error(w, "oauth_token does not match the pending request", http.StatusBadRequest)
			return
		}
		select {
		case verifiers <- verifier:
		default:
		}
		fmt.Fprintln(w, "Authorization received. You can close this window.")
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("OAuth callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Info().Str("addr", a.boundAddr()).Msg("Waiting for OAuth callback")
	if a.open != nil {
		if err := a.open(authorizeURL); err != nil {
			a.log.Warn().Err(err).Msg("Failed to open browser")
		}
	}
	if a.out != nil {
		fmt.Fprintf(a.out, "\nAuthorize access at:\n%s\n", authorizeURL)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case verifier := <-verifiers:
		return verifier, nil
	}
}

// requestTokenOf returns the token query value of an authorize URL, or "".
func requestTokenOf(authorizeURL string) string {
	u, err := url.Parse(authorizeURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}
