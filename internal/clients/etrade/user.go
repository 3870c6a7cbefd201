package etrade

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User represents one E*TRADE consumer and its current OAuth1 session.
//
// A User is safe for concurrent use: session state is guarded by a mutex.
// Requests themselves are not coordinated, so a Logout racing a data call
// may leave the data call with a revoked token.
type User struct {
	consumerKey string
	environment Environment
	endpoints   endpoints
	oauth       *oauth1.Config
	httpClient  *http.Client
	authorizer  Authorizer
	session     session
	now         func() time.Time
	log         zerolog.Logger
}

// Option customizes a User.
type Option func(*userOptions)

type userOptions struct {
	oauthBaseURL string
	apiBaseURL   string
	authorizeURL string
	httpClient   *http.Client
	authorizer   Authorizer
	now          func() time.Time
}

// WithAuthorizer sets how the verifier is collected during Login.
func WithAuthorizer(a Authorizer) Option {
	return func(o *userOptions) { o.authorizer = a }
}

// WithHTTPClient sets the base HTTP client used for signed requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *userOptions) { o.httpClient = c }
}

// WithBaseURLs overrides the OAuth base, API base and authorize URLs.
// Empty values keep the environment defaults.
func WithBaseURLs(oauthBase, apiBase, authorize string) Option {
	return func(o *userOptions) {
		if oauthBase != "" {
			o.oauthBaseURL = oauthBase
		}
		if apiBase != "" {
			o.apiBaseURL = apiBase
		}
		if authorize != "" {
			o.authorizeURL = authorize
		}
	}
}

// NewUser creates an unauthenticated User for the given environment.
func NewUser(consumerKey, consumerSecret string, env Environment, log zerolog.Logger, opts ...Option) *User {
	if env == "" {
		env = EnvironmentSandbox
	}
	o := userOptions{
		oauthBaseURL: env.OAuthBaseURL(),
		apiBaseURL:   env.APIBaseURL(),
		authorizeURL: defaultAuthorizeURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	u := &User{
		consumerKey: consumerKey,
		environment: env,
		endpoints:   newEndpoints(o.oauthBaseURL, o.apiBaseURL, o.authorizeURL),
		httpClient:  o.httpClient,
		authorizer:  o.authorizer,
		now:         o.now,
		log:         log.With().Str("component", "etrade").Str("environment", string(env)).Logger(),
	}
	if u.authorizer == nil {
		u.authorizer = NewTerminalAuthorizer(os.Stdin, os.Stdout, log)
	}

	u.oauth = oauth1.NewConfig(consumerKey, consumerSecret)
	u.oauth.CallbackURL = u.authorizer.CallbackURL()
	u.oauth.Endpoint = oauth1.Endpoint{
		RequestTokenURL: u.endpoints.requestToken,
		AuthorizeURL:    u.endpoints.authorize,
		AccessTokenURL:  u.endpoints.accessToken,
	}
	u.oauth.Noncer = uuidNoncer{}

	u.log.Info().Msg("Created user")
	return u
}

// Environment returns the environment fixed at construction.
func (u *User) Environment() Environment {
	return u.environment
}

// State returns the current lifecycle state.
func (u *User) State() State {
	state, _ := u.session.snapshot()
	return state
}

// Authenticated reports whether an access token is held.
func (u *User) Authenticated() bool {
	return u.State() == StateAuthenticated
}

// ExpiresAt returns the wall-clock expiry of the access token (next US
// Eastern midnight after login), or the zero time when unauthenticated.
// Tokens also go inactive server-side after two idle hours; that is only
// detected when a request fails.
func (u *User) ExpiresAt() time.Time {
	_, expiresAt := u.session.snapshot()
	return expiresAt
}

// Login runs the three-legged OAuth1 flow. It blocks in the Authorizer until
// the user supplies a verifier. Calling Login on an authenticated User
// returns ErrAlreadyAuthenticated.
func (u *User) Login(ctx context.Context) error {
	if err := u.session.begin(); err != nil {
		return err
	}
	token, err := u.handshake(ctx)
	if err != nil {
		u.session.abort()
		return err
	}
	expiresAt := nextEasternMidnight(u.now())
	u.session.complete(token, expiresAt)

	u.log.Info().Time("expires_at", expiresAt).Msg("User logged in")
	return nil
}

func (u *User) handshake(ctx context.Context) (*oauth1.Token, error) {
	// The token calls take no context, so bind ctx through the transport of a
	// per-login copy of the config.
	cfg := *u.oauth
	cfg.HTTPClient = u.handshakeClient(ctx)

	// Request tokens are valid for 5 minutes.
	requestToken, requestSecret, err := cfg.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get request token: %w", err)
	}
	u.log.Debug().Msg("Request token received")

	verifier, err := u.authorizer.Authorize(ctx, u.authorizationURL(requestToken))
	if err != nil {
		return nil, fmt.Errorf("failed to authorize request token: %w", err)
	}

	accessToken, accessSecret, err := cfg.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return oauth1.NewToken(accessToken, accessSecret), nil
}

// authorizationURL embeds the consumer key and request token the way the
// E*TRADE authorize page expects them (key/token, not oauth_token).
func (u *User) authorizationURL(requestToken string) string {
	params := url.Values{}
	params.Set("key", u.consumerKey)
	params.Set("token", requestToken)
	sep := "?"
	if strings.Contains(u.endpoints.authorize, "?") {
		sep = "&"
	}
	return u.endpoints.authorize + sep + params.Encode()
}

// Logout revokes the access token. The in-memory token is dropped as soon as
// the revoke endpoint answers, even with a non-2xx status, which is then
// returned as a *TransportError.
func (u *User) Logout(ctx context.Context) error {
	token, err := u.session.current()
	if err != nil {
		return err
	}

	_, err = u.send(ctx, token, u.endpoints.revokeToken, nil)
	if err != nil && !isTransportError(err) {
		return err
	}
	u.session.clear()
	u.log.Info().Msg("User logged out")
	return err
}

// Renew reactivates an access token that went idle. The token values do not
// change.
func (u *User) Renew(ctx context.Context) error {
	if _, err := u.get(ctx, u.endpoints.renewToken, nil); err != nil {
		return err
	}
	u.log.Info().Msg("Access token renewed")
	return nil
}

// WithSession logs in, runs fn and always logs out afterwards, including when
// fn returns an error or panics. The fn error takes precedence over a logout
// error.
func (u *User) WithSession(ctx context.Context, fn func(*User) error) (err error) {
	if err := u.Login(ctx); err != nil {
		return err
	}
	defer func() {
		logoutErr := u.Logout(context.WithoutCancel(ctx))
		if logoutErr == nil {
			return
		}
		if err == nil {
			err = logoutErr
			return
		}
		u.log.Error().Err(logoutErr).Msg("Failed to log out after session error")
	}()
	return fn(u)
}

// uuidNoncer produces OAuth nonces from random UUIDs.
type uuidNoncer struct{}

func (uuidNoncer) Nonce() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
