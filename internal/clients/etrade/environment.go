// Package etrade provides an OAuth1 client for the E*TRADE v1 REST API.
//
// A User owns the consumer credentials and the current access-token session.
// Login runs the three-legged OAuth1 handshake, data methods issue signed GET
// requests and return the XML body parsed into a nested map, and Logout
// revokes the token. Accounts returned by GetAllAccounts stay bound to the
// User that fetched them and reuse its session.
package etrade

import (
	"fmt"
	"strings"
)

// Environment selects the E*TRADE host a User talks to.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

const (
	defaultAuthorizeURL  = "https://us.etrade.com/e/t/etws/authorize"
	oauthBaseURLTemplate = "https://api%s.etrade.com/oauth/"
	apiBaseURLTemplate   = "https://api%s.etrade.com/v1/"
)

// ParseEnvironment maps "sandbox" or "production" (case-insensitive) to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvironmentSandbox, "":
		return EnvironmentSandbox, nil
	case EnvironmentProduction:
		return EnvironmentProduction, nil
	}
	return "", fmt.Errorf("unknown environment %q (must be sandbox or production)", s)
}

func (e Environment) hostSuffix() string {
	if e == EnvironmentProduction {
		return ""
	}
	return "sb"
}

// OAuthBaseURL returns the OAuth endpoint base for the environment.
func (e Environment) OAuthBaseURL() string {
	return fmt.Sprintf(oauthBaseURLTemplate, e.hostSuffix())
}

// APIBaseURL returns the REST API base for the environment.
func (e Environment) APIBaseURL() string {
	return fmt.Sprintf(apiBaseURLTemplate, e.hostSuffix())
}

// endpoints holds every URL a User calls. Bases always end with a slash.
type endpoints struct {
	apiBase       string
	authorize     string
	requestToken  string
	accessToken   string
	renewToken    string
	revokeToken   string
	listAccounts  string
	quote         string
	optionChains  string
	optionExpires string
}

func newEndpoints(oauthBase, apiBase, authorize string) endpoints {
	oauthBase = withTrailingSlash(oauthBase)
	apiBase = withTrailingSlash(apiBase)
	return endpoints{
		apiBase:       apiBase,
		authorize:     authorize,
		requestToken:  oauthBase + "request_token",
		accessToken:   oauthBase + "access_token",
		renewToken:    oauthBase + "renew_access_token",
		revokeToken:   oauthBase + "revoke_access_token",
		listAccounts:  apiBase + "accounts/list",
		quote:         apiBase + "market/quote/",
		optionChains:  apiBase + "market/optionchains",
		optionExpires: apiBase + "market/optionexpiredate",
	}
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
