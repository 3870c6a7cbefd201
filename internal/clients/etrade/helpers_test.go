package etrade

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testConsumerKey    = "test_consumer_key"
	testConsumerSecret = "test_consumer_secret"
	testVerifier       = "VERIFY1"
)

const accountListXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<AccountListResponse>
  <Accounts>
    <Account>
      <accountId>83405188</accountId>
      <accountIdKey>dBZOKt9xDrtRSAOl4MSiiA</accountIdKey>
      <accountMode>MARGIN</accountMode>
      <accountDesc>INDIVIDUAL</accountDesc>
      <accountName>Individual Brokerage</accountName>
      <accountType>INDIVIDUAL</accountType>
      <institutionType>BROKERAGE</institutionType>
      <accountStatus>ACTIVE</accountStatus>
      <closedDate>0</closedDate>
    </Account>
    <Account>
      <accountId>83405553</accountId>
      <accountIdKey>vQMsD1z2Jzv9vmsL3sH_Hw</accountIdKey>
      <accountMode>CASH</accountMode>
      <accountDesc>Retirement</accountDesc>
      <accountName>Roth IRA</accountName>
      <accountType>ROTHIRA</accountType>
      <institutionType>BROKERAGE</institutionType>
      <accountStatus>CLOSED</accountStatus>
      <closedDate>1572566400</closedDate>
    </Account>
  </Accounts>
</AccountListResponse>`

const singleAccountXML = `<AccountListResponse>
  <Accounts>
    <Account>
      <accountId>1001</accountId>
      <accountIdKey>key1001</accountIdKey>
      <accountName>Only</accountName>
      <accountType>INDIVIDUAL</accountType>
      <institutionType>BROKERAGE</institutionType>
      <accountStatus>ACTIVE</accountStatus>
    </Account>
  </Accounts>
</AccountListResponse>`

type recordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
}

type fakeResponse struct {
	status int
	body   string
}

// fakeETrade serves the OAuth and API endpoints a User calls.
type fakeETrade struct {
	server *httptest.Server

	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]fakeResponse
}

func newFakeETrade(t *testing.T) *fakeETrade {
	t.Helper()
	f := &fakeETrade{
		responses: map[string]fakeResponse{
			"/oauth/request_token":       {http.StatusOK, "oauth_token=REQ_TOKEN&oauth_token_secret=REQ_SECRET&oauth_callback_confirmed=true"},
			"/oauth/access_token":        {http.StatusOK, "oauth_token=ACCESS_TOKEN&oauth_token_secret=ACCESS_SECRET"},
			"/oauth/renew_access_token":  {http.StatusOK, "Access Token has been renewed"},
			"/oauth/revoke_access_token": {http.StatusOK, "Revoked Access Token"},
			"/v1/accounts/list":          {http.StatusOK, accountListXML},
		},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeETrade) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
	})
	resp, ok := f.responses[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		resp = fakeResponse{http.StatusOK, "<Response><ok>true</ok></Response>"}
	}
	w.WriteHeader(resp.status)
	fmt.Fprint(w, resp.body)
}

func (f *fakeETrade) respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = fakeResponse{status, body}
}

func (f *fakeETrade) all() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeETrade) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *fakeETrade) count(path string) int {
	n := 0
	for _, r := range f.all() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeETrade) last(path string) (recordedRequest, bool) {
	reqs := f.all()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return recordedRequest{}, false
}

func (f *fakeETrade) newUser(opts ...Option) *User {
	base := []Option{
		WithBaseURLs(f.server.URL+"/oauth/", f.server.URL+"/v1/", f.server.URL+"/e/t/etws/authorize"),
		WithAuthorizer(AuthorizerFunc(func(ctx context.Context, authorizeURL string) (string, error) {
			return testVerifier, nil
		})),
	}
	return NewUser(testConsumerKey, testConsumerSecret, EnvironmentSandbox, zerolog.Nop(), append(base, opts...)...)
}

// loggedInUser returns an authenticated user with the handshake requests cleared.
func (f *fakeETrade) loggedInUser(t *testing.T, opts ...Option) *User {
	t.Helper()
	u := f.newUser(opts...)
	require.NoError(t, u.Login(context.Background()))
	f.reset()
	return u
}
