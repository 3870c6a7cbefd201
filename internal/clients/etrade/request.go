package etrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dghubble/oauth1"
)

// get checks the session, then issues one signed GET and returns the raw
// body. Non-2xx responses become *TransportError.
func (u *User) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	token, err := u.session.current()
	if err != nil {
		return nil, err
	}
	return u.send(ctx, token, endpoint, params)
}

// getResponse is get followed by XML parsing.
func (u *User) getResponse(ctx context.Context, endpoint string, params url.Values) (Response, error) {
	body, err := u.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return ParseResponse(body)
}

func (u *User) send(ctx context.Context, token *oauth1.Token, endpoint string, params url.Values) ([]byte, error) {
	requestURL := endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The signing client wraps our base client's transport.
	client := u.oauth.Client(context.WithValue(ctx, oauth1.HTTPClient, u.httpClient), token)
	client.Timeout = u.httpClient.Timeout

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	u.log.Debug().
		Str("method", req.Method).
		Str("url", endpoint).
		Int("status_code", resp.StatusCode).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, u.transportError(resp, endpoint, body)
	}
	return body, nil
}

func (u *User) transportError(resp *http.Response, endpoint string, body []byte) *TransportError {
	bodyStr := string(body)
	u.log.Error().
		Int("status_code", resp.StatusCode).
		Str("status", resp.Status).
		Str("response_body", truncate(bodyStr, 500)).
		Str("url", endpoint).
		Msg("API returned non-2xx status")
	return &TransportError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        endpoint,
		Body:       bodyStr,
	}
}

// handshakeClient is the client for the request and access token calls. It
// uses the configured client's transport and timeout, binds ctx to every
// request and turns non-2xx responses into *TransportError.
func (u *User) handshakeClient(ctx context.Context) *http.Client {
	base := u.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &handshakeTransport{ctx: ctx, base: base, user: u},
		Timeout:   u.httpClient.Timeout,
	}
}

type handshakeTransport struct {
	ctx  context.Context
	base http.RoundTripper
	user *User
}

func (t *handshakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	endpoint := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
	return nil, t.user.transportError(resp, endpoint, body)
}

func isTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
