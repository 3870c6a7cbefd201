package etrade

import (
	"context"
	"time"
)

// RenewJob keeps an idle access token alive. Tokens go inactive after two
// hours without requests, so schedule it more often than that.
type RenewJob struct {
	user    *User
	timeout time.Duration
}

// NewRenewJob creates a renew job for user. Each run is bounded by timeout.
func NewRenewJob(user *User, timeout time.Duration) *RenewJob {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RenewJob{user: user, timeout: timeout}
}

func (j *RenewJob) Name() string { return "etrade_renew_token" }

// Run renews the token. It is a no-op once the user has logged out.
func (j *RenewJob) Run() error {
	if !j.user.Authenticated() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.user.Renew(ctx)
}
