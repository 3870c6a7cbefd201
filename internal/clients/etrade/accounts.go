package etrade

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const accountListPath = "AccountListResponse.Accounts.Account"

// Account is one brokerage account owned by the User that listed it.
// Values are copied from the accounts/list response and never change.
type Account struct {
	AccountID       string
	AccountIDKey    string
	AccountMode     string
	AccountDesc     string
	AccountName     string
	AccountType     string
	InstitutionType string
	AccountStatus   string
	ClosedDate      int64

	user            *User
	balanceURL      string
	transactionsURL string
	portfolioURL    string
}

func newAccount(user *User, fields map[string]interface{}) (*Account, error) {
	text := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}

	var closedDate int64
	if raw := strings.TrimSpace(text("closedDate")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid closedDate %q: %w", raw, err)
		}
		closedDate = v
	}

	a := &Account{
		AccountID:       text("accountId"),
		AccountIDKey:    text("accountIdKey"),
		AccountMode:     text("accountMode"),
		AccountDesc:     text("accountDesc"),
		AccountName:     text("accountName"),
		AccountType:     text("accountType"),
		InstitutionType: text("institutionType"),
		AccountStatus:   text("accountStatus"),
		ClosedDate:      closedDate,
		user:            user,
	}

	base := user.endpoints.apiBase + "accounts/" + url.PathEscape(a.AccountIDKey) + "/"
	a.balanceURL = base + "balance"
	a.transactionsURL = base + "transactions"
	a.portfolioURL = base + "portfolio"
	return a, nil
}

// User returns the User the account is bound to.
func (a *Account) User() *User {
	return a.user
}

// GetAllAccounts lists the user's accounts in response order.
func (u *User) GetAllAccounts(ctx context.Context) ([]*Account, error) {
	resp, err := u.getResponse(ctx, u.endpoints.listAccounts, nil)
	if err != nil {
		return nil, err
	}
	return u.parseAccounts(resp)
}

func (u *User) parseAccounts(resp Response) ([]*Account, error) {
	values, err := resp.ValuesForPath(accountListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read account list: %w", err)
	}

	accounts := make([]*Account, 0, len(values))
	for i, v := range values {
		fields, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("account entry %d has unexpected type %T", i, v)
		}
		account, err := newAccount(u, fields)
		if err != nil {
			return nil, fmt.Errorf("account entry %d: %w", i, err)
		}
		accounts = append(accounts, account)
	}

	u.log.Debug().Int("count", len(accounts)).Msg("Accounts listed")
	return accounts, nil
}

// GetAccountByName re-lists accounts and returns the first account called name, or nil.
func (u *User) GetAccountByName(ctx context.Context, name string) (*Account, error) {
	return u.findAccount(ctx, func(a *Account) bool { return a.AccountName == name })
}

// GetAccountByID re-lists accounts and returns the first with the given id, or nil.
func (u *User) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	return u.findAccount(ctx, func(a *Account) bool { return a.AccountID == id })
}

func (u *User) findAccount(ctx context.Context, match func(*Account) bool) (*Account, error) {
	accounts, err := u.GetAllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if match(a) {
			return a, nil
		}
	}
	return nil, nil
}

// GetBalance returns the account balance. realTime requests a real-time NAV.
func (a *Account) GetBalance(ctx context.Context, realTime bool) (Response, error) {
	params := url.Values{}
	params.Set("accountType", a.AccountType)
	params.Set("instType", a.InstitutionType)
	params.Set("realTimeNAV", strconv.FormatBool(realTime))
	return a.user.getResponse(ctx, a.balanceURL, params)
}

// SortOrder orders transaction and portfolio listings.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

const defaultTransactionCount = 50

// TransactionsOptions pages through the transaction history. Zero values
// are omitted except Count, which defaults to 50.
type TransactionsOptions struct {
	Marker    string
	Count     int
	SortOrder SortOrder
	StartDate string // MMDDYYYY
	EndDate   string // MMDDYYYY
}

func (o TransactionsOptions) values() url.Values {
	params := url.Values{}
	count := o.Count
	if count <= 0 {
		count = defaultTransactionCount
	}
	if o.Marker != "" {
		params.Set("marker", o.Marker)
	}
	params.Set("count", strconv.Itoa(count))
	if o.SortOrder != "" {
		params.Set("sortOrder", string(o.SortOrder))
	}
	if o.StartDate != "" {
		params.Set("startDate", o.StartDate)
	}
	if o.EndDate != "" {
		params.Set("endDate", o.EndDate)
	}
	return params
}

// ListTransactions returns one page of transactions. The response carries
// the marker of the next page.
func (a *Account) ListTransactions(ctx context.Context, opts TransactionsOptions) (Response, error) {
	return a.user.getResponse(ctx, a.transactionsURL, opts.values())
}

// GetTransactionDetails fetches a single transaction.
func (a *Account) GetTransactionDetails(ctx context.Context, transactionID string) (Response, error) {
	if strings.TrimSpace(transactionID) == "" {
		// ErrNotAuthenticated wins over argument errors.
		if _, err := a.user.session.current(); err != nil {
			return nil, err
		}
		return nil, &ValidationError{Field: "transactionId", Message: "must not be empty"}
	}
	return a.user.getResponse(ctx, a.transactionsURL+"/"+url.PathEscape(transactionID), nil)
}

// PortfolioOptions narrows the portfolio view. Zero values are omitted.
type PortfolioOptions struct {
	Count          int
	SortBy         string
	SortOrder      SortOrder
	View           string // PERFORMANCE, FUNDAMENTAL, OPTIONSWATCH, QUICK, COMPLETE
	TotalsRequired bool
	LotsRequired   bool
}

func (o PortfolioOptions) values() url.Values {
	params := url.Values{}
	if o.Count > 0 {
		params.Set("count", strconv.Itoa(o.Count))
	}
	if o.SortBy != "" {
		params.Set("sortBy", o.SortBy)
	}
	if o.SortOrder != "" {
		params.Set("sortOrder", string(o.SortOrder))
	}
	if o.View != "" {
		params.Set("view", o.View)
	}
	if o.TotalsRequired {
		params.Set("totalsRequired", "true")
	}
	if o.LotsRequired {
		params.Set("lotsRequired", "true")
	}
	return params
}

// GetPortfolio returns the account's positions.
func (a *Account) GetPortfolio(ctx context.Context, opts PortfolioOptions) (Response, error) {
	return a.user.getResponse(ctx, a.portfolioURL, opts.values())
}
