package etrade

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	maxQuoteSymbols = 50
	// Above this many symbols the API requires overrideSymbolCount=true.
	overrideSymbolThreshold = 25
)

// Detail selects the quote field set.
type Detail string

const (
	DetailAll         Detail = "ALL"
	DetailFundamental Detail = "FUNDAMENTAL"
	DetailIntraday    Detail = "INTRADAY"
	DetailOptions     Detail = "OPTIONS"
	DetailWeek52      Detail = "WEEK_52"
	DetailMFDetail    Detail = "MF_DETAIL"
)

// ChainType selects calls, puts or both in an option chain.
type ChainType string

const (
	ChainTypeCall    ChainType = "CALL"
	ChainTypePut     ChainType = "PUT"
	ChainTypeCallPut ChainType = "CALLPUT"
)

// ExpiryType filters option expiry dates.
type ExpiryType string

const (
	ExpiryTypeAll       ExpiryType = "ALL"
	ExpiryTypeMonthly   ExpiryType = "MONTHLY"
	ExpiryTypeWeekly    ExpiryType = "WEEKLY"
	ExpiryTypeQuarterly ExpiryType = "QUARTERLY"
)

// GetQuote returns quotes for up to 50 symbols at the given detail level.
// More than 25 symbols sets overrideSymbolCount.
func (u *User) GetQuote(ctx context.Context, symbols []string, detail Detail, requireEarnings, skipMiniOptions bool) (Response, error) {
	if _, err := u.session.current(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, &ValidationError{Field: "symbols", Message: "at least one symbol is required"}
	}
	if len(symbols) > maxQuoteSymbols {
		return nil, &ValidationError{
			Field:   "symbols",
			Message: fmt.Sprintf("quote takes a maximum of %d symbols, got %d", maxQuoteSymbols, len(symbols)),
		}
	}
	if detail == "" {
		detail = DetailAll
	}

	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.PathEscape(strings.TrimSpace(s))
	}

	params := url.Values{}
	params.Set("detailFlag", string(detail))
	params.Set("requireEarningsDate", strconv.FormatBool(requireEarnings))
	params.Set("overrideSymbolCount", strconv.FormatBool(len(symbols) > overrideSymbolThreshold))
	params.Set("skipMiniOptionsCheck", strconv.FormatBool(skipMiniOptions))

	return u.getResponse(ctx, u.endpoints.quote+strings.Join(escaped, ","), params)
}

// GetOptionChains returns the option chain for symbol and expiry month.
// extra is merged into the query and wins on key collisions. An empty
// chainType means CALLPUT.
func (u *User) GetOptionChains(ctx context.Context, symbol, month string, chainType ChainType, extra map[string]string) (Response, error) {
	if chainType == "" {
		chainType = ChainTypeCallPut
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("expiryMonth", month)
	params.Set("chainType", string(chainType))
	for k, v := range extra {
		params.Set(k, v)
	}
	return u.getResponse(ctx, u.endpoints.optionChains, params)
}

// GetOptionExpires returns the option expiry dates for symbol. An empty
// expiryType means ALL.
func (u *User) GetOptionExpires(ctx context.Context, symbol string, expiryType ExpiryType) (Response, error) {
	if expiryType == "" {
		expiryType = ExpiryTypeAll
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("expiryType", string(expiryType))
	return u.getResponse(ctx, u.endpoints.optionExpires, params)
}
