package etrade

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("S%d", i)
	}
	return out
}

func quoteRequest(t *testing.T, fake *fakeETrade) recordedRequest {
	t.Helper()
	reqs := fake.all()
	for i := len(reqs) - 1; i >= 0; i-- {
		if strings.HasPrefix(reqs[i].Path, "/v1/market/quote/") {
			return reqs[i]
		}
	}
	t.Fatal("no quote request recorded")
	return recordedRequest{}
}

func TestGetQuote_BuildsRequest(t *testing.T) {
	fake := newFakeETrade(t)
	fake.respond("/v1/market/quote/GOOG,AAPL", http.StatusOK,
		`<QuoteResponse><QuoteData><Product><symbol>GOOG</symbol></Product></QuoteData><QuoteData><Product><symbol>AAPL</symbol></Product></QuoteData></QuoteResponse>`)
	u := fake.loggedInUser(t)

	resp, err := u.GetQuote(context.Background(), []string{"GOOG", "AAPL"}, DetailFundamental, true, false)
	require.NoError(t, err)

	products, err := resp.ValuesForPath("QuoteResponse.QuoteData.Product.symbol")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"GOOG", "AAPL"}, products)

	req := quoteRequest(t, fake)
	assert.Equal(t, "/v1/market/quote/GOOG,AAPL", req.Path)
	assert.Equal(t, "FUNDAMENTAL", req.Query.Get("detailFlag"))
	assert.Equal(t, "true", req.Query.Get("requireEarningsDate"))
	assert.Equal(t, "false", req.Query.Get("overrideSymbolCount"))
	assert.Equal(t, "false", req.Query.Get("skipMiniOptionsCheck"))
}

func TestGetQuote_DefaultDetail(t *testing.T) {
	fake := newFakeETrade(t)
	u := fake.loggedInUser(t)

	_, err := u.GetQuote(context.Background(), []string{"GOOG"}, "", false, true)
	require.NoError(t, err)

	req := quoteRequest(t, fake)
	assert.Equal(t, "ALL", req.Query.Get("detailFlag"))
	assert.Equal(t, "false", req.Query.Get("requireEarningsDate"))
	assert.Equal(t, "true", req.Query.Get("skipMiniOptionsCheck"))
}

func TestGetQuote_SymbolLimit(t *testing.T) {
	fake := newFakeETrade(t)
	u := fake.loggedInUser(t)

	_, err := u.GetQuote(context.Background(), symbols(51), DetailAll, true, false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "symbols", ve.Field)
	assert.Empty(t, fake.all(), "validation must fail before any request")

	_, err = u.GetQuote(context.Background(), symbols(50), DetailAll, true, false)
	require.NoError(t, err)
	assert.Len(t, fake.all(), 1)
}

func TestGetQuote_EmptySymbols(t *testing.T) {
	fake := newFakeETrade(t)
	u := fake.loggedInUser(t)

	_, err := u.GetQuote(context.Background(), nil, DetailAll, true, false)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, fake.all())
}

func TestGetQuote_OverrideSymbolCountBoundary(t *testing.T) {
	testCases := []struct {
		count int
		want  string
	}{
		{1, "false"},
		{25, "false"},
		{26, "true"},
		{50, "true"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d symbols", tc.count), func(t *testing.T) {
			fake := newFakeETrade(t)
			u := fake.loggedInUser(t)

			_, err := u.GetQuote(context.Background(), symbols(tc.count), DetailAll, true, false)
			require.NoError(t, err)

			req := quoteRequest(t, fake)
			assert.Equal(t, tc.want, req.Query.Get("overrideSymbolCount"))
			assert.Len(t, strings.Split(strings.TrimPrefix(req.Path, "/v1/market/quote/"), ","), tc.count)
		})
	}
}

func TestGetQuote_TransportError(t *testing.T) {
	fake := newFakeETrade(t)
	fake.respond("/v1/market/quote/BAD", http.StatusBadRequest, "<Error><code>10033</code></Error>")
	u := fake.loggedInUser(t)

	resp, err := u.GetQuote(context.Background(), []string{"BAD"}, DetailAll, true, false)
	assert.Nil(t, resp)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
}

func TestGetOptionChains_MergesExtraParams(t *testing.T) {
	fake := newFakeETrade(t)
	u := fake.loggedInUser(t)

	_, err := u.GetOptionChains(context.Background(), "GOOG", "05", ChainTypeCall, map[string]string{
		"extra_param": "Y",
		"noOfStrikes": "10",
	})
	require.NoError(t, err)

	req, ok := fake.last("/v1/market/optionchains")
	require.True(t, ok)
	assert.Equal(t, "GOOG", req.Query.Get("symbol"))
	assert.Equal(t, "05", req.Query.Get("expiryMonth"))
	assert.Equal(t, "CALL", req.Query.Get("chainType"))
	assert.Equal(t, "Y", req.Query.Get("extra_param"))
	assert.Equal(t, "10", req.Query.Get("noOfStrikes"))
}

func TestGetOptionChains_ExtraOverridesRequired(t *testing.T) {
	fake := newFakeETrade(t)
	u := fake.loggedInUser(t)

	_, err := u.GetOptionChains(context.Background(), "GOOG", "05", "", map[string]string{"chainType": "PUT"})
	require.NoError(t, err)

	req, _ := fake.last("/v1/market/optionchains")
	assert.Equal(t, []string{"PUT"}, req.Query["chainType"])
}

func TestGetOptionChains_DefaultChainType(t *testing.T) {
	fake := newFakeETrade(t)
	u := fake.loggedInUser(t)

	_, err := u.GetOptionChains(context.Background(), "GOOG", "05", "", nil)
	require.NoError(t, err)

	req, _ := fake.last("/v1/market/optionchains")
	assert.Equal(t, "CALLPUT", req.Query.Get("chainType"))
}

func TestGetOptionExpires(t *testing.T) {
	fake := newFakeETrade(t)
	fake.respond("/v1/market/optionexpiredate", http.StatusOK,
		`<OptionExpireDateResponse><ExpirationDate><year>2024</year><month>5</month><day>17</day><expiryType>MONTHLY</expiryType></ExpirationDate></OptionExpireDateResponse>`)
	u := fake.loggedInUser(t)

	resp, err := u.GetOptionExpires(context.Background(), "GOOG", "")
	require.NoError(t, err)
	assert.Equal(t, "17", resp.String("OptionExpireDateResponse.ExpirationDate.day"))

	req, _ := fake.last("/v1/market/optionexpiredate")
	assert.Equal(t, "GOOG", req.Query.Get("symbol"))
	assert.Equal(t, "ALL", req.Query.Get("expiryType"))

	_, err = u.GetOptionExpires(context.Background(), "GOOG", ExpiryTypeWeekly)
	require.NoError(t, err)
	req, _ = fake.last("/v1/market/optionexpiredate")
	assert.Equal(t, "WEEKLY", req.Query.Get("expiryType"))
}
