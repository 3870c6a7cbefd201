package etrade

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BalanceSummary is a typed view of the headline figures in a balance response.
type BalanceSummary struct {
	AccountID          string
	AccountType        string
	AccountDescription string
	CashBalance        decimal.Decimal
	NetCash            decimal.Decimal
	CashBuyingPower    decimal.Decimal
	MarginBuyingPower  decimal.Decimal
	TotalAccountValue  decimal.Decimal
}

// GetBalanceSummary fetches the balance and extracts the headline figures.
func (a *Account) GetBalanceSummary(ctx context.Context, realTime bool) (*BalanceSummary, error) {
	resp, err := a.GetBalance(ctx, realTime)
	if err != nil {
		return nil, err
	}
	return NewBalanceSummary(resp)
}

// NewBalanceSummary reads a parsed BalanceResponse. Missing amounts are zero.
func NewBalanceSummary(resp Response) (*BalanceSummary, error) {
	s := &BalanceSummary{
		AccountID:          resp.String("BalanceResponse.accountId"),
		AccountType:        resp.String("BalanceResponse.accountType"),
		AccountDescription: resp.String("BalanceResponse.accountDescription"),
	}

	amounts := []struct {
		path string
		dst  *decimal.Decimal
	}{
		{"BalanceResponse.Computed.cashBalance", &s.CashBalance},
		{"BalanceResponse.Computed.netCash", &s.NetCash},
		{"BalanceResponse.Computed.cashBuyingPower", &s.CashBuyingPower},
		{"BalanceResponse.Computed.marginBuyingPower", &s.MarginBuyingPower},
		{"BalanceResponse.Computed.RealTimeValues.totalAccountValue", &s.TotalAccountValue},
	}
	for _, amt := range amounts {
		raw := strings.TrimSpace(resp.String(amt.path))
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount at %s: %w", amt.path, err)
		}
		*amt.dst = v
	}
	return s, nil
}
