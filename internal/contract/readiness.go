package contract

import (
	"context"
	"fmt"

	"github.com/solterm/solterm/internal/chain"
	"github.com/solterm/solterm/internal/wallet"
)

// Readiness is an advisory pre-flight report. The deployer does not gate on
// it; users run it to find out why a deployment would fail before paying for
// the attempt.
type Readiness struct {
	Ready  bool
	Issues []string
}

// Checker validates wallet, balance and network state ahead of a deployment.
type Checker struct {
	client          *chain.Client
	provider        wallet.Provider
	expectedChainID int64
}

// NewChecker creates a readiness checker for the configured target network.
func NewChecker(client *chain.Client, provider wallet.Provider, expectedChainID int64) *Checker {
	return &Checker{client: client, provider: provider, expectedChainID: expectedChainID}
}

// Check runs every probe independently — no short-circuiting — and appends
// one human-readable issue per failing check.
func (c *Checker) Check(ctx context.Context) *Readiness {
	var issues []string

	var account string
	if c.provider == nil {
		issues = append(issues, "no wallet configured — add one with `solterm wallet add`")
	} else {
		accounts, err := c.provider.Accounts()
		switch {
		case err != nil:
			issues = append(issues, "wallet provider unavailable: "+err.Error())
		case len(accounts) == 0:
			issues = append(issues, "no account available — add a signing key with `solterm wallet add`")
		default:
			account = accounts[0]
		}
	}

	if account != "" {
		bal, err := c.client.GetBalance(ctx, account)
		switch {
		case err != nil:
			issues = append(issues, "could not fetch balance: "+err.Error())
		case bal.Wei.Cmp(minBalanceWei) < 0:
			issues = append(issues, fmt.Sprintf(
				"balance %s ETH is below the %s ETH deployment floor — fund %s",
				chain.FormatETH(bal.Wei, 6), chain.FormatETH(minBalanceWei, 6), account))
		}
	}

	chainID, err := c.client.ChainID(ctx)
	switch {
	case err != nil:
		issues = append(issues, "could not reach the RPC endpoint: "+err.Error())
	case chainID != c.expectedChainID:
		issues = append(issues, fmt.Sprintf(
			"connected chain id %d does not match configured target %d — check rpc_url",
			chainID, c.expectedChainID))
	}

	return &Readiness{Ready: len(issues) == 0, Issues: issues}
}
