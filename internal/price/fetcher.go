package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves native-coin fiat prices from CoinGecko. Price lookups
// are best-effort decoration for cost estimates; callers must tolerate
// failures.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// NewFetcher creates a price fetcher for the given vs-currency ("usd",
// "eur", ...).
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
}

// WithBaseURL points the fetcher at an alternate API endpoint (tests).
func (f *Fetcher) WithBaseURL(url string) *Fetcher {
	f.baseURL = strings.TrimSuffix(url, "/")
	return f
}

// coinGeckoIDs maps network names to CoinGecko coin IDs. Testnets price
// against the mainnet coin.
var coinGeckoIDs = map[string]string{
	"ethereum": "ethereum",
	"mainnet":  "ethereum",
	"sepolia":  "ethereum",
	"holesky":  "ethereum",
	"base":     "ethereum",
	"arbitrum": "ethereum",
	"optimism": "ethereum",
	"polygon":  "matic-network",
	"gnosis":   "xdai",
}

// NativeCoinPrice returns the fiat price of a network's native token.
func (f *Fetcher) NativeCoinPrice(ctx context.Context, network string) (float64, error) {
	id, ok := coinGeckoIDs[strings.ToLower(network)]
	if !ok {
		return 0, fmt.Errorf("no price source for network: %s", network)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, id, f.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price API returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading price response: %w", err)
	}

	// Response: {"ethereum":{"usd":1234.56}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("parsing price response: %w", err)
	}
	p, ok := raw[id][f.currency]
	if !ok {
		return 0, fmt.Errorf("price not available for %s in %s", id, f.currency)
	}
	return p, nil
}

// PriceFunc adapts the fetcher to the estimator's fiat lookup hook.
func (f *Fetcher) PriceFunc(network string) func(ctx context.Context) (float64, error) {
	return func(ctx context.Context) (float64, error) {
		return f.NativeCoinPrice(ctx, network)
	}
}
