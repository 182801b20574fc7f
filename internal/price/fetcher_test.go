package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
}

func TestNativeCoinPrice(t *testing.T) {
	srv := priceServer(t, http.StatusOK, `{"ethereum":{"usd":2000.5}}`)
	defer srv.Close()

	f := NewFetcher("usd").WithBaseURL(srv.URL)
	p, err := f.NativeCoinPrice(context.Background(), "sepolia")
	require.NoError(t, err)
	assert.Equal(t, 2000.5, p)
}

func TestNativeCoinPriceTestnetMapsToMainnetCoin(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RawQuery
		w.Write([]byte(`{"ethereum":{"usd":1}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher("usd").WithBaseURL(srv.URL)
	_, err := f.NativeCoinPrice(context.Background(), "holesky")
	require.NoError(t, err)
	assert.Contains(t, gotPath, "ids=ethereum")
}

func TestNativeCoinPriceUnknownNetwork(t *testing.T) {
	f := NewFetcher("usd")
	_, err := f.NativeCoinPrice(context.Background(), "testchain-9000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price source")
}

func TestNativeCoinPriceAPIError(t *testing.T) {
	srv := priceServer(t, http.StatusTooManyRequests, `rate limited`)
	defer srv.Close()

	f := NewFetcher("usd").WithBaseURL(srv.URL)
	_, err := f.NativeCoinPrice(context.Background(), "ethereum")
	require.Error(t, err)
}

func TestNativeCoinPriceMissingCurrency(t *testing.T) {
	srv := priceServer(t, http.StatusOK, `{"ethereum":{"eur":1800}}`)
	defer srv.Close()

	f := NewFetcher("usd").WithBaseURL(srv.URL)
	_, err := f.NativeCoinPrice(context.Background(), "ethereum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestCurrencyDefaultsToUSD(t *testing.T) {
	f := NewFetcher("")
	assert.Equal(t, "usd", f.currency)
}

func TestPriceFuncAdapter(t *testing.T) {
	srv := priceServer(t, http.StatusOK, `{"ethereum":{"usd":42}}`)
	defer srv.Close()

	fn := NewFetcher("usd").WithBaseURL(srv.URL).PriceFunc("sepolia")
	p, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.0, p)
}
