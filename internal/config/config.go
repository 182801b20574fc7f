package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultNetwork  = "sepolia"
	defaultRPCURL   = "https://ethereum-sepolia-rpc.publicnode.com"
	defaultChainID  = 11155111
	defaultCurrency = "usd"

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Config holds all solterm configuration.
type Config struct {
	Network       string `json:"network"`        // human name of the target chain
	RPCURL        string `json:"rpc_url"`        // JSON-RPC endpoint
	ChainID       int64  `json:"chain_id"`       // expected chain ID, checked by doctor
	DefaultWallet string `json:"default_wallet"` // wallet name used for deployments
	SolcVersion   string `json:"solc_version"`   // pinned solc version, empty = PATH
	PriceCurrency string `json:"price_currency"` // currency for cost estimates

	// config dir path used for Save()
	configDir string
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.solterm.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".solterm")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir

	if cfg.RPCURL == "" {
		cfg.RPCURL = defaultRPCURL
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = defaultChainID
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of the wallet registry file.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

func defaults(dir string) *Config {
	return &Config{
		Network:       defaultNetwork,
		RPCURL:        defaultRPCURL,
		ChainID:       defaultChainID,
		PriceCurrency: defaultCurrency,
		configDir:     dir,
	}
}
