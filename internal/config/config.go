package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tokenchecker/internal/chain"
	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/ratelimit"
)

// Default upstream base URLs.
const (
	DefaultDexScreenerBaseURL = "https://api.dexscreener.com"
	DefaultJupiterBaseURL     = "https://token.jup.ag"
	DefaultCoinGeckoBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultPrefsPath          = "$HOME/.tokenchecker/prefs.db"
)

// Output formats for the final report.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

var (
	outputs     = []string{OutputTable, OutputJSON, OutputYAML}
	commitments = []string{"", "processed", "confirmed", "finalized"}
	logLevels   = []string{"debug", "info", "warn", "error"}
)

// Config holds all configuration for the token checker.
type Config struct {
	// Chain endpoint. Empty means: saved preference, then chain.DefaultEndpoint.
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	Commitment  string `mapstructure:"commitment"`

	// Wallets to check: inline text, or a file holding the same text.
	Wallets     string `mapstructure:"wallets"`
	WalletsFile string `mapstructure:"wallets_file"`

	// Query mode
	CheckSOL     bool   `mapstructure:"check_sol"`
	TokenAddress string `mapstructure:"token_address"`
	TokenPreset  string `mapstructure:"token_preset"`

	// Result filter
	MinValue      float64 `mapstructure:"min_value"`
	FilterByToken bool    `mapstructure:"filter_by_token"`

	RetryFailed bool `mapstructure:"retry_failed"`

	// Base URLs for API endpoints (configurable for testing)
	DexScreenerBaseURL string `mapstructure:"dexscreener_base_url"`
	JupiterBaseURL     string `mapstructure:"jupiter_base_url"`
	CoinGeckoBaseURL   string `mapstructure:"coingecko_base_url"`
	CoinGeckoAPIKey    string `mapstructure:"coingecko_api_key"`

	HTTPRetries    int     `mapstructure:"http_retries"`
	RPCRPS         float64 `mapstructure:"rpc_rps"`
	DexScreenerRPS float64 `mapstructure:"dexscreener_rps"`
	JupiterRPS     float64 `mapstructure:"jupiter_rps"`
	CoinGeckoRPS   float64 `mapstructure:"coingecko_rps"`

	// Preference store and the explicit save/reset actions on it
	PrefsPath   string `mapstructure:"prefs_path"`
	SaveRPC     bool   `mapstructure:"save_rpc"`
	ResetRPC    bool   `mapstructure:"reset_rpc"`
	SaveWallets bool   `mapstructure:"save_wallets"`

	LogLevel    string `mapstructure:"log_level"`
	Output      string `mapstructure:"output"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Mode returns the query mode selected by the configuration.
func (c *Config) Mode() model.Mode {
	if c.CheckSOL {
		return model.NativeMode()
	}
	return model.TokenMode(c.TokenAddress)
}

// FilterUnit returns the unit the min_value threshold applies to.
func (c *Config) FilterUnit() model.Unit {
	if c.FilterByToken {
		return model.UnitToken
	}
	return model.UnitUSD
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// binding ties a config key to its environment variable and command-line flag.
type binding struct {
	key  string
	env  string
	flag string
}

var bindings = []binding{
	{"rpc_endpoint", "RPC_ENDPOINT", "rpc"},
	{"commitment", "COMMITMENT", "commitment"},
	{"wallets", "WALLETS", "wallets"},
	{"wallets_file", "WALLETS_FILE", "wallets-file"},
	{"check_sol", "CHECK_SOL", "sol"},
	{"token_address", "TOKEN_ADDRESS", "token"},
	{"token_preset", "TOKEN_PRESET", "preset"},
	{"min_value", "MIN_VALUE", "min-value"},
	{"filter_by_token", "FILTER_BY_TOKEN", "filter-by-token"},
	{"retry_failed", "RETRY_FAILED", "retry-failed"},
	{"dexscreener_base_url", "DEXSCREENER_BASE_URL", ""},
	{"jupiter_base_url", "JUPITER_BASE_URL", ""},
	{"coingecko_base_url", "COINGECKO_BASE_URL", ""},
	{"coingecko_api_key", "COINGECKO_API_KEY", ""},
	{"http_retries", "HTTP_RETRIES", ""},
	{"rpc_rps", "RPC_RPS", ""},
	{"dexscreener_rps", "DEXSCREENER_RPS", ""},
	{"jupiter_rps", "JUPITER_RPS", ""},
	{"coingecko_rps", "COINGECKO_RPS", ""},
	{"prefs_path", "PREFS_PATH", "prefs"},
	{"save_rpc", "", "save-rpc"},
	{"reset_rpc", "", "reset-rpc"},
	{"save_wallets", "", "save-wallets"},
	{"log_level", "LOG_LEVEL", "log-level"},
	{"output", "OUTPUT", "output"},
	{"metrics_addr", "METRICS_ADDR", "metrics-addr"},
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tokenchecker", pflag.ContinueOnError)
	fs.String("rpc", "", "Solana RPC endpoint (default: saved endpoint, then "+chain.DefaultEndpoint+")")
	fs.String("commitment", "", "RPC commitment: processed, confirmed or finalized")
	fs.String("wallets", "", "wallet addresses separated by whitespace or commas")
	fs.String("wallets-file", "", "file holding wallet addresses")
	fs.Bool("sol", false, "check native SOL balances instead of a token")
	fs.String("token", "", "token mint address")
	fs.String("preset", "", "preset token symbol ("+strings.Join(PresetSymbols(), ", ")+")")
	fs.Float64("min-value", 0, "hide successful results below this value")
	fs.Bool("filter-by-token", false, "apply --min-value to token amounts instead of USD")
	fs.Bool("retry-failed", false, "retry every failed wallet once after the run")
	fs.String("prefs", DefaultPrefsPath, "preferences database path")
	fs.Bool("save-rpc", false, "save the RPC endpoint as the new default")
	fs.Bool("reset-rpc", false, "forget the saved RPC endpoint")
	fs.Bool("save-wallets", false, "save the wallet list for later runs")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("output", OutputTable, "report format: table, json or yaml")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	return fs
}

// Load reads configuration from command-line flags, environment variables
// and an optional config file, in that order of precedence.
//
// Expected environment variables:
//   - WALLETS or WALLETS_FILE (optional when wallets were saved earlier)
//   - TOKEN_ADDRESS or TOKEN_PRESET (required unless CHECK_SOL is set)
//   - RPC_ENDPOINT (optional, defaults to the saved endpoint, then mainnet-beta)
//   - DEXSCREENER_BASE_URL, JUPITER_BASE_URL, COINGECKO_BASE_URL (optional, defaults to production)
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("dexscreener_base_url", DefaultDexScreenerBaseURL)
	v.SetDefault("jupiter_base_url", DefaultJupiterBaseURL)
	v.SetDefault("coingecko_base_url", DefaultCoinGeckoBaseURL)
	v.SetDefault("http_retries", fetcher.DefaultRetryCount)
	v.SetDefault("prefs_path", DefaultPrefsPath)
	v.SetDefault("log_level", "info")
	v.SetDefault("output", OutputTable)
	rates := ratelimit.DefaultRates()
	v.SetDefault("rpc_rps", rates[ratelimit.APIRPC])
	v.SetDefault("dexscreener_rps", rates[ratelimit.APIDexScreener])
	v.SetDefault("jupiter_rps", rates[ratelimit.APIJupiter])
	v.SetDefault("coingecko_rps", rates[ratelimit.APICoinGecko])

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.tokenchecker")
	_ = v.ReadInConfig()

	for _, b := range bindings {
		if b.env != "" {
			if err := v.BindEnv(b.key, b.env); err != nil {
				return nil, fmt.Errorf("failed to bind %s: %w", b.env, err)
			}
		}
		if b.flag != "" {
			if err := v.BindPFlag(b.key, fs.Lookup(b.flag)); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", b.flag, err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.PrefsPath = os.ExpandEnv(config.PrefsPath)

	if err := config.resolveToken(); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// resolveToken fills TokenAddress from the preset when no address is given.
func (c *Config) resolveToken() error {
	if c.CheckSOL || c.TokenPreset == "" {
		return nil
	}
	preset, ok := LookupPreset(c.TokenPreset)
	if !ok {
		return fmt.Errorf("unknown token preset %q (known: %s)", c.TokenPreset, strings.Join(PresetSymbols(), ", "))
	}
	if c.TokenAddress == "" {
		c.TokenAddress = preset.Address
	}
	return nil
}

func (c *Config) validate() error {
	var missing []string
	if !c.CheckSOL && c.TokenAddress == "" {
		missing = append(missing, "TOKEN_ADDRESS or TOKEN_PRESET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	var invalid []string
	if !slices.Contains(outputs, c.Output) {
		invalid = append(invalid, fmt.Sprintf("output %q", c.Output))
	}
	if !slices.Contains(commitments, c.Commitment) {
		invalid = append(invalid, fmt.Sprintf("commitment %q", c.Commitment))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		invalid = append(invalid, fmt.Sprintf("log level %q", c.LogLevel))
	}
	if c.MinValue < 0 {
		invalid = append(invalid, fmt.Sprintf("min value %v", c.MinValue))
	}
	if c.HTTPRetries < 0 {
		invalid = append(invalid, fmt.Sprintf("http retries %d", c.HTTPRetries))
	}
	if c.SaveRPC && c.ResetRPC {
		invalid = append(invalid, "save_rpc together with reset_rpc")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// ResolveEndpoint picks the RPC endpoint: explicit configuration, then the
// saved preference, then the public default.
func ResolveEndpoint(configured, saved string) string {
	if configured != "" {
		return configured
	}
	if saved != "" {
		return saved
	}
	return chain.DefaultEndpoint
}

// ReadWallets returns the wallet text from the inline value or, when that is
// empty, from WalletsFile.
func (c *Config) ReadWallets() (string, error) {
	if c.Wallets != "" || c.WalletsFile == "" {
		return c.Wallets, nil
	}
	data, err := os.ReadFile(c.WalletsFile)
	if err != nil {
		return "", fmt.Errorf("failed to read wallets file: %w", err)
	}
	return string(data), nil
}
