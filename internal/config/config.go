package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

const (
	ProviderDNSimple   = "dnsimple"
	ProviderCloudflare = "cloudflare"

	DNSimpleURL        = "https://api.dnsimple.com"
	DNSimpleSandboxURL = "https://api.sandbox.dnsimple.com"
	BalenaURL          = "https://api.balena-cloud.com"

	defaultProvider    = ProviderDNSimple
	defaultWorkers     = 1
	defaultHTTPTimeout = 30 * time.Second
	defaultLogLevel    = "info"
	defaultLogEnv      = "prod"
	defaultLogFormat   = "text"
	defaultMetricsJob  = "fleet_dns_sync"
)

type Config struct {
	Log       Log       `yaml:"log"`
	Fleet     Fleet     `yaml:"fleet"`
	DNS       DNS       `yaml:"dns"`
	Reconcile Reconcile `yaml:"reconcile"`
	HTTP      HTTP      `yaml:"http"`
	Metrics   Metrics   `yaml:"metrics"`
}

type Fleet struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type DNS struct {
	Provider  string `yaml:"provider"`
	Token     string `yaml:"token"`
	AccountID string `yaml:"accountId"`
	Zone      string `yaml:"zone"`
	Sandbox   bool   `yaml:"sandbox"`
	// URL overrides the provider endpoint, mostly useful for tests.
	URL string `yaml:"url"`
}

type Log struct {
	Level  string `yaml:"level"`
	Env    string `yaml:"env"`
	Format string `yaml:"format"`
}

type Reconcile struct {
	DryRun           bool     `yaml:"dryRun"`
	Workers          int      `yaml:"workers"`
	ProtectedRecords []string `yaml:"protectedRecords"`
}

type HTTP struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Metrics struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// Load reads the yaml file at path when it exists, applies defaults and then
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	configFile := true
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Debug("fail find config file, proceeding", "path", path)
		configFile = false
	}

	var cfg Config
	if configFile {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			f.Close()
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			slog.Default().Warn("fail close config file", "path", path, "error", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Fleet.URL == "" {
		cfg.Fleet.URL = BalenaURL
	}
	if cfg.DNS.Provider == "" {
		cfg.DNS.Provider = defaultProvider
	}
	if cfg.Reconcile.Workers == 0 {
		cfg.Reconcile.Workers = defaultWorkers
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = defaultHTTPTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = defaultLogEnv
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = defaultMetricsJob
	}
}

func (cfg *Config) applyEnv() {
	if token := os.Getenv("FLEET_DNS_SYNC_FLEET_TOKEN"); token != "" {
		cfg.Fleet.Token = token
	}
	if url := os.Getenv("FLEET_DNS_SYNC_FLEET_URL"); url != "" {
		cfg.Fleet.URL = url
	}
	if provider := os.Getenv("FLEET_DNS_SYNC_PROVIDER"); provider != "" {
		cfg.DNS.Provider = provider
	}
	if token := os.Getenv("FLEET_DNS_SYNC_DNS_TOKEN"); token != "" {
		cfg.DNS.Token = token
	}
	if account := os.Getenv("FLEET_DNS_SYNC_ACCOUNT_ID"); account != "" {
		cfg.DNS.AccountID = account
	}
	if zone := os.Getenv("FLEET_DNS_SYNC_ZONE"); zone != "" {
		cfg.DNS.Zone = zone
	}
	if sandbox := os.Getenv("FLEET_DNS_SYNC_SANDBOX"); sandbox != "" {
		if b, err := strconv.ParseBool(sandbox); err == nil {
			cfg.DNS.Sandbox = b
		} else {
			slog.Default().Warn("fail parse sandbox to bool from string", "sandbox", sandbox, "error", err)
		}
	}
	if dryRun := os.Getenv("FLEET_DNS_SYNC_DRYRUN"); dryRun != "" {
		switch strings.ToLower(dryRun) {
		case "true":
			cfg.Reconcile.DryRun = true
		case "false":
			cfg.Reconcile.DryRun = false
		default:
			slog.Default().Warn("fail parse dryrun to bool from string", "dryrun", dryRun)
		}
	}
	if workers := os.Getenv("FLEET_DNS_SYNC_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Reconcile.Workers = n
		} else {
			slog.Default().Warn("fail parse workers to int from string", "workers", workers, "error", err)
		}
	}
	if protected := os.Getenv("FLEET_DNS_SYNC_PROTECTED_RECORDS"); protected != "" {
		cfg.Reconcile.ProtectedRecords = strings.Split(protected, ",")
	}
	if timeout := os.Getenv("FLEET_DNS_SYNC_HTTP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.HTTP.Timeout = d
		} else {
			slog.Default().Warn("fail parse http timeout to duration from string", "timeout", timeout, "error", err)
		}
	}
	if url := os.Getenv("FLEET_DNS_SYNC_PUSHGATEWAY_URL"); url != "" {
		cfg.Metrics.PushgatewayURL = url
	}
	if loglevel := os.Getenv("FLEET_DNS_SYNC_LOG_LEVEL"); loglevel != "" {
		cfg.Log.Level = loglevel
	}
	if logenv := os.Getenv("FLEET_DNS_SYNC_LOG_ENV"); logenv != "" {
		cfg.Log.Env = logenv
	}
	if logformat := os.Getenv("FLEET_DNS_SYNC_LOG_FORMAT"); logformat != "" {
		cfg.Log.Format = logformat
	}
}

// DNSURL is the provider endpoint the run talks to.
func (cfg *Config) DNSURL() string {
	if cfg.DNS.URL != "" {
		return cfg.DNS.URL
	}
	if cfg.DNS.Provider != ProviderDNSimple {
		return ""
	}
	if cfg.DNS.Sandbox {
		return DNSimpleSandboxURL
	}
	return DNSimpleURL
}

// Validate reports every missing or inconsistent setting at once.
func (cfg *Config) Validate() error {
	var result *multierror.Error

	if cfg.Fleet.Token == "" {
		result = multierror.Append(result, errors.New("fleet auth token required"))
	}
	if cfg.DNS.Token == "" {
		result = multierror.Append(result, errors.New("dns auth token required"))
	}
	if cfg.DNS.Zone == "" {
		result = multierror.Append(result, errors.New("zone required"))
	}
	if cfg.Reconcile.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("workers must be at least 1, got %d", cfg.Reconcile.Workers))
	}

	switch cfg.DNS.Provider {
	case ProviderDNSimple:
		if cfg.DNS.AccountID == "" {
			result = multierror.Append(result, errors.New("account id required"))
		} else if _, err := strconv.ParseInt(cfg.DNS.AccountID, 10, 64); err != nil {
			result = multierror.Append(result, fmt.Errorf("account id %q is not numeric", cfg.DNS.AccountID))
		}
	case ProviderCloudflare:
		if cfg.DNS.Sandbox {
			result = multierror.Append(result, errors.New("sandbox endpoint not available for cloudflare"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown dns provider %q", cfg.DNS.Provider))
	}

	return result.ErrorOrNil()
}
