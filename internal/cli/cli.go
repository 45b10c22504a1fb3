package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evanofslack/fleet-dns-sync/internal/config"
	"github.com/evanofslack/fleet-dns-sync/internal/httpclient"
	"github.com/evanofslack/fleet-dns-sync/internal/logger"
	"github.com/evanofslack/fleet-dns-sync/internal/metrics"
	"github.com/evanofslack/fleet-dns-sync/internal/provider"
	"github.com/evanofslack/fleet-dns-sync/internal/provider/cloudflare"
	"github.com/evanofslack/fleet-dns-sync/internal/provider/dnsimple"
	"github.com/evanofslack/fleet-dns-sync/internal/reconcile"
	"github.com/evanofslack/fleet-dns-sync/internal/source/balena"
)

var version = "dev" // value injected in compilation-time with go linker

type flags struct {
	configPath     string
	fleetAuthToken string
	dnsAuthToken   string
	accountID      string
	zone           string
	sandbox        bool
	dnsProvider    string
	dryRun         bool
	workers        int
	logLevel       string
	logFormat      string
}

// NewRootCommand wires the update, clear and version subcommands. Errors are
// returned rather than printed; the caller logs them.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "fleet-dns-sync",
		Short:         "Keep DNS address records in step with fleet device addresses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(f.logLevel, "prod", f.logFormat)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "config.yaml", "path to optional yaml config file")
	pf.StringVar(&f.fleetAuthToken, "fleet_auth_token", "", "fleet API token")
	pf.StringVar(&f.dnsAuthToken, "dns_auth_token", "", "DNS provider API token")
	pf.StringVar(&f.accountID, "account_id", "", "DNS provider account id")
	pf.StringVar(&f.zone, "zone", "", "DNS zone to reconcile")
	pf.BoolVar(&f.sandbox, "sandbox", false, "use the DNS provider sandbox endpoint")
	pf.StringVar(&f.dnsProvider, "dns_provider", "", "DNS provider: dnsimple or cloudflare")
	pf.BoolVar(&f.dryRun, "dry_run", false, "log planned changes without applying them")
	pf.IntVar(&f.workers, "workers", 0, "concurrent page fetches and record mutations")
	pf.StringVar(&f.logLevel, "log_level", "", "log level: debug, info, warn, error")
	pf.StringVar(&f.logFormat, "log_format", "", "log format: text or json")

	root.AddCommand(
		newModeCommand(f, reconcile.ModeUpdate, "Add missing and remove obsolete address records"),
		newModeCommand(f, reconcile.ModeClear, "Remove every address record of current fleet devices"),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "fleet-dns-sync version: %s\n", version)
			},
		},
	)
	return root
}

func newModeCommand(f *flags, mode reconcile.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger.Configure(cfg.Log.Level, cfg.Log.Env, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, mode)
		},
	}
}

// loadConfig layers flags that were set explicitly over the file and
// environment configuration.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("fleet_auth_token") {
		cfg.Fleet.Token = f.fleetAuthToken
	}
	if changed("dns_auth_token") {
		cfg.DNS.Token = f.dnsAuthToken
	}
	if changed("account_id") {
		cfg.DNS.AccountID = f.accountID
	}
	if changed("zone") {
		cfg.DNS.Zone = f.zone
	}
	if changed("sandbox") {
		cfg.DNS.Sandbox = f.sandbox
	}
	if changed("dns_provider") {
		cfg.DNS.Provider = f.dnsProvider
	}
	if changed("dry_run") {
		cfg.Reconcile.DryRun = f.dryRun
	}
	if changed("workers") {
		cfg.Reconcile.Workers = f.workers
	}
	if changed("log_level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log_format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, mode reconcile.Mode) error {
	m := metrics.New(true)
	defer pushMetrics(m, cfg.Metrics)

	httpClient := httpclient.New(cfg.HTTP.Timeout)
	src := balena.New(cfg.Fleet.URL, cfg.Fleet.Token, httpClient, m)

	dp, err := newProvider(cfg, httpClient, m)
	if err != nil {
		return err
	}

	engine := reconcile.NewEngine(src, dp, reconcile.Options{
		Zone:             provider.Zone{Account: cfg.DNS.AccountID, Name: cfg.DNS.Zone},
		Workers:          cfg.Reconcile.Workers,
		DryRun:           cfg.Reconcile.DryRun,
		ProtectedRecords: cfg.Reconcile.ProtectedRecords,
	}, m)

	_, err = engine.Run(ctx, mode)
	return err
}

func newProvider(cfg *config.Config, httper dnsimple.Httper, m *metrics.Metrics) (provider.Provider, error) {
	switch cfg.DNS.Provider {
	case config.ProviderDNSimple:
		return dnsimple.New(cfg.DNSURL(), cfg.DNS.Token, httper, m)
	case config.ProviderCloudflare:
		return cloudflare.New(cfg.DNS.Token, cfg.DNSURL(), m)
	default:
		return nil, fmt.Errorf("unknown dns provider %q", cfg.DNS.Provider)
	}
}

func pushMetrics(m *metrics.Metrics, cfg config.Metrics) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := m.Push(context.Background(), cfg.PushgatewayURL, cfg.Job); err != nil {
		slog.Warn("Failed to push metrics", "url", cfg.PushgatewayURL, "error", err)
	}
}
