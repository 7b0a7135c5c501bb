package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kPratik07/Bank-referral-system/internal/config"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Driver and Database override REFERRAL_DB_DRIVER and REFERRAL_DB_DSN.
	Driver   string
	Database string

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the referral CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "referral",
		Short: "Referral ledger",
		Long: `Record accounts introduced into a referral network.

Each new account is assigned a beneficiary when it is created: odd referrals
of an introducer benefit the introducer, even ones inherit the beneficiary of
the introducer's own introducer.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "ledger driver (sqlite3|postgres), overrides REFERRAL_DB_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "ledger DSN, overrides REFERRAL_DB_DSN")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewBulkCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Config loads the environment configuration once and applies flag overrides.
func (o *RootOptions) Config() (config.Config, error) {
	if o.cfg != nil {
		return *o.cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.Driver != "" {
		cfg.DBDriver = o.Driver
	}
	if o.Database != "" {
		cfg.DBDSN = o.Database
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	o.cfg = &cfg
	return cfg, nil
}

// Logger returns a text logger on w. --verbose forces debug level;
// otherwise REFERRAL_LOG_LEVEL applies.
func (o *RootOptions) Logger(w io.Writer, cfg config.Config) *slog.Logger {
	level := cfg.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured ledger.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, config.Config, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	return st, cfg, nil
}

// commandContext returns the command's context, or Background when run
// outside Execute (some tests call RunE directly).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
