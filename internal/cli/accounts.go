package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/referral"
)

// Error codes reported in CLI responses.
const (
	ErrCodeValidation   = "E_VALIDATION"
	ErrCodeConflict     = "E_CONFLICT"
	ErrCodeStorage      = "E_STORAGE"
	ErrCodeInvalidBatch = "E_INVALID_BATCH"
	ErrCodeNotFound     = "E_NOT_FOUND"
)

// AccountView is the CLI rendering of an account.
type AccountView struct {
	ID            int64  `json:"id"`
	IntroducerID  *int64 `json:"introducer_id"`
	BeneficiaryID *int64 `json:"beneficiary_id"`
}

func viewOf(a account.Account) AccountView {
	return AccountView{
		ID:            a.ID,
		IntroducerID:  account.Ptr(a.IntroducerID),
		BeneficiaryID: account.Ptr(a.BeneficiaryID),
	}
}

func viewsOf(accounts []account.Account) []AccountView {
	views := make([]AccountView, len(accounts))
	for i, a := range accounts {
		views[i] = viewOf(a)
	}
	return views
}

func formatNullable(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <account-id> <introducer-id>",
		Short: "Create one account",
		Long: `Create one account and assign its beneficiary.

Use introducer id 0 for an account nobody introduced.

Examples:
  referral create 2 1
  referral create 1 0 --db ./referral.db --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runCreate(opts *RootOptions, accountID, introducerID string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts, cmd)

	st, cfg, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := referral.NewService(st, referral.WithLogger(opts.Logger(formatter.GetErrWriter(), cfg)))
	created, err := svc.CreateAccount(ctx, account.RawItem{AccountID: accountID, IntroducerID: introducerID})
	if err != nil {
		return outputServiceError(formatter, err)
	}

	view := viewOf(created)
	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	fmt.Fprintf(formatter.Writer, "✓ Created account %d (introducer %s, beneficiary %s)\n",
		view.ID, formatNullable(view.IntroducerID), formatNullable(view.BeneficiaryID))
	return nil
}

// BulkResult is the data payload of the bulk command.
type BulkResult struct {
	Results []AccountView `json:"results"`
}

// NewBulkCommand creates the bulk command.
func NewBulkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <batch-file>",
		Short: "Create a batch of accounts atomically",
		Long: `Create every account in a JSON or YAML batch file in one transaction.

The file holds a list of {account_id, introducer_id} items. Items are
created in order, each seeing the ones before it. If any item fails,
nothing is written.

Examples:
  referral bulk ./batch.json
  referral bulk ./batch.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(rootOpts, args[0], cmd)
		},
	}
}

func runBulk(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts, cmd)

	items, err := LoadBatch(path)
	if err != nil {
		return outputBatchLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d item(s) from %s", len(items), path)

	st, cfg, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := referral.NewService(st, referral.WithLogger(opts.Logger(formatter.GetErrWriter(), cfg)))
	created, err := svc.CreateAccountsBulk(ctx, items)
	if err != nil {
		return outputServiceError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(BulkResult{Results: viewsOf(created)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Created %d account(s)\n", len(created))
	return writeAccountTable(formatter, viewsOf(created))
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the ledger ordered by account id",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts, cmd)

	st, cfg, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := referral.NewService(st, referral.WithLogger(opts.Logger(formatter.GetErrWriter(), cfg)))
	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		return outputServiceError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(viewsOf(accounts))
	}
	if len(accounts) == 0 {
		fmt.Fprintln(formatter.Writer, "No accounts.")
		return nil
	}
	return writeAccountTable(formatter, viewsOf(accounts))
}

func writeAccountTable(formatter *OutputFormatter, views []AccountView) error {
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINTRODUCER\tBENEFICIARY")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", v.ID, formatNullable(v.IntroducerID), formatNullable(v.BeneficiaryID))
	}
	return tw.Flush()
}

// outputServiceError reports a referral.Error and maps it to an exit code.
// Rejections (validation, conflict) exit 1; storage failures exit 2.
func outputServiceError(formatter *OutputFormatter, err error) error {
	var re *referral.Error
	if !errors.As(err, &re) {
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unexpected error", err)
	}

	var details any
	if re.Index != referral.NoIndex {
		details = map[string]int{"index": re.Index}
	}

	switch re.Kind {
	case referral.KindValidation:
		_ = formatter.Error(ErrCodeValidation, re.Message, details)
		return NewExitError(ExitFailure, re.Error())
	case referral.KindConflict:
		_ = formatter.Error(ErrCodeConflict, re.Message, details)
		return NewExitError(ExitFailure, re.Error())
	default:
		_ = formatter.Error(ErrCodeStorage, re.Message, details)
		return WrapExitError(ExitCommandError, re.Message, re.Err)
	}
}
