package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/cobra"
)

// batchSchema is the shape every batch file must have.
const batchSchema = `
#Item: {
	account_id:    int
	introducer_id: int
}

#Batch: [#Item, ...#Item]
`

// ValidationError is one problem found in a batch file.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Items  int               `json:"items"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <batch-file>",
		Short: "Validate a batch file without touching the ledger",
		Long: `Validate a JSON or YAML batch file before submitting it with bulk.

Checks that the file is a non-empty list of {account_id, introducer_id}
items with integer values and no other fields, and that no account id
appears twice.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, err := loadBatchDocument(path)
	if err != nil {
		return outputBatchLoadError(formatter, err)
	}

	items, errs := ValidateBatch(doc)
	formatter.VerboseLog("Checked %d item(s) in %s", items, path)

	if len(errs) > 0 {
		return outputValidationErrors(formatter, items, errs)
	}
	return outputValidateSuccess(formatter, items)
}

// ValidateBatch checks a decoded batch document against the batch schema
// and for duplicate account ids. It returns the number of items and the
// problems found.
func ValidateBatch(doc any) (int, []ValidationError) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(batchSchema).LookupPath(cue.ParsePath("#Batch"))
	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return 0, []ValidationError{{Message: err.Error(), Code: ErrCodeInvalidBatch}}
	}

	items := 0
	if list, ok := doc.([]any); ok {
		items = len(list)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		var errs []ValidationError
		for _, e := range cueerrors.Errors(err) {
			errs = append(errs, ValidationError{
				Path:    strings.Join(e.Path(), "."),
				Message: cueMessage(e),
				Code:    ErrCodeInvalidBatch,
			})
		}
		return items, errs
	}

	return items, duplicateIDs(doc.([]any))
}

func cueMessage(e cueerrors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}

// duplicateIDs reports account ids used by more than one item.
// Only called on documents that passed the schema.
func duplicateIDs(list []any) []ValidationError {
	var errs []ValidationError
	first := make(map[string]int, len(list))
	for i, raw := range list {
		id := fmt.Sprint(raw.(map[string]any)["account_id"])
		if j, ok := first[id]; ok {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("%d.account_id", i),
				Message: fmt.Sprintf("account %s duplicates item %d", id, j),
				Code:    ErrCodeValidation,
			})
			continue
		}
		first[id] = i
	}
	return errs
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, items int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Items: items})
	}

	fmt.Fprintf(formatter.Writer, "✓ Batch valid (%d item(s))\n", items)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, items int, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Items: items, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Path != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", err.Path)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
