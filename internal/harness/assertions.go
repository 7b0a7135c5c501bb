package harness

import (
	"fmt"
	"strings"

	"github.com/kPratik07/Bank-referral-system/internal/account"
)

// Fields that account assertions may check.
const (
	fieldIntroducer  = "introducer_id"
	fieldBeneficiary = "beneficiary_id"
)

// AssertionError is returned when an assertion fails.
// It includes the final ledger to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Ledger   []Row  // Final ledger for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nLedger:\n")
	for _, row := range e.Ledger {
		fmt.Fprintf(&buf, "  %d introducer=%s beneficiary=%s\n", row.ID, formatID(row.IntroducerID), formatID(row.BeneficiaryID))
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the final ledger and
// returns the failure messages.
func EvaluateAssertions(ledger []Row, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertAccount:
			err = assertAccount(ledger, a)
		case AssertAbsent:
			err = assertAbsent(ledger, a)
		case AssertLedgerSize:
			err = assertLedgerSize(ledger, a)
		case AssertLedgerIDs:
			err = assertLedgerIDs(ledger, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func findRow(ledger []Row, id int64) (Row, bool) {
	for _, row := range ledger {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

// assertAccount checks that the account exists and its fields match
// (subset semantics - only fields in Expect are checked).
func assertAccount(ledger []Row, a Assertion) error {
	row, ok := findRow(ledger, a.ID)
	if !ok {
		return &AssertionError{
			Type:     AssertAccount,
			Expected: fmt.Sprintf("account %d", a.ID),
			Actual:   "not found",
			Ledger:   ledger,
		}
	}

	actual := map[string]*int64{
		fieldIntroducer:  row.IntroducerID,
		fieldBeneficiary: row.BeneficiaryID,
	}
	for key, expectedValue := range a.Expect {
		want, err := expectedID(expectedValue)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if !equalID(want, actual[key]) {
			return &AssertionError{
				Type:     AssertAccount,
				Expected: fmt.Sprintf("account %d %s = %s", a.ID, key, formatID(want)),
				Actual:   fmt.Sprintf("account %d %s = %s", a.ID, key, formatID(actual[key])),
				Ledger:   ledger,
			}
		}
	}
	return nil
}

func assertAbsent(ledger []Row, a Assertion) error {
	if _, ok := findRow(ledger, a.ID); ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("no account %d", a.ID),
			Actual:   "account present",
			Ledger:   ledger,
		}
	}
	return nil
}

func assertLedgerSize(ledger []Row, a Assertion) error {
	if len(ledger) != a.Count {
		return &AssertionError{
			Type:     AssertLedgerSize,
			Expected: fmt.Sprintf("%d accounts", a.Count),
			Actual:   fmt.Sprintf("%d accounts", len(ledger)),
			Ledger:   ledger,
		}
	}
	return nil
}

func assertLedgerIDs(ledger []Row, a Assertion) error {
	got := make([]int64, len(ledger))
	for i, row := range ledger {
		got[i] = row.ID
	}

	match := len(got) == len(a.IDs)
	for i := 0; match && i < len(got); i++ {
		match = got[i] == a.IDs[i]
	}
	if !match {
		return &AssertionError{
			Type:     AssertLedgerIDs,
			Expected: fmt.Sprintf("ids %v", a.IDs),
			Actual:   fmt.Sprintf("ids %v", got),
			Ledger:   ledger,
		}
	}
	return nil
}

// expectedID converts a YAML value (null or integer) to an optional id.
func expectedID(v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	id, err := account.ParseID(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
