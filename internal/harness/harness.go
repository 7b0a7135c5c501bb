package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/referral"
	"github.com/kPratik07/Bank-referral-system/internal/store"
	"github.com/kPratik07/Bank-referral-system/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	store    *store.Store
	service  *referral.Service
	recorder *testutil.Recorder
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database
//  2. Write setup rows
//  3. Execute steps, checking expect clauses
//  4. List the ledger and evaluate assertions
//
// The returned error reports harness failures (setup, listing); scenario
// failures are reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(ctx, store.Options{Driver: store.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios
	recorder := &testutil.Recorder{}
	h := &Harness{
		store:    st,
		service:  referral.NewService(st, referral.WithLogger(logger), referral.WithRecorder(recorder)),
		recorder: recorder,
		logger:   logger,
	}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	accounts, err := h.service.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	result.Ledger = rowsOf(accounts)

	for _, msg := range EvaluateAssertions(result.Ledger, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeSetup writes setup rows directly, bypassing the referral rule.
func (h *Harness) executeSetup(ctx context.Context, rows []Row) error {
	return h.store.InTx(ctx, func(tx store.Statements) error {
		for i, row := range rows {
			introducer := account.NoIntroducer
			if row.IntroducerID != nil {
				introducer = *row.IntroducerID
			}
			if err := tx.InsertProvisional(ctx, row.ID, introducer); err != nil {
				return fmt.Errorf("setup[%d]: %w", i, err)
			}

			beneficiary := account.None()
			if row.BeneficiaryID != nil {
				beneficiary = account.ID(*row.BeneficiaryID)
			}
			if err := tx.SetBeneficiary(ctx, row.ID, beneficiary); err != nil {
				return fmt.Errorf("setup[%d]: %w", i, err)
			}
		}
		return nil
	})
}

// executeStep runs one step, appends its trace event, and checks its expect clause.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	before := len(h.recorder.Created())

	var (
		created []account.Account
		err     error
	)
	switch step.Op {
	case OpCreate:
		var a account.Account
		a, err = h.service.CreateAccount(ctx, step.Items[0])
		if err == nil {
			created = []account.Account{a}
		}
	case OpBulk:
		created, err = h.service.CreateAccountsBulk(ctx, step.Items)
	}

	event := TraceEvent{Seq: index + 1, Op: step.Op}
	if err == nil {
		event.Results = rowsOf(created)
		for _, label := range h.recorder.Created()[before:] {
			_, rule, _ := strings.Cut(label, "/")
			event.Rules = append(event.Rules, rule)
		}
	} else {
		var re *referral.Error
		if errors.As(err, &re) {
			event.Error = string(re.Kind)
			if re.Index != referral.NoIndex {
				idx := re.Index
				event.ErrorIndex = &idx
			}
		} else {
			event.Error = err.Error()
		}
		h.logger.Debug("step failed", "step", index, "error", err)
	}
	result.Trace = append(result.Trace, event)

	for _, msg := range checkExpect(index, step, event) {
		result.AddError(msg)
	}
}

// checkExpect compares a step's trace event with its expect clause.
func checkExpect(index int, step Step, event TraceEvent) []string {
	want := step.Expect
	if want == nil {
		want = &ExpectClause{}
	}

	if event.Error != want.Error {
		if want.Error == "" {
			return []string{fmt.Sprintf("steps[%d]: expected success, got %s error", index, event.Error)}
		}
		if event.Error == "" {
			return []string{fmt.Sprintf("steps[%d]: expected %s error, got success", index, want.Error)}
		}
		return []string{fmt.Sprintf("steps[%d]: expected %s error, got %s error", index, want.Error, event.Error)}
	}

	var errs []string
	for i, b := range want.Beneficiaries {
		if i >= len(event.Results) {
			errs = append(errs, fmt.Sprintf("steps[%d]: expected %d results, got %d", index, len(want.Beneficiaries), len(event.Results)))
			break
		}
		got := event.Results[i].BeneficiaryID
		if !equalID(b, got) {
			errs = append(errs, fmt.Sprintf("steps[%d].items[%d]: expected beneficiary %s, got %s",
				index, i, formatID(b), formatID(got)))
		}
	}
	return errs
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatID(v *int64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *v)
}
