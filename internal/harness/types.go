package harness

import "github.com/kPratik07/Bank-referral-system/internal/account"

// Row is one ledger record as scenarios and golden files spell it.
type Row struct {
	ID            int64  `json:"id" yaml:"id"`
	IntroducerID  *int64 `json:"introducer_id" yaml:"introducer_id"`
	BeneficiaryID *int64 `json:"beneficiary_id" yaml:"beneficiary_id"`
}

func rowOf(a account.Account) Row {
	return Row{
		ID:            a.ID,
		IntroducerID:  account.Ptr(a.IntroducerID),
		BeneficiaryID: account.Ptr(a.BeneficiaryID),
	}
}

func rowsOf(accounts []account.Account) []Row {
	rows := make([]Row, len(accounts))
	for i, a := range accounts {
		rows[i] = rowOf(a)
	}
	return rows
}

// TraceEvent records what one step produced.
type TraceEvent struct {
	Seq     int      `json:"seq"`
	Op      string   `json:"op"`
	Results []Row    `json:"results,omitempty"`
	Rules   []string `json:"rules,omitempty"`

	// Error is the error kind, ErrorIndex the failing batch item.
	Error      string `json:"error,omitempty"`
	ErrorIndex *int   `json:"error_index,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Ledger is the final listing.
	Ledger []Row `json:"ledger"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Ledger: []Row{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
