package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/referral"
)

// Scenario defines a ledger scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup rows are written as-is before the steps run.
	Setup []Row `yaml:"setup,omitempty"`

	// Steps run in order against the ledger.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final ledger.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpCreate = "create"
	OpBulk   = "bulk"
)

// Step is one creation request.
type Step struct {
	// Op is OpCreate or OpBulk.
	Op string `yaml:"op"`

	// Items are the raw requests. OpCreate takes exactly one.
	// OpBulk may take none, to exercise the empty-batch error.
	Items []account.RawItem `yaml:"items"`

	// Expect is optional; without it the step only has to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error kind. Empty means success.
	Error string `yaml:"error,omitempty"`

	// Beneficiaries are the expected beneficiaries in item order, null for none.
	// Omit to skip the check.
	Beneficiaries []*int64 `yaml:"beneficiaries,omitempty"`
}

// Assertion validates the final ledger.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// ID is the account checked by account and absent.
	ID int64 `yaml:"id,omitempty"`

	// Expect holds field values for account. Subset match; null means none.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected size for ledger_size.
	Count int `yaml:"count,omitempty"`

	// IDs is the expected listing order for ledger_ids.
	IDs []int64 `yaml:"ids,omitempty"`
}

// Assertion type constants.
const (
	AssertAccount    = "account"
	AssertAbsent     = "absent"
	AssertLedgerSize = "ledger_size"
	AssertLedgerIDs  = "ledger_ids"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[int64]bool, len(s.Setup))
	for i, row := range s.Setup {
		if seen[row.ID] {
			return fmt.Errorf("setup[%d]: duplicate id %d", i, row.ID)
		}
		seen[row.ID] = true
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpCreate:
			if len(step.Items) != 1 {
				return fmt.Errorf("steps[%d]: create takes exactly one item, got %d", i, len(step.Items))
			}
		case OpBulk:
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}

		if step.Expect == nil {
			continue
		}
		switch referral.Kind(step.Expect.Error) {
		case "", referral.KindValidation, referral.KindConflict, referral.KindStorage:
		default:
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", i, step.Expect.Error)
		}
		if step.Expect.Error != "" && step.Expect.Beneficiaries != nil {
			return fmt.Errorf("steps[%d].expect: beneficiaries cannot be combined with error", i)
		}
		if step.Expect.Beneficiaries != nil && len(step.Expect.Beneficiaries) != len(step.Items) {
			return fmt.Errorf("steps[%d].expect: %d beneficiaries for %d items", i, len(step.Expect.Beneficiaries), len(step.Items))
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertAccount:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for account", index)
		}
		for key := range a.Expect {
			if key != fieldIntroducer && key != fieldBeneficiary {
				return fmt.Errorf("assertions[%d]: unknown field %q (want %s or %s)", index, key, fieldIntroducer, fieldBeneficiary)
			}
		}
	case AssertAbsent:
	case AssertLedgerSize:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for ledger_size", index)
		}
	case AssertLedgerIDs:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids list is required for ledger_ids", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
