// Package harness runs YAML account-creation scenarios against a fresh
// ledger and checks the outcome.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:                      # optional rows written directly, no rule applied
//	  - { id: 5, introducer_id: 0, beneficiary_id: null }
//	steps:
//	  - op: create              # exactly one item
//	    items:
//	      - { account_id: 1, introducer_id: 5 }
//	    expect:
//	      beneficiaries: [5]
//	  - op: bulk                # one transaction
//	    items:
//	      - { account_id: 2, introducer_id: 1 }
//	      - { account_id: 2, introducer_id: 1 }
//	    expect:
//	      error: conflict
//	assertions:
//	  - type: account
//	    id: 1
//	    expect: { beneficiary_id: 5 }
//	  - type: absent
//	    id: 2
//	  - type: ledger_ids
//	    ids: [1, 5]
//
// # Assertion Types
//
//   - account: the account exists and its fields match expect (subset)
//   - absent: no account has the id
//   - ledger_size: the ledger holds exactly count accounts
//   - ledger_ids: listing returns exactly ids, in order
//
// # Determinism
//
// Every scenario runs on its own in-memory SQLite ledger, so the trace and
// final ledger are reproducible and can be compared against golden files.
package harness
