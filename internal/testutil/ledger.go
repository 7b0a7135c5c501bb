// Package testutil provides ledger fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// NewLedger opens a fresh in-memory sqlite ledger closed at test cleanup.
func NewLedger(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open in-memory ledger: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// Seed writes finalized accounts directly, bypassing the referral rule.
// Use it to build ancestor chains whose beneficiaries a test controls.
func Seed(t testing.TB, st store.Statements, accounts ...account.Account) {
	t.Helper()
	ctx := context.Background()
	for _, a := range accounts {
		if err := st.InsertProvisional(ctx, a.ID, a.IntroducerID.Int64); err != nil {
			t.Fatalf("seed account %d: %v", a.ID, err)
		}
		if err := st.SetBeneficiary(ctx, a.ID, a.BeneficiaryID); err != nil {
			t.Fatalf("seed account %d: %v", a.ID, err)
		}
	}
}

// IDs returns the ids of accounts in order.
func IDs(accounts []account.Account) []int64 {
	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}

// Beneficiaries returns the beneficiaries of accounts in order, nil for none.
func Beneficiaries(accounts []account.Account) []*int64 {
	out := make([]*int64, len(accounts))
	for i, a := range accounts {
		out[i] = account.Ptr(a.BeneficiaryID)
	}
	return out
}

// Int64 returns a pointer to v, for building expected beneficiary lists.
func Int64(v int64) *int64 {
	return &v
}
