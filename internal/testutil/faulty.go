package testutil

import (
	"context"
	"database/sql"
	"sync"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// Operation names recorded by FaultyLedger.
const (
	OpInsert         = "insert"
	OpCount          = "count"
	OpGet            = "get"
	OpSetBeneficiary = "set_beneficiary"
	OpList           = "list"
	OpBegin          = "begin"
)

// FaultyLedger wraps a real store, records every call, and can fail or
// pause chosen operations. Injected faults apply inside transactions too.
//
// Thread-safety: all methods are safe for concurrent use.
type FaultyLedger struct {
	store *store.Store

	mu    sync.Mutex
	next  map[string]error
	hooks map[string]func()
	calls []string
}

// NewFaultyLedger wraps st.
func NewFaultyLedger(st *store.Store) *FaultyLedger {
	return &FaultyLedger{
		store: st,
		next:  make(map[string]error),
		hooks: make(map[string]func()),
	}
}

// FailNext makes the next call to op return err without touching the store.
func (f *FaultyLedger) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next[op] = err
}

// OnCall runs fn before every call to op.
func (f *FaultyLedger) OnCall(op string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[op] = fn
}

// Calls returns the operations issued so far, in order.
func (f *FaultyLedger) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Reset clears recorded calls.
func (f *FaultyLedger) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FaultyLedger) enter(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.hooks[op]
	err, ok := f.next[op]
	if ok {
		delete(f.next, op)
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (f *FaultyLedger) InsertProvisional(ctx context.Context, id, introducerID int64) error {
	return faultyStatements{f, f.store}.InsertProvisional(ctx, id, introducerID)
}

func (f *FaultyLedger) CountByIntroducer(ctx context.Context, introducerID int64) (int64, error) {
	return faultyStatements{f, f.store}.CountByIntroducer(ctx, introducerID)
}

func (f *FaultyLedger) GetAccount(ctx context.Context, id int64) (account.Account, error) {
	return faultyStatements{f, f.store}.GetAccount(ctx, id)
}

func (f *FaultyLedger) SetBeneficiary(ctx context.Context, id int64, beneficiary sql.NullInt64) error {
	return faultyStatements{f, f.store}.SetBeneficiary(ctx, id, beneficiary)
}

func (f *FaultyLedger) ListAccounts(ctx context.Context) ([]account.Account, error) {
	if err := f.enter(OpList); err != nil {
		return nil, err
	}
	return f.store.ListAccounts(ctx)
}

func (f *FaultyLedger) InTx(ctx context.Context, fn func(store.Statements) error) error {
	if err := f.enter(OpBegin); err != nil {
		return err
	}
	return f.store.InTx(ctx, func(tx store.Statements) error {
		return fn(faultyStatements{f, tx})
	})
}

// faultyStatements applies FaultyLedger's faults to any Statements.
type faultyStatements struct {
	f  *FaultyLedger
	st store.Statements
}

func (s faultyStatements) InsertProvisional(ctx context.Context, id, introducerID int64) error {
	if err := s.f.enter(OpInsert); err != nil {
		return err
	}
	return s.st.InsertProvisional(ctx, id, introducerID)
}

func (s faultyStatements) CountByIntroducer(ctx context.Context, introducerID int64) (int64, error) {
	if err := s.f.enter(OpCount); err != nil {
		return 0, err
	}
	return s.st.CountByIntroducer(ctx, introducerID)
}

func (s faultyStatements) GetAccount(ctx context.Context, id int64) (account.Account, error) {
	if err := s.f.enter(OpGet); err != nil {
		return account.Account{}, err
	}
	return s.st.GetAccount(ctx, id)
}

func (s faultyStatements) SetBeneficiary(ctx context.Context, id int64, beneficiary sql.NullInt64) error {
	if err := s.f.enter(OpSetBeneficiary); err != nil {
		return err
	}
	return s.st.SetBeneficiary(ctx, id, beneficiary)
}
