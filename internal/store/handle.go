package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/kPratik07/Bank-referral-system/internal/account"
)

// Handle is the process-wide ledger connection. It opens the Store on first
// use and can be torn down with Close; a later call reopens it.
//
// Handle satisfies the same statement contract as *Store, so callers can hold
// a Handle without caring whether the connection exists yet.
//
// Thread-safety: all methods are safe for concurrent use.
type Handle struct {
	opts Options
	open func(context.Context, Options) (*Store, error)

	mu    sync.Mutex
	store *Store
}

var _ Statements = (*Handle)(nil)

// NewHandle returns an unopened handle for opts.
func NewHandle(opts Options) *Handle {
	return &Handle{opts: opts, open: Open}
}

// Store returns the open Store, opening it if needed.
func (h *Handle) Store(ctx context.Context) (*Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store != nil {
		return h.store, nil
	}

	st, err := h.open(ctx, h.opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	h.store = st
	return st, nil
}

// Opened reports whether the underlying Store is currently open.
func (h *Handle) Opened() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store != nil
}

// Close tears down the connection if it was opened.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store = nil
	return err
}

// Ping opens the ledger if needed and verifies it is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	st, err := h.Store(ctx)
	if err != nil {
		return err
	}
	return st.Ping(ctx)
}

// InsertProvisional implements Statements.
func (h *Handle) InsertProvisional(ctx context.Context, id, introducerID int64) error {
	st, err := h.Store(ctx)
	if err != nil {
		return err
	}
	return st.InsertProvisional(ctx, id, introducerID)
}

// CountByIntroducer implements Statements.
func (h *Handle) CountByIntroducer(ctx context.Context, introducerID int64) (int64, error) {
	st, err := h.Store(ctx)
	if err != nil {
		return 0, err
	}
	return st.CountByIntroducer(ctx, introducerID)
}

// GetAccount implements Statements.
func (h *Handle) GetAccount(ctx context.Context, id int64) (account.Account, error) {
	st, err := h.Store(ctx)
	if err != nil {
		return account.Account{}, err
	}
	return st.GetAccount(ctx, id)
}

// SetBeneficiary implements Statements.
func (h *Handle) SetBeneficiary(ctx context.Context, id int64, beneficiary sql.NullInt64) error {
	st, err := h.Store(ctx)
	if err != nil {
		return err
	}
	return st.SetBeneficiary(ctx, id, beneficiary)
}

// ListAccounts returns every account ordered by id.
func (h *Handle) ListAccounts(ctx context.Context) ([]account.Account, error) {
	st, err := h.Store(ctx)
	if err != nil {
		return nil, err
	}
	return st.ListAccounts(ctx)
}

// InTx runs fn in a transaction on the underlying Store.
func (h *Handle) InTx(ctx context.Context, fn func(Statements) error) error {
	st, err := h.Store(ctx)
	if err != nil {
		return err
	}
	return st.InTx(ctx, fn)
}
