package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kPratik07/Bank-referral-system/internal/account"
)

// Statements is the per-statement ledger contract shared by *Store and *Tx.
type Statements interface {
	InsertProvisional(ctx context.Context, id, introducerID int64) error
	CountByIntroducer(ctx context.Context, introducerID int64) (int64, error)
	GetAccount(ctx context.Context, id int64) (account.Account, error)
	SetBeneficiary(ctx context.Context, id int64, beneficiary sql.NullInt64) error
}

var (
	_ Statements = (*Store)(nil)
	_ Statements = (*Tx)(nil)
)

// statements runs ledger queries against either a *sqlx.DB or a *sqlx.Tx.
type statements struct {
	q sqlx.ExtContext
}

// InsertProvisional inserts a new account with no beneficiary.
// Returns ErrDuplicateID if the id is taken; the ledger is left unchanged.
func (s statements) InsertProvisional(ctx context.Context, id, introducerID int64) error {
	_, err := s.q.ExecContext(ctx, s.q.Rebind(`
		INSERT INTO accounts (id, introducer_id, beneficiary_id)
		VALUES (?, ?, NULL)
	`), id, introducerID)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("insert account %d: %w", id, ErrDuplicateID)
		}
		return fmt.Errorf("insert account %d: %w", id, err)
	}
	return nil
}

// CountByIntroducer returns how many accounts name introducerID as their introducer.
func (s statements) CountByIntroducer(ctx context.Context, introducerID int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, s.q, &n, s.q.Rebind(`
		SELECT COUNT(*) FROM accounts WHERE introducer_id = ?
	`), introducerID)
	if err != nil {
		return 0, fmt.Errorf("count referrals of %d: %w", introducerID, err)
	}
	return n, nil
}

// GetAccount retrieves a single account by id.
// Returns ErrNotFound if no such account exists.
func (s statements) GetAccount(ctx context.Context, id int64) (account.Account, error) {
	var a account.Account
	err := sqlx.GetContext(ctx, s.q, &a, s.q.Rebind(`
		SELECT id, introducer_id, beneficiary_id
		FROM accounts
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, fmt.Errorf("get account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return account.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

// SetBeneficiary writes the computed beneficiary onto an account.
// Returns ErrNotFound if the account does not exist.
func (s statements) SetBeneficiary(ctx context.Context, id int64, beneficiary sql.NullInt64) error {
	result, err := s.q.ExecContext(ctx, s.q.Rebind(`
		UPDATE accounts SET beneficiary_id = ? WHERE id = ?
	`), beneficiary, id)
	if err != nil {
		return fmt.Errorf("set beneficiary of %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set beneficiary of %d: rows affected: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("set beneficiary of %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListAccounts returns every account ordered by id.
// Returns an empty slice (not nil) if the ledger is empty.
func (s statements) ListAccounts(ctx context.Context) ([]account.Account, error) {
	var accounts []account.Account
	err := sqlx.SelectContext(ctx, s.q, &accounts, `
		SELECT id, introducer_id, beneficiary_id
		FROM accounts
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	if accounts == nil {
		accounts = []account.Account{}
	}

	return accounts, nil
}
