package account

import "database/sql"

// NoIntroducer is the introducer identity used by accounts that nobody
// introduced. It never earns a referral and never has a record to look up.
const NoIntroducer int64 = 0

// Account is one row of the ledger.
type Account struct {
	ID            int64         `db:"id"`
	IntroducerID  sql.NullInt64 `db:"introducer_id"`
	BeneficiaryID sql.NullInt64 `db:"beneficiary_id"`
}

// Item is a validated creation request.
type Item struct {
	AccountID    int64
	IntroducerID int64
}

// HasIntroducer reports whether id names a real introducer.
func HasIntroducer(id int64) bool {
	return id != NoIntroducer
}

// ID returns a valid nullable identity.
func ID(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

// None is the absent identity.
func None() sql.NullInt64 {
	return sql.NullInt64{}
}

// Provisional returns the record as it looks right after insertion, before
// the beneficiary has been computed.
func (it Item) Provisional() Account {
	return Account{
		ID:           it.AccountID,
		IntroducerID: ID(it.IntroducerID),
	}
}

// Finalize returns the record with its computed beneficiary.
func (it Item) Finalize(beneficiary sql.NullInt64) Account {
	a := it.Provisional()
	a.BeneficiaryID = beneficiary
	return a
}

// Ptr converts a nullable identity into a pointer, nil when absent.
// Used by JSON and YAML views where null must render as null.
func Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
