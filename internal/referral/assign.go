package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// View is the read access Assign needs. Both *store.Store and *store.Tx
// satisfy it, so Assign sees uncommitted batch items when run inside a Tx.
type View interface {
	CountByIntroducer(ctx context.Context, introducerID int64) (int64, error)
	GetAccount(ctx context.Context, id int64) (account.Account, error)
}

// Rule names which branch of the rule produced an Assignment.
type Rule string

const (
	// RuleIntroducer: odd referral count, the introducer benefits.
	RuleIntroducer Rule = "introducer"

	// RuleInherited: even count, the introducer's introducer's beneficiary
	// benefits (possibly none, if that record has none).
	RuleInherited Rule = "inherited"

	// RuleNone: no introducer, or a link in the one-hop lookup is missing.
	RuleNone Rule = "none"
)

// Assignment is the outcome of Assign.
type Assignment struct {
	Beneficiary sql.NullInt64
	Rule        Rule

	// Count is the referral count the rule was evaluated against.
	Count int64
}

// Assign computes the beneficiary for a new account introduced by
// introducerID. The new account must already be visible through view.
//
// The lookup is exactly one hop: introducer -> introducer's introducer ->
// that record's beneficiary. It never walks further up the chain.
func Assign(ctx context.Context, introducerID int64, view View) (Assignment, error) {
	if !account.HasIntroducer(introducerID) {
		return Assignment{Rule: RuleNone}, nil
	}

	count, err := view.CountByIntroducer(ctx, introducerID)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign: %w", err)
	}

	if count%2 == 1 {
		return Assignment{Beneficiary: account.ID(introducerID), Rule: RuleIntroducer, Count: count}, nil
	}

	none := Assignment{Rule: RuleNone, Count: count}

	introducer, found, err := lookup(ctx, view, introducerID)
	if err != nil || !found {
		return none, err
	}

	if !introducer.IntroducerID.Valid || !account.HasIntroducer(introducer.IntroducerID.Int64) {
		return none, nil
	}

	grand, found, err := lookup(ctx, view, introducer.IntroducerID.Int64)
	if err != nil || !found {
		return none, err
	}

	return Assignment{Beneficiary: grand.BeneficiaryID, Rule: RuleInherited, Count: count}, nil
}

// lookup treats store.ErrNotFound as a normal outcome.
func lookup(ctx context.Context, view View, id int64) (account.Account, bool, error) {
	a, err := view.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return account.Account{}, false, nil
	}
	if err != nil {
		return account.Account{}, false, fmt.Errorf("assign: %w", err)
	}
	return a, true, nil
}
