// Package referral assigns beneficiaries to newly created accounts and
// orchestrates their creation against the ledger.
//
// THE RULE (Assign):
//
// Given the introducer of a new account, after the new account has been
// inserted:
//  1. count = accounts whose introducer is the introducer (includes the new one)
//  2. odd count  -> the introducer is the beneficiary
//  3. even count -> the beneficiary of the introducer's own introducer, one
//     hop only; none if any link in that hop is missing
//
// Introducer 0 means "no introducer" and never benefits.
//
// CREATION PIPELINE:
//
// Every creation runs the same ordered steps against a store.Statements:
//
//	insert (provisional) -> assign -> finalize (write beneficiary)
//
// The first failing step stops the pipeline. CreateAccount runs the steps as
// independent autocommit statements. CreateAccountsBulk runs every item's
// steps inside one transaction, in input order, so item n sees items 1..n-1;
// any failure rolls the whole batch back.
//
// KNOWN LIMITATION:
//
// The single-item path has no surrounding transaction. Two concurrent
// creations that share an introducer can both insert before either counts,
// so both observe the same parity. Batches are immune within themselves but
// not against concurrent writers unless the store serializes transactions.
// Beneficiaries are never recomputed after creation.
package referral
