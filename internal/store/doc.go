// Package store provides the durable account ledger.
//
// The ledger is a single append-oriented table:
//   - accounts(id PRIMARY KEY, introducer_id, beneficiary_id)
//
// Rows are inserted provisional (beneficiary_id NULL) and finalized by one
// UPDATE right after. Nothing else in this package mutates a row.
//
// # Drivers
//
//   - sqlite3 (default): github.com/mattn/go-sqlite3, WAL mode, one open
//     connection, schema versioned through PRAGMA user_version
//   - postgres: github.com/lib/pq, schema applied with IF NOT EXISTS
//
// Queries are written with ? placeholders and rebound per driver by sqlx.
//
// # Statements vs transactions
//
// The same statement set (InsertProvisional, CountByIntroducer, GetAccount,
// SetBeneficiary) is available on *Store, where each call autocommits, and
// on *Tx, where calls share one unit of work. InTx runs a function against a
// *Tx and commits only if it returns nil.
//
// # Ordering
//
// ListAccounts always returns ORDER BY id ASC so repeated reads with no
// intervening writes are identical.
package store
