// Package account defines the ledger record shared by the store, the referral
// orchestrator, and the outer surfaces (HTTP, CLI, scenario harness).
//
// This package contains types and input parsing only. It imports nothing
// internal, so every other package can depend on it without cycles.
//
// Key constraints:
//   - Identities are int64; no float ids survive parsing
//   - BeneficiaryID is nullable and set exactly once, at creation
//   - IntroducerID 0 means "no introducer"
package account
