// Package electionledger implements the single-election voting ledger inside
// the election-core context.
//
// The module owns the session/candidate state machine and its vote-integrity
// rules: session lifecycle (create, active, ended), permanent one-vote-ever
// enforcement that survives session resets, authorization gating, the
// inclusive voting window, and first-past-the-post leader computation. It
// keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package electionledger
