// Package electionindexer maintains the ordered notification feed read model
// inside the election-core context. It consumes ledger events from the bus
// with exactly-once semantics and serves them to indexers and UIs, so
// downstream consumers subscribe instead of polling ledger state.
package electionindexer
