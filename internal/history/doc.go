// Package history persists finished pre-print sessions in SQLite.
//
// Each row keeps the decision, the ordered messages, and the per-check
// results so `spoolcheck history` and the HTTP API can explain why a print
// was held. The store is append-only apart from age-based pruning.
package history
