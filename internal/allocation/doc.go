// Package allocation implements the item-assignment and cost-allocation
// engine: who is on a bill, which items they share, how tip and tax
// pools spread across items by price weight, and the per-person totals
// and reconciliation signal derived from all of that.
//
// Every operation is a synchronous, pure function of the bill it is
// handed. The engine performs no I/O, holds no locks, and never merges
// concurrent edits; devices coordinate through the persistence layer
// and re-invoke the engine on each fresh snapshot. Mutating operations
// validate fully before touching the bill, so a returned error always
// means the bill is unchanged.
package allocation
