// Package models defines the core domain records for Divvit.
//
// # Models
//
//   - Bill: a receipt being split, with items, assignments and participants
//   - Participant: a person on a bill (registered user or ad-hoc guest)
//   - Item: a single billed line item
//   - Settlement: the frozen snapshot produced when a bill is closed
//   - User: a registered account (authentication)
//
// Assignments are stored as a map from item ID to the list of participant
// IDs sharing that item. An item with nobody assigned has no entry in the
// map; an empty assignee list is never stored. This keeps every downstream
// per-item division safe from empty sets.
//
// # Design Principles
//
//  1. Plain data: models carry no behavior beyond small lookup helpers.
//     All allocation math lives in the allocation package.
//  2. Avoid circular references: relationships use ID strings, not pointers.
//  3. Snapshots: the storage layer reads and writes whole denormalized
//     bills; devices coordinate through the store, never through shared
//     memory (last-writer-wins per save).
package models
