// Package models defines the core domain models for the recital planner.
//
// # Models
//
//   - User: a registered singer or administrator
//   - Song: an entry in the shared song catalog
//   - Recital: a performance event owned by one user
//   - RecitalSong: one song's placement within a recital's program
//
// # Design Principles
//
//  1. Relationships are expressed with ID strings, never pointers.
//  2. A recital's program is an explicit join row carrying an integer order,
//     so ordering never depends on how the store returns rows.
//  3. Optional columns are plain zero values in Go; the storage layer maps
//     them to NULL.
package models
