// Package dag holds the dependency graph the program assembler orders
// statements with. Nodes are string IDs; an edge from a to b means b depends
// on a. Sort returns a deterministic topological order: among nodes whose
// dependencies are already placed, the lowest rank goes first, then the
// earliest added.
package dag
