// Package dwarftree builds a browsable tree of program entities from the
// DWARF debug info of a firmware image.
//
// The build runs in two phases. The walk reads each compilation unit's
// entries into a raw tree with correct nesting and an offset index for
// intra-unit references. The build then converts that tree into Symbols,
// keeping only functions, variables, parameters, blocks, inlined calls,
// aggregate types, members, enumerators, typedefs and namespaces.
//
// Node IDs come from a single arena shared by all units: every node is
// appended to a flat store and takes the store's length as its ID, so IDs
// are dense, unique and assigned in pre-order. Two builds of the same bytes
// produce the same IDs.
//
// Children at every level are ordered functions first, then variables,
// aggregate types, typedefs, namespaces and the rest; within a category by
// address, then by name.
//
// Every attribute of a kept entry is recorded as text, so the tree can show
// a full detail view without going back to the raw debug data.
package dwarftree
