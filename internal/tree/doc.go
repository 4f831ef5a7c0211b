// Package tree maintains the live widget tree: an arena of nodes keyed by
// widget id, with ordered child sequences, weak parent back-links, and
// top-down style reapplication.
//
// Structural mutation happens two ways: full replacement (SetChildren) and
// incremental edit scripts (UpdateChildren) applied with a single forward
// cursor. Parent links are recomputed top-down on every structural change
// and never propagate into subtrees that are not yet reachable from the
// root.
package tree
