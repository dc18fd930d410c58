// Package phylodm computes phylogenetic distance matrices (PDMs) from
// rooted trees.
//
// A PDM gives, for every pair of taxa at the tips of a tree, either the
// patristic distance (the sum of edge weights along the path between them)
// or the node distance (the number of edges along that path). Construction
// walks the tree once, bottom-up, merging each node's descendant leaf sets
// pairwise rather than re-walking the tree for every leaf pair.
//
// The package is organised around a handful of small, composable pieces:
// IndexTable assigns taxa to dense integer indices, TriangularStore packs a
// symmetric matrix's upper triangle into a flat slice, SymMat joins the two,
// TreeModel is the tree arena PDMs are built from, and Builder runs the
// distance algorithm itself. PDM, Save and Load round the result out to a
// result type (read-only apart from RemoveKeys) and a CBOR-backed on-disk
// format.
//
// Every exported error is a *Error carrying a Kind, so callers can branch on
// failure mode with errors.As without string matching.
package phylodm
