package phylodm

import (
	"math"
	"sort"
)

// Method selects which distance PDMBuilder computes.
type Method int

const (
	// Patristic distances sum edge weights along the leaf-leaf path.
	Patristic Method = iota
	// NodeDistance counts edges along the leaf-leaf path.
	NodeDistance
)

// String renders the method using the on-disk tag from §6 ("pd"/"node").
func (m Method) String() string {
	switch m {
	case Patristic:
		return "pd"
	case NodeDistance:
		return "node"
	default:
		return "unknown"
	}
}

// ParseMethod parses the "pd"/"node" method tag. It fails with
// UnknownMethod for any other string.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "pd":
		return Patristic, nil
	case "node":
		return NodeDistance, nil
	default:
		return 0, newErrf(UnknownMethod, "unknown method %q", s)
	}
}

// PDM is a phylogenetic distance matrix, read-only apart from RemoveKeys: a
// SymMat committed to a Method and carrying the tree's total length. Exactly one of the typed
// matrix fields is populated, chosen by Method (always f64 for Patristic;
// the narrowest unsigned integer covering the data for NodeDistance).
type PDM struct {
	method Method

	treeLengthF float64
	treeLengthU uint64

	matF   *SymMat[float64]
	matU8  *SymMat[uint8]
	matU16 *SymMat[uint16]
	matU32 *SymMat[uint32]
	matU64 *SymMat[uint64]
}

// Method reports which distance this PDM holds.
func (p *PDM) Method() Method { return p.method }

// TreeLength returns the sum of edge weights (Patristic) or the total edge
// count (NodeDistance), as a float64 for caller convenience.
func (p *PDM) TreeLength() float64 {
	if p.method == Patristic {
		return p.treeLengthF
	}
	return float64(p.treeLengthU)
}

// Indices returns the canonical taxon order.
func (p *PDM) Indices() []string {
	return p.activeIndices().Keys()
}

// ElemKind reports the committed on-disk element type: "f64", "u8", "u16",
// "u32", or "u64".
func (p *PDM) ElemKind() string {
	switch {
	case p.matF != nil:
		return "f64"
	case p.matU8 != nil:
		return "u8"
	case p.matU16 != nil:
		return "u16"
	case p.matU32 != nil:
		return "u32"
	default:
		return "u64"
	}
}

func (p *PDM) activeIndices() *IndexTable {
	switch {
	case p.matF != nil:
		return p.matF.Indices()
	case p.matU8 != nil:
		return p.matU8.Indices()
	case p.matU16 != nil:
		return p.matU16.Indices()
	case p.matU32 != nil:
		return p.matU32.Indices()
	default:
		return p.matU64.Indices()
	}
}

// Get returns the distance between taxa a and b, as a float64 regardless of
// the underlying committed element type. normalised divides by TreeLength.
func (p *PDM) Get(a, b string, normalised bool) (float64, error) {
	var v float64
	var err error
	switch {
	case p.matF != nil:
		v, err = p.matF.Get(a, b)
	case p.matU8 != nil:
		var u uint8
		u, err = p.matU8.Get(a, b)
		v = float64(u)
	case p.matU16 != nil:
		var u uint16
		u, err = p.matU16.Get(a, b)
		v = float64(u)
	case p.matU32 != nil:
		var u uint32
		u, err = p.matU32.Get(a, b)
		v = float64(u)
	default:
		var u uint64
		u, err = p.matU64.Get(a, b)
		v = float64(u)
	}
	if err != nil {
		return 0, err
	}
	if normalised {
		v /= p.TreeLength()
	}
	return v, nil
}

// Dense materialises the full symmetric matrix as float64, along with the
// labels in canonical order.
func (p *PDM) Dense() ([]string, [][]float64) {
	switch {
	case p.matF != nil:
		return p.matF.Dense()
	case p.matU8 != nil:
		return denseAsFloat(p.matU8)
	case p.matU16 != nil:
		return denseAsFloat(p.matU16)
	case p.matU32 != nil:
		return denseAsFloat(p.matU32)
	default:
		return denseAsFloat(p.matU64)
	}
}

func denseAsFloat[T Elem](m *SymMat[T]) ([]string, [][]float64) {
	labels, raw := m.Dense()
	out := make([][]float64, len(raw))
	for i, row := range raw {
		fr := make([]float64, len(row))
		for j, v := range row {
			fr[j] = float64(v)
		}
		out[i] = fr
	}
	return labels, out
}

// RemoveKeys compacts the PDM in place, keeping only rows/columns for taxa
// not in drop (§4.2's SymMat.RemoveKeys, lifted to PDM).
func (p *PDM) RemoveKeys(drop []string) error {
	switch {
	case p.matF != nil:
		return p.matF.RemoveKeys(drop)
	case p.matU8 != nil:
		return p.matU8.RemoveKeys(drop)
	case p.matU16 != nil:
		return p.matU16.RemoveKeys(drop)
	case p.matU32 != nil:
		return p.matU32.RemoveKeys(drop)
	default:
		return p.matU64.RemoveKeys(drop)
	}
}

// Equal reports whether two PDMs have the same method, tree length, element
// kind, and matrix contents.
func (p *PDM) Equal(o *PDM) bool {
	if p.method != o.method || p.ElemKind() != o.ElemKind() {
		return false
	}
	if p.method == Patristic {
		return p.treeLengthF == o.treeLengthF && p.matF.Equal(o.matF)
	}
	if p.treeLengthU != o.treeLengthU {
		return false
	}
	switch {
	case p.matU8 != nil:
		return p.matU8.Equal(o.matU8)
	case p.matU16 != nil:
		return p.matU16.Equal(o.matU16)
	case p.matU32 != nil:
		return p.matU32.Equal(o.matU32)
	default:
		return p.matU64.Equal(o.matU64)
	}
}

// Builder computes a PDM from a TreeModel. It holds no state between calls
// to Build and is safe to reuse or share.
type Builder struct{}

// NewBuilder returns a Builder.
func NewBuilder() *Builder { return &Builder{} }

// Build computes the PDM for t under method, per §4.1.
func (b *Builder) Build(t *TreeModel, method Method) (*PDM, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := checkWeights(t, method); err != nil {
		return nil, err
	}

	idx, err := collectLeavesSorted(t)
	if err != nil {
		return nil, err
	}

	if method == Patristic {
		mat, total, err := accumulate[float64](t, idx, func(n NodeID) float64 {
			w, _ := t.Weight(n)
			return w
		})
		if err != nil {
			return nil, err
		}
		return &PDM{method: method, treeLengthF: total, matF: mat}, nil
	}

	mat, total, err := accumulate[uint64](t, idx, func(NodeID) uint64 { return 1 })
	if err != nil {
		return nil, err
	}
	return compactNode(mat, total), nil
}

// checkWeights enforces MissingEdgeWeight for Patristic mode: every
// non-root node must carry a defined edge weight. NodeDistance mode never
// reads weights, so no check is needed there.
func checkWeights(t *TreeModel, method Method) error {
	if method != Patristic {
		return nil
	}
	for i := 0; i < t.NumNodes(); i++ {
		n := NodeID(i)
		if n == t.Root() {
			continue
		}
		if _, has := t.Weight(n); !has {
			return newErrf(MissingEdgeWeight, "node %d has no edge weight in patristic mode", n)
		}
	}
	return nil
}

// collectLeavesSorted walks every node, validates leaf labelling, and
// returns an IndexTable with taxa inserted in ascending lexicographic
// order, per §3's IndexTable lifecycle rule for PDM construction.
func collectLeavesSorted(t *TreeModel) (*IndexTable, error) {
	var labels []string
	for i := 0; i < t.NumNodes(); i++ {
		n := NodeID(i)
		if !t.IsLeaf(n) {
			continue
		}
		label := t.Label(n)
		if label == "" {
			return nil, newErrf(UnlabeledLeaf, "leaf node %d has no taxon label", n)
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	idx := NewIndexTable()
	for _, l := range labels {
		if _, err := idx.AddKey(l); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// accumulate runs the post-order Cartesian-merge algorithm of §4.1 over t,
// writing every leaf pair's distance into a SymMat[T] indexed by idx.
// ownEdgeWeight(n) gives the contribution of n's own parent edge (1 for
// NodeDistance, the real weight for Patristic); it is never called for the
// root.
func accumulate[T Elem](t *TreeModel, idx *IndexTable, ownEdgeWeight func(NodeID) T) (*SymMat[T], T, error) {
	var zero T
	mat := NewSymMat[T](idx, zero)
	acc := make([]accListT[T], t.NumNodes())
	var total T

	for i := 0; i < t.NumNodes(); i++ {
		n := NodeID(i)
		if n != t.Root() {
			total += ownEdgeWeight(n)
		}
	}

	buckets := t.depthBuckets()
	for d := len(buckets) - 1; d >= 0; d-- {
		for _, n := range buckets[d] {
			if t.IsLeaf(n) {
				label := t.Label(n)
				leafIdx, err := idx.Index(label)
				if err != nil {
					return nil, zero, err
				}
				var w T
				if n != t.Root() {
					w = ownEdgeWeight(n)
				}
				acc[n] = accListT[T]{leaf: []int{leafIdx}, dist: []T{w}}
				continue
			}

			children := t.Children(n)
			for ci := 0; ci < len(children); ci++ {
				ai := acc[children[ci]]
				for cj := ci + 1; cj < len(children); cj++ {
					aj := acc[children[cj]]
					for x := range ai.leaf {
						for y := range aj.leaf {
							mat.setByIndex(ai.leaf[x], aj.leaf[y], ai.dist[x]+aj.dist[y])
						}
					}
				}
			}

			count := 0
			for _, c := range children {
				count += len(acc[c].leaf)
			}
			merged := accListT[T]{
				leaf: make([]int, 0, count),
				dist: make([]T, 0, count),
			}
			for _, c := range children {
				merged.leaf = append(merged.leaf, acc[c].leaf...)
				merged.dist = append(merged.dist, acc[c].dist...)
				acc[c] = accListT[T]{} // release
			}
			if n != t.Root() {
				w := ownEdgeWeight(n)
				for i := range merged.dist {
					merged.dist[i] += w
				}
			}
			acc[n] = merged
		}
	}
	return mat, total, nil
}

// accListT holds, for one node, the leaf indices and the distance from each
// of those leaves up to the node (or, after the node's own edge is added,
// up to the node's parent). See the Design Notes on acc(n).
type accListT[T Elem] struct {
	leaf []int
	dist []T
}

// compactNode picks the narrowest unsigned integer type covering both the
// matrix's entries and the tree length, copies the uint64 working matrix
// into it, and returns the resulting PDM (§4.1's NODE-mode compaction).
func compactNode(mat *SymMat[uint64], total uint64) *PDM {
	max := total
	for _, v := range mat.store.data {
		if v > max {
			max = v
		}
	}

	idx := mat.Indices()
	pdm := &PDM{method: NodeDistance, treeLengthU: total}
	switch {
	case max <= math.MaxUint8:
		m := NewSymMat[uint8](idx, 0)
		copyInto(mat, m)
		pdm.matU8 = m
	case max <= math.MaxUint16:
		m := NewSymMat[uint16](idx, 0)
		copyInto(mat, m)
		pdm.matU16 = m
	case max <= math.MaxUint32:
		m := NewSymMat[uint32](idx, 0)
		copyInto(mat, m)
		pdm.matU32 = m
	default:
		pdm.matU64 = mat
	}
	return pdm
}

func copyInto[T Elem](src *SymMat[uint64], dst *SymMat[T]) {
	for i, v := range src.store.data {
		dst.store.data[i] = T(v)
	}
}
