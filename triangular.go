package phylodm

import "math"

// Elem is the closed set of element types a TriangularStore may hold: the
// f64 patristic-distance type, and the narrowest-unsigned-integer ladder
// used to compact node-distance matrices.
type Elem interface {
	~float64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// TriangularStore is a flat, packed upper-triangle (including the diagonal)
// of an N×N symmetric matrix, stored row-major. Element type T is fixed at
// construction.
type TriangularStore[T Elem] struct {
	n    int
	data []T
}

// triLen returns the number of elements in the packed upper triangle of an
// N×N matrix.
func triLen(n int) int { return n * (n + 1) / 2 }

// NewTriangularStore allocates a store for n keys, filled with fill.
func NewTriangularStore[T Elem](n int, fill T) *TriangularStore[T] {
	data := make([]T, triLen(n))
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &TriangularStore[T]{n: n, data: data}
}

// triangularStoreFromData wraps an already-packed data vector. It returns
// CorruptStore if len(data) does not match n*(n+1)/2.
func triangularStoreFromData[T Elem](n int, data []T) (*TriangularStore[T], error) {
	if len(data) != triLen(n) {
		return nil, newErrf(CorruptStore,
			"triangular data length %d does not match expected %d for n=%d",
			len(data), triLen(n), n)
	}
	return &TriangularStore[T]{n: n, data: data}, nil
}

// N reports the matrix dimension.
func (s *TriangularStore[T]) N() int { return s.n }

// Data returns the packed backing vector in row-major upper-triangle order.
// The caller must not mutate it.
func (s *TriangularStore[T]) Data() []T { return s.data }

// Offset maps a (i,j) matrix coordinate pair, 0 <= i,j < n, to its position
// in the packed row-major upper-triangle enumeration. Arguments are
// canonicalised internally, so Offset(i,j) == Offset(j,i).
func Offset(n, i, j int) int {
	p, q := i, j
	if p > q {
		p, q = q, p
	}
	return p*n - p*(p-1)/2 + (q - p)
}

// InverseOffset recovers the (i,j) pair, i<=j, that Offset(n,i,j) maps to
// off. It exists for diagnostics; the forward mapping is authoritative.
func InverseOffset(n, off int) (i, j int) {
	nf := float64(n)
	offf := float64(off)
	p := int(math.Floor(((2*nf + 1) - math.Sqrt((2*nf+1)*(2*nf+1)-8*offf)) / 2))
	q := off - p*n + p*(p-1)/2 + p
	return p, q
}

// Get returns the element at (i,j).
func (s *TriangularStore[T]) Get(i, j int) T {
	return s.data[Offset(s.n, i, j)]
}

// Set writes v at (i,j); Set(i,j,v) and Set(j,i,v) address the same cell.
func (s *TriangularStore[T]) Set(i, j int, v T) {
	s.data[Offset(s.n, i, j)] = v
}
