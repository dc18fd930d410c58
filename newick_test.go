package phylodm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNewick_Simple(t *testing.T) {
	tr, err := ParseNewick("(A:1.0,B:2.0);")
	require.NoError(t, err)
	require.Equal(t, 3, tr.NumNodes())

	children := tr.Children(tr.Root())
	require.Len(t, children, 2)
	require.Equal(t, "A", tr.Label(children[0]))
	require.Equal(t, "B", tr.Label(children[1]))

	w, has := tr.Weight(children[0])
	require.True(t, has)
	require.Equal(t, 1.0, w)
}

func TestParseNewick_Nested(t *testing.T) {
	tr, err := ParseNewick("((A:1,B:1):2,C:3);")
	require.NoError(t, err)
	require.NoError(t, tr.Validate())

	var leaves []string
	for i := 0; i < tr.NumNodes(); i++ {
		n := NodeID(i)
		if tr.IsLeaf(n) {
			leaves = append(leaves, tr.Label(n))
		}
	}
	require.ElementsMatch(t, []string{"A", "B", "C"}, leaves)
}

func TestParseNewick_SingleNamedLeaf(t *testing.T) {
	tr, err := ParseNewick("A:1;")
	require.NoError(t, err)
	require.Equal(t, 1, tr.NumNodes())
	require.Equal(t, "A", tr.Label(tr.Root()))
}

func TestParseNewick_MissingSemicolon(t *testing.T) {
	_, err := ParseNewick("(A:1,B:2)")
	require.Error(t, err)
	k, _ := KindOf(err)
	require.Equal(t, MalformedTree, k)
}

func TestParseNewick_InvalidWeight(t *testing.T) {
	_, err := ParseNewick("(A:1,B:-2);")
	require.Error(t, err)
	k, _ := KindOf(err)
	require.Equal(t, InvalidEdgeWeight, k)
}

func TestParseNewick_NonFiniteWeight(t *testing.T) {
	for _, s := range []string{"(A:NaN,B:1.0);", "(A:Inf,B:1.0);", "(A:-Inf,B:1.0);"} {
		_, err := ParseNewick(s)
		require.Error(t, err, "input %q should be rejected", s)
		k, _ := KindOf(err)
		require.Equal(t, InvalidEdgeWeight, k, "input %q", s)
	}
}

func TestParseNewick_DuplicateTaxon(t *testing.T) {
	_, err := ParseNewick("((A:1,A:1):1,B:2);")
	require.Error(t, err)
	k, _ := KindOf(err)
	require.Equal(t, DuplicateTaxon, k)
}

func TestParseNewick_TrailingGarbage(t *testing.T) {
	_, err := ParseNewick("(A:1,B:2);garbage")
	require.Error(t, err)
	k, _ := KindOf(err)
	require.Equal(t, MalformedTree, k)
}
