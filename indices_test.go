package phylodm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexTable_AddAndIndex(t *testing.T) {
	idx := NewIndexTable()

	i, err := idx.AddKey("B")
	require.NoError(t, err)
	require.Equal(t, 0, i)

	i, err = idx.AddKey("A")
	require.NoError(t, err)
	require.Equal(t, 1, i)

	require.Equal(t, []string{"B", "A"}, idx.Keys())
	require.Equal(t, 2, idx.Len())
	require.True(t, idx.Contains("A"))
	require.False(t, idx.Contains("Z"))

	got, err := idx.Index("A")
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestIndexTable_DuplicateTaxon(t *testing.T) {
	idx := NewIndexTable()
	_, err := idx.AddKey("A")
	require.NoError(t, err)

	_, err = idx.AddKey("A")
	require.Error(t, err)
	k, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, DuplicateTaxon, k)
}

func TestIndexTable_UnknownKey(t *testing.T) {
	idx := NewIndexTable()
	_, err := idx.Index("missing")
	require.Error(t, err)
	k, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, UnknownKey, k)
}

func TestIndexTable_CloneIndependence(t *testing.T) {
	idx := NewIndexTable()
	_, _ = idx.AddKey("A")
	c := idx.clone()
	_, _ = idx.AddKey("B")

	require.Equal(t, 1, c.Len())
	require.Equal(t, 2, idx.Len())
	require.True(t, idx.equal(idx))
	require.False(t, idx.equal(c))
}
