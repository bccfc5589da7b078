package vmeta

import (
	"testing"

	"github.com/biogt/bgt/gtpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSites() []*Site {
	return []*Site{
		{RefID: 0, Pos: 10, RLen: 1, Alleles: []string{"A", "T"}, Row: 0},
		{RefID: 0, Pos: 20, RLen: 1, Alleles: []string{"C", "G"}, Row: 1},
		{RefID: 1, Pos: 5, RLen: 1, Alleles: []string{"G", "A"}, Row: 2},
	}
}

func TestMemSourceNext(t *testing.T) {
	m := NewMemSource(testHeader(), fixtureSites())
	var rows []int64
	for {
		s, err := m.Next()
		require.NoError(t, err)
		if s == nil {
			break
		}
		rows = append(rows, s.Row)
	}
	assert.Equal(t, []int64{0, 1, 2}, rows)
}

func TestMemSourceSeekRow(t *testing.T) {
	m := NewMemSource(testHeader(), fixtureSites())
	require.NoError(t, m.SeekRow(1))
	s, err := m.Next()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(1), s.Row)
}

func TestMemSourceQueryRegion(t *testing.T) {
	m := NewMemSource(testHeader(), fixtureSites())
	require.NoError(t, m.QueryRegion(gtpb.Region{
		Start: gtpb.Coord{RefID: 0, Pos: 15},
		Limit: gtpb.Coord{RefID: 0, Pos: 25},
	}))
	s, err := m.Next()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(1), s.Row)

	s, err = m.Next()
	require.NoError(t, err)
	assert.Nil(t, s, "region query must stop before the next contig")
}

func TestSiteKeyAndAlleles(t *testing.T) {
	s := &Site{RefID: 0, Pos: 10, RLen: 1, Alleles: []string{"A", "T", "G"}, Row: 0}
	assert.Equal(t, "A", s.Ref())
	assert.Equal(t, []string{"T", "G"}, s.Alts())
	k := s.Key()
	assert.Equal(t, "A", k.Ref)
	assert.Equal(t, []string{"T", "G"}, k.Alt)
}
