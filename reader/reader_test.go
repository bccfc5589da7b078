package reader

import (
	"testing"

	"github.com/biogt/bgt/group"
	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/internal/matrix"
	"github.com/biogt/bgt/internal/sample"
	"github.com/biogt/bgt/internal/vmeta"
	"github.com/biogt/bgt/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureStore(t *testing.T) *store.Store {
	t.Helper()
	header := vmeta.NewHeader([]string{"chr1", "chr2"}, nil, nil)
	sites := vmeta.NewMemSource(header, []*vmeta.Site{
		{RefID: 0, Pos: 10, RLen: 1, Alleles: []string{"A", "T"}, Row: 0},
		{RefID: 0, Pos: 20, RLen: 1, Alleles: []string{"C", "G"}, Row: 1},
		{RefID: 1, Pos: 5, RLen: 1, Alleles: []string{"G", "A"}, Row: 2},
	})
	samples := sample.New([]sample.Row{
		{Name: "s1", Attrs: map[string]string{"cohort": "case"}},
		{Name: "s2", Attrs: map[string]string{"cohort": "control"}},
	})
	geno := matrix.NewMemSource(4, [][]byte{
		{0, 1, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
	}, [][]byte{
		{0, 0, 0, 1},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
	})
	return store.OpenWithSources("fixture", header, samples, sites, geno)
}

func TestReaderReadAllSamplesNoGroups(t *testing.T) {
	s := fixtureStore(t)
	r := New(s)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, int32(10), rec.Site.Pos)
	assert.Equal(t, []byte{0, 1, 0, 0}, rec.A0)
	assert.Equal(t, []byte{0, 0, 0, 1}, rec.A1)
	assert.Equal(t, []string{"s1", "s2"}, r.Header().SampleNames)
}

func TestReaderSubsetsBySampleGroup(t *testing.T) {
	s := fixtureStore(t)
	r := New(s)
	require.NoError(t, r.AddGroup(group.ByNames([]string{"s2"})))

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, r.Samples())
	assert.Equal(t, []byte{0, 0}, rec.A0)
	assert.Equal(t, []byte{0, 1}, rec.A1)
}

func TestReaderSetRegionFiltersByCoordinate(t *testing.T) {
	s := fixtureStore(t)
	r := New(s)
	require.NoError(t, r.SetRegion("chr1:15-30"))

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, int32(20), rec.Site.Pos)

	_, err = r.Read()
	assert.Equal(t, errs.EndOfStream, err)
}

func TestReaderEndOfStream(t *testing.T) {
	s := fixtureStore(t)
	r := New(s)
	for i := 0; i < 3; i++ {
		_, err := r.Read()
		require.NoError(t, err)
	}
	_, err := r.Read()
	assert.Equal(t, errs.EndOfStream, err)
}

func TestFormatGenotypes(t *testing.T) {
	a0 := []byte{0, 1, 0, 0}
	a1 := []byte{0, 0, 0, 1}
	out := FormatGenotypes(a0, a1)
	assert.Equal(t, []byte{2, 4, 2, 0}, out)
}
