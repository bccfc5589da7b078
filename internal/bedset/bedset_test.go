package bedset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapsBasic(t *testing.T) {
	s := New([]Entry{{Contig: "chr1", Start: 100, End: 200}})
	assert.True(t, s.Overlaps("chr1", 150, 160))
	assert.True(t, s.Overlaps("chr1", 90, 110))
	assert.False(t, s.Overlaps("chr1", 200, 250))
	assert.False(t, s.Overlaps("chr1", 0, 100))
	assert.False(t, s.Overlaps("chr2", 150, 160))
}

func TestOverlapsMergesOverlappingIntervals(t *testing.T) {
	s := New([]Entry{
		{Contig: "chr1", Start: 100, End: 200},
		{Contig: "chr1", Start: 150, End: 300},
	})
	assert.True(t, s.Overlaps("chr1", 250, 260))
	assert.False(t, s.Overlaps("chr1", 300, 400))
}

func TestParseBED(t *testing.T) {
	in := "# comment\nchr1\t100\t200\nchr2\t0\t50\textra\n"
	s, err := ParseBED(strings.NewReader(in))
	require.NoError(t, err)
	assert.True(t, s.Overlaps("chr1", 150, 160))
	assert.True(t, s.Overlaps("chr2", 10, 20))
}

func TestParseBEDMalformed(t *testing.T) {
	_, err := ParseBED(strings.NewReader("chr1\tnotanumber\t200\n"))
	assert.Error(t, err)
}
