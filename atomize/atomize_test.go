package atomize

import (
	"testing"

	"github.com/biogt/bgt/internal/vmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAtomizeDecomposesMNVAndFlagsOverlap covers the worked atomization
// example: REF "AC", ALT1 "TG" decomposes into two SNV atoms; a
// second, overlapping ALT "A" (a one-base deletion spanning both SNV
// positions) is flagged with the overlap code wherever its footprint
// intersects an atom it didn't produce, and is itself flagged where the
// sample's actual call belongs to the other allele.
func TestAtomizeDecomposesMNVAndFlagsOverlap(t *testing.T) {
	site := &vmeta.Site{
		RefID:   0,
		Pos:     100,
		RLen:    2,
		Alleles: []string{"AC", "TG", "A"},
		Row:     0,
	}
	// One sample, homozygous for ALT1 ("TG").
	decode := func(sample, ploidy int) int { return 1 }

	atoms, err := Atomize(site, 1, decode)
	require.NoError(t, err)
	require.Len(t, atoms, 3)

	snv1, del, snv2 := atoms[0], atoms[1], atoms[2]

	assert.Equal(t, int32(100), snv1.Pos)
	assert.Equal(t, int32(1), snv1.RLen)
	assert.Equal(t, "A", snv1.Ref)
	assert.Equal(t, "T", snv1.Alt)
	assert.Equal(t, []byte{1, 1}, snv1.GT)

	assert.Equal(t, int32(100), del.Pos)
	assert.Equal(t, int32(2), del.RLen)
	assert.Equal(t, "AC", del.Ref)
	assert.Equal(t, "A", del.Alt)
	// The sample was actually called for ALT1, which overlaps but is not
	// this atom's own allele: overlap code.
	assert.Equal(t, []byte{3, 3}, del.GT)

	assert.Equal(t, int32(101), snv2.Pos)
	assert.Equal(t, int32(1), snv2.RLen)
	assert.Equal(t, "C", snv2.Ref)
	assert.Equal(t, "G", snv2.Alt)
	assert.Equal(t, []byte{1, 1}, snv2.GT)
}

// TestAtomizeMissingCallPropagates covers a sample with a missing
// genotype: every resulting atom must carry the missing code regardless
// of overlap.
func TestAtomizeMissingCallPropagates(t *testing.T) {
	site := &vmeta.Site{
		RefID:   0,
		Pos:     50,
		RLen:    1,
		Alleles: []string{"A", "T"},
	}
	decode := func(sample, ploidy int) int { return -1 }

	atoms, err := Atomize(site, 1, decode)
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	assert.Equal(t, []byte{2, 2}, atoms[0].GT)
}

// TestAtomizeSymbolicAltSkipsDecomposition covers the whole-allele
// passthrough for symbolic ALTs: no CIGAR walk is attempted,
// and the atom reproduces the site unchanged.
func TestAtomizeSymbolicAltSkipsDecomposition(t *testing.T) {
	site := &vmeta.Site{
		RefID:   0,
		Pos:     200,
		RLen:    500,
		Alleles: []string{"A", "<DEL>"},
	}
	decode := func(sample, ploidy int) int { return 1 }

	atoms, err := Atomize(site, 1, decode)
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	assert.Equal(t, int32(200), atoms[0].Pos)
	assert.Equal(t, int32(500), atoms[0].RLen)
	assert.Equal(t, "A", atoms[0].Ref)
	assert.Equal(t, "<DEL>", atoms[0].Alt)
}

func TestDecodeFromPlanesBiallelic(t *testing.T) {
	a0 := []byte{0, 1, 1, 0}
	a1 := []byte{0, 0, 0, 1}
	decode := DecodeFromPlanes(a0, a1)
	assert.Equal(t, 0, decode(0, 0))
	assert.Equal(t, 1, decode(0, 1))
	assert.Equal(t, -1, decode(1, 1))
}

func TestParseCIGARRoundTrip(t *testing.T) {
	ops, err := ParseCIGAR("1M2I3M")
	require.NoError(t, err)
	assert.Equal(t, []CigarOp{{Len: 1, Op: 'M'}, {Len: 2, Op: 'I'}, {Len: 3, Op: 'M'}}, ops)

	_, err = ParseCIGAR("M2I")
	assert.Error(t, err)
	_, err = ParseCIGAR("2")
	assert.Error(t, err)
}
