package vmeta

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/biogt/bgt/gtpb"
	"github.com/biogt/bgt/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCFHeader = "##fileformat=VCFv4.2\n" +
	"##contig=<ID=chr1>\n" +
	"##contig=<ID=chr2>\n" +
	"##INFO=<ID=_row,Number=1,Type=Integer,Description=\"Genotype matrix row\">\n" +
	"##INFO=<ID=CIGAR,Number=.,Type=String,Description=\"Per-ALT alignment\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

const testVCFRecords = "chr1\t11\t.\tA\tT\t.\tPASS\t_row=0\n" +
	"chr1\t21\t.\tC\tG\t.\tPASS\t_row=1\n" +
	"chr2\t6\t.\tG\tA\t.\tPASS\t_row=2\n"

// writeBCF writes a block-gzipped variant stream with the header and
// the records in separate BGZF blocks, and returns the file offset of
// the first records block (a valid seek target for the index).
func writeBCF(t *testing.T, path string) (recordsOff int64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	bw := bgzf.NewWriter(f, 1)
	_, err = bw.Write([]byte(testVCFHeader))
	require.NoError(t, err)
	require.NoError(t, bw.Flush())
	require.NoError(t, bw.Wait())
	recordsOff, err = f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	_, err = bw.Write([]byte(testVCFRecords))
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())
	return recordsOff
}

// writeCSI hand-builds a minimal CSI v1 index: for each of the two
// references, one root bin (bin 0, which overlaps every query) holding
// a single chunk spanning the records block. The raw layout is written
// through a BGZF writer, matching the on-disk container.
func writeCSI(t *testing.T, path string, recordsOff, fileEnd int64) {
	t.Helper()
	voff := func(fileOff int64) uint64 { return uint64(fileOff) << 16 }
	var raw bytes.Buffer
	raw.WriteString("CSI\x01")
	le := binary.LittleEndian
	w32 := func(v int32) { require.NoError(t, binary.Write(&raw, le, v)) }
	wu32 := func(v uint32) { require.NoError(t, binary.Write(&raw, le, v)) }
	w64 := func(v uint64) { require.NoError(t, binary.Write(&raw, le, v)) }
	w32(14) // min_shift
	w32(5)  // depth
	w32(0)  // l_aux
	w32(2)  // n_ref
	for ref := 0; ref < 2; ref++ {
		w32(1)                // n_bin
		wu32(0)               // root bin
		w64(voff(recordsOff)) // loffset
		w32(1)                // n_chunk
		w64(voff(recordsOff)) // chunk begin
		w64(voff(fileEnd))    // chunk end
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	bw := bgzf.NewWriter(f, 1)
	_, err = bw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())
}

func fixtureVCFSource(t *testing.T) *VCFSource {
	t.Helper()
	dir := t.TempDir()
	bcf := filepath.Join(dir, "cohort.bcf")
	idx := filepath.Join(dir, "cohort.csi")
	recordsOff := writeBCF(t, bcf)
	st, err := os.Stat(bcf)
	require.NoError(t, err)
	writeCSI(t, idx, recordsOff, st.Size())
	src, err := OpenVCFSource(bcf, idx)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() }) // nolint: errcheck
	return src
}

func TestVCFSourceHeaderContigOrder(t *testing.T) {
	src := fixtureVCFSource(t)
	assert.Equal(t, []string{"chr1", "chr2"}, src.Header().Contigs)
}

func TestVCFSourceNextDecodesSites(t *testing.T) {
	src := fixtureVCFSource(t)
	var rows []int64
	var poss []int32
	for {
		site, err := src.Next()
		require.NoError(t, err)
		if site == nil {
			break
		}
		rows = append(rows, site.Row)
		poss = append(poss, site.Pos)
	}
	assert.Equal(t, []int64{0, 1, 2}, rows)
	assert.Equal(t, []int32{10, 20, 5}, poss)
}

func TestVCFSourceSeekRow(t *testing.T) {
	src := fixtureVCFSource(t)
	require.NoError(t, src.SeekRow(1))
	site, err := src.Next()
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, int64(1), site.Row)
	assert.Equal(t, []string{"C", "G"}, site.Alleles)
}

func TestVCFSourceQueryRegion(t *testing.T) {
	src := fixtureVCFSource(t)
	require.NoError(t, src.QueryRegion(gtpb.Region{
		Start: gtpb.Coord{RefID: 0, Pos: 15},
		Limit: gtpb.Coord{RefID: 0, Pos: 25},
	}))
	site, err := src.Next()
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, int64(1), site.Row)

	site, err = src.Next()
	require.NoError(t, err)
	assert.Nil(t, site, "region query must stop at the region limit")
}

func TestVCFSourceQueryRegionThenRewind(t *testing.T) {
	src := fixtureVCFSource(t)
	require.NoError(t, src.QueryRegion(gtpb.Region{
		Start: gtpb.Coord{RefID: 1, Pos: 0},
		Limit: gtpb.Coord{RefID: 1, Pos: 100},
	}))
	site, err := src.Next()
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, int64(2), site.Row)

	// A row seek after a region query clears the restriction.
	require.NoError(t, src.SeekRow(0))
	site, err = src.Next()
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, int64(0), site.Row)
}

func TestOpenVCFSourceMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	bcf := filepath.Join(dir, "cohort.bcf")
	idx := filepath.Join(dir, "cohort.csi")

	_, err := OpenVCFSource(bcf, idx)
	require.Error(t, err)
	_, ok := err.(*errs.StoreOpenError)
	assert.True(t, ok, "expected *errs.StoreOpenError, got %T", err)

	writeBCF(t, bcf)
	_, err = OpenVCFSource(bcf, idx)
	require.Error(t, err)
	_, ok = err.(*errs.StoreOpenError)
	assert.True(t, ok, "expected *errs.StoreOpenError for missing index, got %T", err)

	// A present but malformed index is a format error, not an open
	// error.
	require.NoError(t, os.WriteFile(idx, []byte("not an index"), 0644))
	_, err = OpenVCFSource(bcf, idx)
	require.Error(t, err)
	_, ok = err.(*errs.FormatError)
	assert.True(t, ok, "expected *errs.FormatError, got %T", err)
}

func TestVCFSourceMissingRowInfo(t *testing.T) {
	dir := t.TempDir()
	bcf := filepath.Join(dir, "cohort.bcf")
	idx := filepath.Join(dir, "cohort.csi")

	f, err := os.Create(bcf)
	require.NoError(t, err)
	bw := bgzf.NewWriter(f, 1)
	_, err = bw.Write([]byte(testVCFHeader))
	require.NoError(t, err)
	require.NoError(t, bw.Flush())
	require.NoError(t, bw.Wait())
	recordsOff, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	_, err = bw.Write([]byte("chr1\t11\t.\tA\tT\t.\tPASS\t.\n"))
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())
	st, err := os.Stat(bcf)
	require.NoError(t, err)
	writeCSI(t, idx, recordsOff, st.Size())

	src, err := OpenVCFSource(bcf, idx)
	require.NoError(t, err)
	defer src.Close() // nolint: errcheck
	_, err = src.Next()
	require.Error(t, err)
	_, ok := err.(*errs.FormatError)
	assert.True(t, ok, "expected *errs.FormatError, got %T", err)
}
