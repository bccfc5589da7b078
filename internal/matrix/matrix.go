// Package matrix implements the genotype-matrix reader: random-access
// read of a 2-bit-per-haplotype column slice for a given row-id,
// restricted to a chosen subset of haplotype columns. The on-disk
// block layout (".pbf") is a recordio+zstd container of one record per
// row.
package matrix

// RawSource is the full-width (unsubsetted) row source backing a
// Reader: one .pbf file's sequential/random-access contract.
type RawSource interface {
	// NumCols returns 2*S, the total haplotype column count.
	NumCols() int
	// Seek repositions so the next Read() returns row.
	Seek(row int64) error
	// Read returns the two bit-planes for the current row, each of
	// length NumCols(), then advances to row+1. Values are 0 or 1.
	Read() (a0, a1 []byte, err error)
	Close() error
}

// Reader is the subsetted genotype-matrix reader bound to the
// caller's selected sample columns.
type Reader struct {
	src RawSource
	// cols holds the haplotype column indices to extract, in output
	// order: [2*samples[0], 2*samples[0]+1, 2*samples[1], ...].
	cols []int

	// scratch buffers are owned and reused across reads: they may
	// grow but never shrink below the current record's needs.
	scratch0, scratch1 []byte
}

// NewReader wraps a RawSource. SubsetColumns must be called before the
// first Read (Prepare() does this for callers of reader.Reader).
func NewReader(src RawSource) *Reader {
	return &Reader{src: src}
}

// SubsetColumns declares which haplotype columns to extract and in
// what order: Read then yields exactly len(cols) values per plane per
// row, in the declared order.
func (r *Reader) SubsetColumns(cols []int) {
	r.cols = cols
}

// Seek repositions the reader so the next Read() returns row.
func (r *Reader) Seek(row int64) error {
	return r.src.Seek(row)
}

// Read returns the two bit-planes restricted to the subset columns, and
// advances to the next row.
func (r *Reader) Read() (a0, a1 []byte, err error) {
	full0, full1, err := r.src.Read()
	if err != nil {
		return nil, nil, err
	}
	n := len(r.cols)
	r.scratch0 = ensureLen(r.scratch0, n)
	r.scratch1 = ensureLen(r.scratch1, n)
	for i, c := range r.cols {
		r.scratch0[i] = full0[c]
		r.scratch1[i] = full1[c]
	}
	return r.scratch0[:n], r.scratch1[:n], nil
}

// Close releases the underlying RawSource.
func (r *Reader) Close() error {
	return r.src.Close()
}

func ensureLen(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
