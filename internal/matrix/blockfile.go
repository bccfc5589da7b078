package matrix

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"

	"github.com/biogt/bgt/internal/errs"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
)

func init() {
	recordiozstd.Init()
}

// fileIndex describes a .pbf file: row count, column count, and the
// recordio block offset of each row's record. It is gob-encoded in the
// recordio trailer and kept in memory for the lifetime of the
// BlockSource.
type fileIndex struct {
	NumRows int64
	NumCols int
	Offsets []int64
}

// BlockSource is the on-disk RawSource: one recordio record per row,
// zstd-compressed, each holding packBits(plane0) ++ packBits(plane1),
// with the gob fileIndex in the recordio trailer. Random access seeks
// the scanner to the row's block offset.
type BlockSource struct {
	ctx   context.Context
	in    file.File
	sc    recordio.Scanner
	index fileIndex
	pos   int64
}

// OpenBlockSource opens a .pbf file at path. A missing or unreadable
// file fails with *errs.StoreOpenError; a file without a decodable
// index trailer fails with *errs.FormatError.
func OpenBlockSource(ctx context.Context, path string) (*BlockSource, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, &errs.StoreOpenError{Prefix: path, Cause: err}
	}
	sc := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	trailer := sc.Trailer()
	if len(trailer) == 0 {
		sc.Finish()   // nolint: errcheck
		in.Close(ctx) // nolint: errcheck
		return nil, &errs.FormatError{Prefix: path, Reason: "missing genotype-matrix index trailer"}
	}
	var idx fileIndex
	if err := gob.NewDecoder(bytes.NewReader(trailer)).Decode(&idx); err != nil {
		sc.Finish()   // nolint: errcheck
		in.Close(ctx) // nolint: errcheck
		return nil, &errs.FormatError{Prefix: path, Reason: err.Error()}
	}
	return &BlockSource{ctx: ctx, in: in, sc: sc, index: idx}, nil
}

// NumCols implements RawSource.
func (b *BlockSource) NumCols() int { return b.index.NumCols }

// Seek implements RawSource.
func (b *BlockSource) Seek(row int64) error {
	if row < 0 || row > b.index.NumRows {
		return io.ErrUnexpectedEOF
	}
	b.pos = row
	return nil
}

// Read implements RawSource.
func (b *BlockSource) Read() (a0, a1 []byte, err error) {
	if b.pos >= b.index.NumRows {
		return nil, nil, io.EOF
	}
	b.sc.Seek(recordio.ItemLocation{Block: uint64(b.index.Offsets[b.pos]), Item: 0})
	if !b.sc.Scan() {
		if err := b.sc.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, io.ErrUnexpectedEOF
	}
	payload := b.sc.Get().([]byte)
	n := b.index.NumCols
	nb := (n + 7) / 8
	if len(payload) < 2*nb {
		return nil, nil, io.ErrUnexpectedEOF
	}
	a0 = unpackBits(payload[:nb], n, nil)
	a1 = unpackBits(payload[nb:2*nb], n, nil)
	b.pos++
	return a0, a1, nil
}

// Close implements RawSource.
func (b *BlockSource) Close() error {
	b.sc.Finish() // nolint: errcheck
	return b.in.Close(b.ctx)
}
