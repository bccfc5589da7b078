package vmeta

import "github.com/biogt/bgt/gtpb"

// SiteSource is the primitive contract the block-compressed
// variant-metadata stream and its coordinate index must satisfy:
// sequential read, seek-by-row, and region query. The reader in
// reader.go is built entirely against this interface so that the
// on-disk format stays an external collaborator.
type SiteSource interface {
	// Header returns the parsed variant header. Called once after
	// open.
	Header() *Header

	// Next returns the next site in row-id order, or (nil, nil) at
	// end of stream. After QueryRegion it yields only the region's
	// sites (see QueryRegion); after SeekRow it is unrestricted.
	Next() (*Site, error)

	// SeekRow repositions the source so the next call to Next()
	// returns the site whose Row equals row, or the first site with
	// Row > row if no exact match exists (dense strictly-increasing
	// _row values are a hard invariant, so in practice this is exact).
	SeekRow(row int64) error

	// QueryRegion repositions the source so that Next() yields sites
	// intersecting region, in ascending order, until the region is
	// exhausted (at which point Next returns (nil, nil)).
	QueryRegion(region gtpb.Region) error

	// Close releases the source's file handles.
	Close() error
}
