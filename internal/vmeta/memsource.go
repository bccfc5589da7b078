package vmeta

import "github.com/biogt/bgt/gtpb"

// MemSource is an in-memory SiteSource: a fixture-friendly stand-in
// for the real block-compressed reader, used by tests and by small,
// fully in-memory stores. Sites must already be sorted and carry
// dense, strictly increasing Row values starting at 0.
type MemSource struct {
	header *Header
	sites  []*Site
	pos    int
	limit  gtpb.Coord
	useLim bool
}

// NewMemSource builds a MemSource over sites, which the caller must not
// mutate afterward.
func NewMemSource(h *Header, sites []*Site) *MemSource {
	return &MemSource{header: h, sites: sites}
}

// Header implements SiteSource.
func (m *MemSource) Header() *Header { return m.header }

// Next implements SiteSource.
func (m *MemSource) Next() (*Site, error) {
	for m.pos < len(m.sites) {
		s := m.sites[m.pos]
		m.pos++
		if m.useLim && (gtpb.Coord{RefID: s.RefID, Pos: s.Pos}).GE(m.limit) {
			m.pos = len(m.sites)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// SeekRow implements SiteSource.
func (m *MemSource) SeekRow(row int64) error {
	m.useLim = false
	for i, s := range m.sites {
		if s.Row >= row {
			m.pos = i
			return nil
		}
	}
	m.pos = len(m.sites)
	return nil
}

// QueryRegion implements SiteSource. Next then yields the sites whose
// start lies in [region.Start, region.Limit); a site that begins before
// region.Start is not returned, even when it spans into the region.
func (m *MemSource) QueryRegion(region gtpb.Region) error {
	m.useLim = true
	m.limit = region.Limit
	for i, s := range m.sites {
		c := gtpb.Coord{RefID: s.RefID, Pos: s.Pos}
		if c.GE(region.Start) {
			m.pos = i
			return nil
		}
	}
	m.pos = len(m.sites)
	return nil
}

// Close implements SiteSource.
func (m *MemSource) Close() error { return nil }
