// Package gtpb defines the plain data types shared by the store,
// reader, and multireader packages: genomic coordinates and site sort
// keys.
package gtpb

import "strings"

// Coord is a 0-based genomic position: contig index plus offset.
type Coord struct {
	RefID int32
	Pos   int32
}

// Compare returns <0, 0, >0 if c<c1, c==c1, c>c1 respectively.
func (c Coord) Compare(c1 Coord) int {
	if c.RefID != c1.RefID {
		return int(c.RefID) - int(c1.RefID)
	}
	return int(c.Pos) - int(c1.Pos)
}

func (c Coord) LT(c1 Coord) bool { return c.Compare(c1) < 0 }
func (c Coord) LE(c1 Coord) bool { return c.Compare(c1) <= 0 }
func (c Coord) GE(c1 Coord) bool { return c.Compare(c1) >= 0 }
func (c Coord) GT(c1 Coord) bool { return c.Compare(c1) > 0 }
func (c Coord) EQ(c1 Coord) bool { return c.RefID == c1.RefID && c.Pos == c1.Pos }

// Region is a half-open coordinate range [Start, Limit).
type Region struct {
	Start Coord
	Limit Coord
}

// Intersects returns true iff r and r1 share at least one coordinate.
func (r Region) Intersects(r1 Region) bool {
	return r.Start.LT(r1.Limit) && r1.Start.LT(r.Limit)
}

// Contains returns true iff c falls within r.
func (r Region) Contains(c Coord) bool {
	return r.Start.LE(c) && c.LT(r.Limit)
}

// Key is the total order over site records used for merge alignment:
// (rid, pos, rlen, REF, each ALT), lexicographic.
type Key struct {
	RefID int32
	Pos   int32
	RLen  int32
	Ref   string
	Alt   []string
}

// Compare returns <0, 0, >0 if k sorts before, at the same position
// as, or after k1.
func (k Key) Compare(k1 Key) int {
	if k.RefID != k1.RefID {
		return int(k.RefID) - int(k1.RefID)
	}
	if k.Pos != k1.Pos {
		return int(k.Pos) - int(k1.Pos)
	}
	if k.RLen != k1.RLen {
		return int(k.RLen) - int(k1.RLen)
	}
	if c := strings.Compare(k.Ref, k1.Ref); c != 0 {
		return c
	}
	n := len(k.Alt)
	if len(k1.Alt) < n {
		n = len(k1.Alt)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(k.Alt[i], k1.Alt[i]); c != 0 {
			return c
		}
	}
	return len(k.Alt) - len(k1.Alt)
}

// LT returns true iff k sorts strictly before k1.
func (k Key) LT(k1 Key) bool { return k.Compare(k1) < 0 }

// EQ returns true iff k and k1 compare equal under the total order.
func (k Key) EQ(k1 Key) bool { return k.Compare(k1) == 0 }

// Coord returns the (RefID, Pos) projection of the key.
func (k Key) Coord() Coord { return Coord{RefID: k.RefID, Pos: k.Pos} }
