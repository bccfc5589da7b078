package vmeta

import (
	"strconv"
	"strings"

	"github.com/biogt/bgt/gtpb"
	"github.com/biogt/bgt/internal/errs"
)

// maxPos is one past the largest representable 0-based position; it
// bounds an open-ended region.
const maxPos = int32(1<<31 - 1)

// ParseRegion parses a region string of the form accepted by
// htslib-style tools:
//
//	chr              whole contig
//	chr:start-end    1-based, inclusive
//	chr:start-       1-based, open-ended
//
// against header's contig dictionary, returning a 0-based half-open
// gtpb.Region. Fails with *errs.BadRegion if the contig is unknown or
// the string is malformed.
func ParseRegion(h *Header, region string) (gtpb.Region, error) {
	if region == "" {
		return gtpb.Region{}, &errs.BadRegion{Region: region, Reason: "empty region string"}
	}
	colon := strings.IndexByte(region, ':')
	chrName := region
	rangeStr := ""
	if colon >= 0 {
		chrName = region[:colon]
		rangeStr = region[colon+1:]
	}
	if chrName == "" {
		return gtpb.Region{}, &errs.BadRegion{Region: region, Reason: "empty contig name"}
	}
	refID, ok := h.ContigID(chrName)
	if !ok {
		return gtpb.Region{}, &errs.BadRegion{Region: region, Reason: "contig not in header dictionary"}
	}
	if colon < 0 {
		return gtpb.Region{
			Start: gtpb.Coord{RefID: refID, Pos: 0},
			Limit: gtpb.Coord{RefID: refID, Pos: maxPos},
		}, nil
	}
	dash := strings.IndexByte(rangeStr, '-')
	if dash < 0 {
		pos1, err := strconv.ParseInt(rangeStr, 10, 32)
		if err != nil || pos1 <= 0 {
			return gtpb.Region{}, &errs.BadRegion{Region: region, Reason: "invalid position"}
		}
		return gtpb.Region{
			Start: gtpb.Coord{RefID: refID, Pos: int32(pos1 - 1)},
			Limit: gtpb.Coord{RefID: refID, Pos: int32(pos1)},
		}, nil
	}
	start1Str, endStr := rangeStr[:dash], rangeStr[dash+1:]
	start1, err := strconv.ParseInt(start1Str, 10, 32)
	if err != nil || start1 <= 0 {
		return gtpb.Region{}, &errs.BadRegion{Region: region, Reason: "invalid start position"}
	}
	limit := maxPos
	if endStr != "" {
		end0, err := strconv.ParseInt(endStr, 10, 32)
		if err != nil || end0 < start1 {
			return gtpb.Region{}, &errs.BadRegion{Region: region, Reason: "invalid end position"}
		}
		limit = int32(end0)
	}
	return gtpb.Region{
		Start: gtpb.Coord{RefID: refID, Pos: int32(start1 - 1)},
		Limit: gtpb.Coord{RefID: refID, Pos: limit},
	}, nil
}
