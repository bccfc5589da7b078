// Package allelekey implements the variant-key parser: it
// canonicalizes a textual chr:pos:ref:alt (or chr:pos:rlen:alt) into a
// normalized position/length/alt triple.
package allelekey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogt/bgt/internal/errs"
)

// Key is the normalized form of a parsed allele key: 0-based position,
// reference length, and the alternate allele string.
type Key struct {
	Chrom string
	Pos   int32
	RLen  int32
	Alt   string
}

// String renders k in the chrom:pos:rlen:alt form accepted by Parse,
// with the position converted back to 1-based. Parsing the result
// yields a key equal to k: the rlen form carries no REF, so no further
// trimming applies.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d:%s", k.Chrom, k.Pos+1, k.RLen, k.Alt)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}

// Parse parses one of the two input forms:
//
//	chr:pos:ref:alt
//	chr:pos:rlen:alt
//
// pos is 1-based on input and converted to 0-based. The third field is
// rlen (REF absent) when it begins with a digit, otherwise it is REF.
// Fails with *errs.MalformedKey on any missing field, non-digit pos,
// or non-alphabetic ref/alt.
func Parse(input string) (Key, error) {
	fields := strings.SplitN(input, ":", 4)
	if len(fields) != 4 {
		return Key{}, &errs.MalformedKey{Key: input, Reason: "expected chr:pos:ref:alt or chr:pos:rlen:alt"}
	}
	chrom, posStr, third, alt := fields[0], fields[1], fields[2], fields[3]
	if chrom == "" {
		return Key{}, &errs.MalformedKey{Key: input, Reason: "empty chromosome"}
	}
	if !isDigits(posStr) {
		return Key{}, &errs.MalformedKey{Key: input, Reason: "non-digit position"}
	}
	pos1, err := strconv.ParseInt(posStr, 10, 32)
	if err != nil {
		return Key{}, &errs.MalformedKey{Key: input, Reason: "position out of range"}
	}
	symbolic := strings.HasPrefix(alt, "<")
	if !isAlpha(alt) && !symbolic {
		return Key{}, &errs.MalformedKey{Key: input, Reason: "non-alphabetic alt"}
	}

	var ref string
	var rlen int32
	hasRef := !isDigits(third)
	if hasRef {
		if !isAlpha(third) {
			return Key{}, &errs.MalformedKey{Key: input, Reason: "non-alphabetic ref"}
		}
		ref = third
		rlen = int32(len(ref))
	} else {
		rl, err := strconv.ParseInt(third, 10, 32)
		if err != nil {
			return Key{}, &errs.MalformedKey{Key: input, Reason: "rlen out of range"}
		}
		rlen = int32(rl)
	}

	pos := int32(pos1 - 1)
	if !symbolic {
		pos, rlen, alt = trimShared(ref, hasRef, pos, rlen, alt)
	}
	return Key{Chrom: chrom, Pos: pos, RLen: rlen, Alt: alt}, nil
}

// trimShared normalizes the allele pair: (a) trim shared leading
// characters of REF and ALT case-insensitively, advancing pos and
// shrinking rlen by the trimmed count; (b) when REF was provided, trim
// shared trailing characters too, cutting them from both alleles and
// shrinking rlen without moving pos. Symbolic ALTs (e.g. "<DEL>") are
// never passed here: they are preserved untouched by the caller.
func trimShared(ref string, hasRef bool, pos, rlen int32, alt string) (int32, int32, string) {
	if !hasRef {
		return pos, rlen, alt
	}
	r, a := ref, alt
	lead := 0
	for lead < len(r) && lead < len(a) && eqFold(r[lead], a[lead]) {
		lead++
	}
	// Never trim an allele down to nothing: a single shared leading
	// base must survive as the anchor base (htslib VCF convention).
	if lead > 0 && (lead == len(r) || lead == len(a)) {
		lead--
	}
	r, a = r[lead:], a[lead:]
	pos += int32(lead)
	rlen -= int32(lead)

	trail := 0
	for len(r)-trail > 1 && len(a)-trail > 1 && eqFold(r[len(r)-1-trail], a[len(a)-1-trail]) {
		trail++
	}
	r = r[:len(r)-trail]
	a = a[:len(a)-trail]
	rlen -= int32(trail)

	return pos, rlen, a
}

func eqFold(a, b byte) bool {
	return toLower(a) == toLower(b)
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
