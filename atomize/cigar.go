package atomize

import (
	"fmt"
	"strconv"
)

// CigarOp is one run-length/operation pair in an alignment CIGAR.
// Op is one of 'M', '=', 'X', 'I', 'D'.
type CigarOp struct {
	Len int
	Op  byte
}

// ParseCIGAR parses a CIGAR string of the usual "<len><op>..." form
// (e.g. "1M2I3M"), the same grammar biogo/hts/sam.Cigar strings use.
func ParseCIGAR(s string) ([]CigarOp, error) {
	var ops []CigarOp
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i {
			return nil, fmt.Errorf("atomize: expected a length at offset %d in CIGAR %q", i, s)
		}
		n, err := strconv.Atoi(s[i:j])
		if err != nil {
			return nil, fmt.Errorf("atomize: bad CIGAR length in %q: %w", s, err)
		}
		if j >= len(s) {
			return nil, fmt.Errorf("atomize: CIGAR %q ends without an operation", s)
		}
		ops = append(ops, CigarOp{Len: n, Op: s[j]})
		i = j + 1
	}
	return ops, nil
}
