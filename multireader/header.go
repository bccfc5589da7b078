package multireader

import (
	"strconv"

	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/reader"
)

// InfoFields are the synthesized site-level INFO keys emitted by the
// merge: allele number/count, and their per-group counterparts for
// groups 1..8.
var InfoFields = func() []string {
	f := []string{"AN", "AC", "END"}
	for g := 1; g <= 8; g++ {
		f = append(f, infoKey("AN", g), infoKey("AC", g))
	}
	return f
}()

func infoKey(base string, group int) string {
	return base + strconv.Itoa(group)
}

// SymbolicAlts are the structural-variant ALT symbols the synthesized
// header declares, including the "<M>" allele the merge emits when a
// site folds multiple alternate alleles together.
var SymbolicAlts = []string{"<M>", "<DEL>", "<DUP>", "<INS>", "<INV>", "<DUP:TANDEM>", "<DEL:ME>", "<INS:ME>"}

// Header is the synthesized output header for a merged multi-cohort
// read: the INFO/FORMAT schema plus the concatenated sample list in
// child order.
type Header struct {
	Contigs     []string
	SampleNames []string
	NumGroups   int
	Info        []string
	FormatGT    string // fixed "GT" format field, typed-byte encoded
}

// mergeContigs returns child 0's contig dictionary, after checking
// every other child declares the identical dictionary. Divergent
// per-child contig dictionaries are rejected as a format error: the
// merge has no way to reconcile two different rid spaces.
func mergeContigs(headers []reader.OutputHeader) ([]string, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	base := headers[0].Contigs
	for i := 1; i < len(headers); i++ {
		if !stringsEqual(base, headers[i].Contigs) {
			return nil, &errs.FormatError{Reason: "child stores declare divergent contig dictionaries"}
		}
	}
	return append([]string(nil), base...), nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
