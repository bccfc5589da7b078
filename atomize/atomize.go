// Package atomize implements the allele-atomizer: it decomposes a
// possibly multi-allelic, multi-nucleotide-variant site into
// per-position atoms and rewrites each sample's genotype to refer to
// the atomized alleles.
package atomize

import (
	"sort"
	"strings"

	"github.com/biogt/bgt/gtpb"
	"github.com/biogt/bgt/internal/vmeta"
)

// Atom is one decomposition entity: a
// normalized, position-anchored single-variant record plus the
// per-sample, per-ploidy genotype codes rewritten against it. GT codes
// are 0=REF-for-atom, 1=ALT-for-atom, 2=missing, 3=overlapping-other.
type Atom struct {
	RefID int32
	Pos   int32
	RLen  int32
	Ref   string
	Alt   string
	ANum  int // source allele index (1..A-1) in the originating site
	GT    []byte
}

// GenotypeDecoder returns the source genotype's allele index for
// sample s, ploidy slot p (0 or 1): -1 for missing, or 0..A-1 where
// 0 is REF. The atomizer treats the decoder as an external
// collaborator: the concrete source of per-sample genotype calls (the
// 2-bit matrix plane for biallelic sites, or a richer per-sample GT
// string for sites with more than one ALT) is a storage-format concern
// outside the atomizer itself.
type GenotypeDecoder func(sample, ploidy int) int

// DecodeFromPlanes adapts a pair of per-haplotype bit-planes (the same
// a0/a1 shape a matrix.Reader yields) into a GenotypeDecoder.
// Codes 00/01/10/11 decode to REF(0)/ALT1(1)/missing(-1)/"some other
// ALT"; the last case cannot distinguish which ALT beyond the first
// was called, so this decoder is exact only for biallelic sites
// (A<=2). Callers atomizing sites with more than one ALT need a
// decoder sourced from the full per-sample GT string instead.
func DecodeFromPlanes(a0, a1 []byte) GenotypeDecoder {
	return func(sample, ploidy int) int {
		h := sample*2 + ploidy
		code := (a1[h] << 1) | a0[h]
		switch code {
		case 0:
			return 0
		case 1:
			return 1
		case 2:
			return -1
		default:
			return 2
		}
	}
}

// key returns the total-order sort key for an atom.
func key(a Atom) gtpb.Key {
	return gtpb.Key{RefID: a.RefID, Pos: a.Pos, RLen: a.RLen, Ref: a.Ref, Alt: []string{a.Alt}}
}

// Atomize decomposes site into atoms, producing the deduplicated,
// per-sample-rewritten atom list. numSamples is the number of samples
// decode can be queried for.
func Atomize(site *vmeta.Site, numSamples int, decode GenotypeDecoder) ([]Atom, error) {
	ref := site.Ref()
	alts := site.Alts()
	cigarList := splitCIGARInfo(site.Info["CIGAR"])

	var atoms []Atom
	for i, alt := range alts {
		anum := i + 1
		ops, whole, err := alignOps(site, ref, alt, i, cigarList)
		if err != nil {
			return nil, err
		}
		if whole {
			atoms = append(atoms, Atom{RefID: site.RefID, Pos: site.Pos, RLen: site.RLen, Ref: ref, Alt: alt, ANum: anum})
			continue
		}
		atoms = append(atoms, walkCigar(site, ref, alt, anum, ops)...)
	}

	sort.SliceStable(atoms, func(i, j int) bool { return key(atoms[i]).LT(key(atoms[j])) })

	eq := make([]int, len(atoms))
	for k := range atoms {
		if k == 0 || !key(atoms[k]).EQ(key(atoms[eq[k-1]])) {
			eq[k] = k
		} else {
			eq[k] = eq[k-1]
		}
	}

	numAlleles := len(site.Alleles)
	var out []Atom
	for k := range atoms {
		if eq[k] != k {
			continue
		}
		tr := make([]int, numAlleles)
		ak := atoms[k]
		for i, ai := range atoms {
			if eq[i] == k {
				tr[ai.ANum] = 1
				continue
			}
			if ai.Pos < ak.Pos+ak.RLen && ak.Pos < ai.Pos+ai.RLen {
				tr[ai.ANum] = 3
			}
		}
		gt := make([]byte, numSamples*2)
		for s := 0; s < numSamples; s++ {
			for p := 0; p < 2; p++ {
				c := decode(s, p)
				if c < 0 {
					gt[s*2+p] = 2
				} else {
					gt[s*2+p] = byte(tr[c])
				}
			}
		}
		ak.GT = gt
		out = append(out, ak)
	}
	return out, nil
}

// walkCigar walks ops over REF position x and ALT position y, emitting
// SNV/insertion/deletion atoms.
func walkCigar(site *vmeta.Site, ref, alt string, anum int, ops []CigarOp) []Atom {
	var atoms []Atom
	x, y := 0, 0
	for _, op := range ops {
		switch op.Op {
		case 'M', '=', 'X':
			for j := 0; j < op.Len; j++ {
				if x+j >= len(ref) || y+j >= len(alt) {
					break
				}
				if ref[x+j] != alt[y+j] {
					atoms = append(atoms, Atom{
						RefID: site.RefID,
						Pos:   site.Pos + int32(x+j),
						RLen:  1,
						Ref:   ref[x+j : x+j+1],
						Alt:   alt[y+j : y+j+1],
						ANum:  anum,
					})
				}
			}
			x += op.Len
			y += op.Len
		case 'I':
			base := anchorBase(ref, x)
			ins := alt[y : y+op.Len]
			atoms = append(atoms, Atom{
				RefID: site.RefID,
				Pos:   site.Pos + int32(x-1),
				RLen:  1,
				Ref:   base,
				Alt:   base + ins,
				ANum:  anum,
			})
			y += op.Len
		case 'D':
			base := anchorBase(ref, x)
			del := ref[x-1 : x+op.Len]
			atoms = append(atoms, Atom{
				RefID: site.RefID,
				Pos:   site.Pos + int32(x-1),
				RLen:  int32(op.Len + 1),
				Ref:   del,
				Alt:   base,
				ANum:  anum,
			})
			x += op.Len
		}
	}
	return atoms
}

// anchorBase returns the single REF base immediately before position x,
// the shared anchor base indel atoms are pinned to.
func anchorBase(ref string, x int) string {
	if x-1 < 0 || x-1 >= len(ref) {
		return "N"
	}
	return ref[x-1 : x]
}

// alignOps determines the alignment CIGAR for ALT index altIdx
// (0-based): an explicit per-site CIGAR wins, then the trivial
// equal-length match, then the length-difference heuristic. Symbolic
// ALTs and rlen/REF-length mismatches skip alignment in favor of a
// whole-allele atom.
func alignOps(site *vmeta.Site, ref, alt string, altIdx int, cigarList []string) (ops []CigarOp, whole bool, err error) {
	if strings.HasPrefix(alt, "<") || site.RLen != int32(len(ref)) {
		return nil, true, nil
	}
	if altIdx < len(cigarList) && cigarList[altIdx] != "" {
		ops, err = ParseCIGAR(cigarList[altIdx])
		if err != nil {
			return nil, false, err
		}
		return ops, false, nil
	}
	if len(ref) == len(alt) {
		return []CigarOp{{Len: len(ref), Op: 'M'}}, false, nil
	}
	delta := len(alt) - len(ref)
	ops = append(ops, CigarOp{Len: 1, Op: 'M'})
	switch {
	case delta > 0:
		ops = append(ops, CigarOp{Len: delta, Op: 'I'})
		if rest := len(ref) - 1; rest > 0 {
			ops = append(ops, CigarOp{Len: rest, Op: 'M'})
		}
	case delta < 0:
		ops = append(ops, CigarOp{Len: -delta, Op: 'D'})
		if rest := len(alt) - 1; rest > 0 {
			ops = append(ops, CigarOp{Len: rest, Op: 'M'})
		}
	}
	return ops, false, nil
}

// splitCIGARInfo splits the per-site CIGAR info string into its
// per-ALT entries. An empty input yields no entries, so every ALT
// falls through to the length-based or heuristic alignment instead.
func splitCIGARInfo(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
