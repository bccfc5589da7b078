// Package vmeta implements the variant-metadata reader: decoding one
// site record and resolving its stable row-id. The on-disk
// block-compressed format (.bcf) and its coordinate index (.csi) are
// reached only through the SiteSource interface (source.go); the
// concrete adapter in vcfsource.go wires github.com/brentp/vcfgo and
// github.com/biogo/hts.
package vmeta

import "github.com/biogt/bgt/gtpb"

// Header describes the contig dictionary and the info/format schema of
// a store.
type Header struct {
	// Contigs lists contig names in dictionary order; RefID indexes
	// into this slice.
	Contigs []string

	// InfoFields and FormatFields record the schema declared by the
	// source header (not interpreted further here; output header
	// synthesis owns the emitted schema).
	InfoFields   []string
	FormatFields []string

	contigIdx map[string]int32
}

// NewHeader builds a Header and its name->id index.
func NewHeader(contigs, info, format []string) *Header {
	h := &Header{Contigs: contigs, InfoFields: info, FormatFields: format}
	h.contigIdx = make(map[string]int32, len(contigs))
	for i, name := range contigs {
		h.contigIdx[name] = int32(i)
	}
	return h
}

// ContigID resolves a contig name to its dictionary index, or (0, false)
// if the header does not declare it.
func (h *Header) ContigID(name string) (int32, bool) {
	id, ok := h.contigIdx[name]
	return id, ok
}

// Site is one variant-metadata record: rid/pos/rlen/alleles plus
// site-level info and the stable row-id used to key the genotype
// matrix.
type Site struct {
	RefID int32
	Pos   int32 // 0-based start
	RLen  int32 // reference length
	// Alleles holds REF at index 0, ALT at 1..A-1.
	Alleles []string
	// Info holds site-level info fields, keyed by name, values
	// pre-stringified. The atomizer reads the comma-separated per-ALT
	// "CIGAR" entry directly.
	Info map[string]string
	// Row is the decoded _row info value: the genotype-matrix row-id.
	// Required: every Site must carry one.
	Row int64
}

// Key returns the sort key used for merge alignment and ordering
// checks.
func (s *Site) Key() gtpb.Key {
	alt := s.Alleles
	if len(alt) > 0 {
		alt = alt[1:]
	}
	ref := ""
	if len(s.Alleles) > 0 {
		ref = s.Alleles[0]
	}
	return gtpb.Key{RefID: s.RefID, Pos: s.Pos, RLen: s.RLen, Ref: ref, Alt: append([]string(nil), alt...)}
}

// Ref returns the REF allele (Alleles[0]), or "" if absent.
func (s *Site) Ref() string {
	if len(s.Alleles) == 0 {
		return ""
	}
	return s.Alleles[0]
}

// Alts returns the ALT alleles (Alleles[1:]).
func (s *Site) Alts() []string {
	if len(s.Alleles) < 2 {
		return nil
	}
	return s.Alleles[1:]
}
