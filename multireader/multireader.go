// Package multireader implements the multi-cohort merge: a k-way merge
// over N single-cohort Readers that aligns sites by key, annotates
// AN/AC (and per-group AN/AC), and synthesizes one combined output
// stream.
package multireader

import (
	"strconv"

	"github.com/biogt/bgt/group"
	"github.com/biogt/bgt/internal/bedset"
	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/internal/vmeta"
	"github.com/biogt/bgt/reader"
	"github.com/biogt/bgt/store"
	"github.com/grailbio/base/errorreporter"
	"v.io/x/lib/vlog"
)

// Record is one merged output row: the chosen site
// (REF/ALT possibly folded to a synthetic "<M>" allele), the combined
// haplotype planes across every child in child order, and the AN/AC
// annotations.
type Record struct {
	Site *vmeta.Site
	A0   []byte
	A1   []byte

	AN int
	AC []int // len 1, or len 2 when the site carries a synthetic "<M>" allele

	ANGroup []int   // one entry per active group
	ACGroup [][]int // parallel to ANGroup

	Format []byte // typed-byte GT block; nil when synthesis is suppressed
}

// FilterFunc is a post-annotation predicate: given the
// fully annotated candidate record, it returns true to discard the
// record and continue the merge, false to emit it.
type FilterFunc func(rec *Record) bool

type childState struct {
	r       *reader.Reader
	pending *reader.Record
	eof     bool
	err     errorreporter.T
}

// SampleIndex identifies one combined output column: the child reader
// it came from and the source sample index within that child's store.
type SampleIndex struct {
	Child  int
	Sample int
}

// MultiReader merges the output of one Reader per child Store.
type MultiReader struct {
	children  []*childState
	numGroups int

	header    Header
	sampleIdx []SampleIndex
	prepared  bool

	filter FilterFunc
	noGT   bool
	noAC   bool
}

// New binds a MultiReader to one Reader per store, in the order given;
// that order also fixes the sample-column order of the combined
// output.
func New(stores []*store.Store) *MultiReader {
	children := make([]*childState, len(stores))
	for i, s := range stores {
		children[i] = &childState{r: reader.New(s)}
	}
	return &MultiReader{children: children}
}

// AddGroup forwards spec to every child Reader and advances the shared
// group counter. Every child evaluates the spec independently against
// its own sample table.
func (mr *MultiReader) AddGroup(spec group.Spec) error {
	for _, c := range mr.children {
		if err := c.r.AddGroup(spec); err != nil {
			return err
		}
	}
	mr.numGroups++
	return nil
}

// SetFilter installs a post-annotation filter. A nil
// filter (the default) keeps every candidate record.
func (mr *MultiReader) SetFilter(f FilterFunc) { mr.filter = f }

// SetNoGT suppresses FORMAT-block synthesis, for callers that need
// only the site-level annotations.
func (mr *MultiReader) SetNoGT(noGT bool) { mr.noGT = noGT }

// SetNoAC suppresses AN/AC (and per-group AN/AC) annotation. The
// merged haplotype planes are still produced; only the tally is
// skipped.
func (mr *MultiReader) SetNoAC(noAC bool) { mr.noAC = noAC }

// SetRegion restricts every child to region (forwarded verbatim to
// each child Reader's SetRegion).
func (mr *MultiReader) SetRegion(region string) error {
	for _, c := range mr.children {
		if err := c.r.SetRegion(region); err != nil {
			return err
		}
	}
	return nil
}

// SetBed attaches an interval filter to every child Reader.
func (mr *MultiReader) SetBed(set *bedset.Set, exclude bool) {
	for _, c := range mr.children {
		c.r.SetBed(set, exclude)
	}
}

// Prepare computes the synthesized output header. Called lazily by
// ReadOne; exposed so callers can inspect Header() first.
func (mr *MultiReader) Prepare() error {
	if mr.prepared {
		return nil
	}
	if mr.numGroups == 0 {
		if err := mr.AddGroup(group.All()); err != nil {
			return err
		}
	}
	headers := make([]reader.OutputHeader, len(mr.children))
	var names []string
	for i, c := range mr.children {
		if err := c.r.Prepare(); err != nil {
			return err
		}
		headers[i] = c.r.Header()
		names = append(names, headers[i].SampleNames...)
		for _, s := range c.r.Samples() {
			mr.sampleIdx = append(mr.sampleIdx, SampleIndex{Child: i, Sample: s})
		}
	}
	contigs, err := mergeContigs(headers)
	if err != nil {
		return err
	}
	mr.header = Header{
		Contigs:     contigs,
		SampleNames: names,
		NumGroups:   mr.numGroups,
		Info:        InfoFields,
		FormatGT:    "GT",
	}
	mr.prepared = true
	return nil
}

// Header returns the synthesized output header. Valid after Prepare.
func (mr *MultiReader) Header() Header { return mr.header }

// Samples maps each combined output column position to its
// (child, source-sample) origin. Valid after Prepare.
func (mr *MultiReader) Samples() []SampleIndex { return mr.sampleIdx }

// ChildErr returns the isolated error (if any) that removed child i
// from the merge early, or nil if child i ran to completion or has not
// failed. A FormatError from one child store is fatal for that store
// only; the other children keep merging.
func (mr *MultiReader) ChildErr(i int) error { return mr.children[i].err.Err() }

// ReadOne executes one round of the k-way merge and
// returns the next merged record, or errs.EndOfStream once every
// child is exhausted.
func (mr *MultiReader) ReadOne() (*Record, error) {
	if err := mr.Prepare(); err != nil {
		return nil, err
	}
	for {
		if err := mr.fillPending(); err != nil {
			return nil, err
		}

		minIdx := -1
		for i, c := range mr.children {
			if c.pending == nil {
				continue
			}
			if minIdx == -1 || c.pending.Site.Key().LT(mr.children[minIdx].pending.Site.Key()) {
				minIdx = i
			}
		}
		if minIdx == -1 {
			return nil, errs.EndOfStream
		}
		minKey := mr.children[minIdx].pending.Site.Key()

		var chosenSite *vmeta.Site
		maxAlleles := 0
		matched := make([]bool, len(mr.children))
		for i, c := range mr.children {
			if c.pending != nil && c.pending.Site.Key().EQ(minKey) {
				matched[i] = true
				if chosenSite == nil {
					chosenSite = c.pending.Site
				}
				if n := len(c.pending.Site.Alleles); n > maxAlleles {
					maxAlleles = n
				}
			}
		}

		var a0, a1, groupOf []byte
		for i, c := range mr.children {
			if matched[i] {
				a0 = append(a0, c.pending.A0...)
				a1 = append(a1, c.pending.A1...)
				groupOf = append(groupOf, c.pending.Group...)
				c.pending = nil
			} else {
				n := len(c.r.Samples())
				for j := 0; j < n; j++ {
					a0 = append(a0, 0)
					a1 = append(a1, 1) // code 10: missing
				}
				groupOf = append(groupOf, c.r.GroupOf()...)
			}
		}

		multiAllelic := maxAlleles > 2
		rec := &Record{
			Site: synthesizeSite(chosenSite, multiAllelic),
			A0:   a0,
			A1:   a1,
		}
		if !mr.noAC {
			global, perGroup := Tally(a0, a1, groupOf, mr.numGroups)
			rec.AN = global[0] + global[1] + global[3]
			rec.AC = acFrom(global, multiAllelic)
			rec.ANGroup = make([]int, mr.numGroups)
			rec.ACGroup = make([][]int, mr.numGroups)
			for g := 0; g < mr.numGroups; g++ {
				rec.ANGroup[g] = perGroup[g][0] + perGroup[g][1] + perGroup[g][3]
				rec.ACGroup[g] = acFrom(perGroup[g], multiAllelic)
			}
		}

		if mr.filter != nil && mr.filter(rec) {
			continue
		}
		if !mr.noGT {
			rec.Format = reader.FormatGenotypes(a0, a1)
		}
		return rec, nil
	}
}

// fillPending refills every non-eof child whose pending slot is empty,
// isolating a per-child FormatError (the store's data is broken, but
// the other children can still be merged) while letting any other
// error propagate as fatal.
func (mr *MultiReader) fillPending() error {
	for _, c := range mr.children {
		if c.eof || c.pending != nil {
			continue
		}
		rec, err := c.r.Read()
		switch {
		case err == errs.EndOfStream:
			c.eof = true
		case err != nil:
			if _, ok := err.(*errs.FormatError); ok {
				vlog.Error(err)
				c.err.Set(err)
				c.eof = true
				continue
			}
			return err
		default:
			c.pending = rec
		}
	}
	return nil
}

// acFrom derives the AC tuple from a 4-bucket histogram: the
// first-ALT count, plus the second-or-higher-ALT count when the
// candidate is multi-allelic (carries a synthetic "<M>" allele).
func acFrom(hist [4]int, multiAllelic bool) []int {
	if multiAllelic {
		return []int{hist[1], hist[3]}
	}
	return []int{hist[1]}
}

// synthesizeSite produces the output site record: a copy of src, with
// a synthetic "<M>" allele appended when the merge round folded
// multiple alternate alleles together, and an explicit END info field
// when the reported reference length diverges from the REF string
// length.
func synthesizeSite(src *vmeta.Site, multiAllelic bool) *vmeta.Site {
	alleles := append([]string(nil), src.Alleles...)
	if multiAllelic {
		alleles = append(alleles, "<M>")
	}
	info := make(map[string]string, len(src.Info)+1)
	for k, v := range src.Info {
		info[k] = v
	}
	if src.RLen != int32(len(src.Ref())) {
		info["END"] = strconv.Itoa(int(src.Pos) + int(src.RLen))
	}
	return &vmeta.Site{RefID: src.RefID, Pos: src.Pos, RLen: src.RLen, Alleles: alleles, Info: info, Row: src.Row}
}
