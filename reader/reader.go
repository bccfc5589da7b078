// Package reader implements the single-cohort Reader: it produces
// (site, haplotype-bits) pairs filtered by region, BED, and sample
// subset, and synthesizes the output header.
package reader

import (
	"github.com/biogt/bgt/gtpb"
	"github.com/biogt/bgt/group"
	"github.com/biogt/bgt/internal/bedset"
	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/internal/matrix"
	"github.com/biogt/bgt/internal/vmeta"
	"github.com/biogt/bgt/store"
	"v.io/x/lib/vlog"
)

// OutputHeader is the synthesized header for a single-cohort read:
// contig lines copied from the store header, sample column headers
// appended in selected-sample order.
type OutputHeader struct {
	Contigs     []string
	SampleNames []string
}

// Record is a fully populated output record: the site plus haplotype
// bits restricted to the selected samples.
type Record struct {
	Site  *vmeta.Site
	A0    []byte // one value per selected haplotype column
	A1    []byte
	Group []byte // per-selected-sample group mask byte, parallel to samples
}

// Reader is the single-cohort reader bound to one Store.
type Reader struct {
	store *store.Store
	masks *group.Masks

	region     *gtpb.Region
	startRow   int64
	hasStart   bool
	bed        *bedset.Set
	bedExclude bool

	prepared bool
	samples  []int
	groupOf  []byte
	header   OutputHeader

	mreader *matrix.Reader
}

// New binds a Reader to s. It initializes an empty group-mask array
// (one byte per sample), a genotype-matrix reader positioned at row 0,
// and a variant-metadata iterator positioned at row 0.
func New(s *store.Store) *Reader {
	return &Reader{
		store:   s,
		masks:   group.NewMasks(s.Samples.Len()),
		mreader: matrix.NewReader(s.Genotypes()),
	}
}

// AddGroup appends one group. Fails with *errs.TooManyGroups if the
// group count would exceed 8.
func (r *Reader) AddGroup(spec group.Spec) error {
	return r.masks.Add(r.store.Samples, spec)
}

// SetRegion constrains subsequent reads to region, parsed against the
// store header's contig dictionary. Setting a region clears any
// active row-start constraint. Fails with *errs.BadRegion on parse
// failure; the reader remains usable with prior state.
func (r *Reader) SetRegion(region string) error {
	reg, err := vmeta.ParseRegion(r.store.Header, region)
	if err != nil {
		return err
	}
	r.region = &reg
	r.hasStart = false
	return nil
}

// SetStart constrains subsequent reads to rows >= row. Setting a
// row-start clears any active region.
func (r *Reader) SetStart(row int64) {
	r.startRow = row
	r.hasStart = true
	r.region = nil
}

// SetBed attaches an interval filter: a candidate site is kept
// iff overlap(intervals, contig, pos, pos+rlen) XOR exclude is true.
func (r *Reader) SetBed(set *bedset.Set, exclude bool) {
	r.bed = set
	r.bedExclude = exclude
}

// Prepare computes the selected sample set, the per-sample group mask,
// the output header, and the genotype-matrix column selection.
// It is called lazily by Read on first use; callers may also call it
// explicitly to inspect Header()/Samples() before reading.
func (r *Reader) Prepare() error {
	if r.prepared {
		return nil
	}
	if r.masks.Count() == 0 {
		if err := r.AddGroup(group.All()); err != nil {
			return err
		}
	}
	samples, groupOf := r.masks.SelectedSamples()
	r.samples = samples
	r.groupOf = groupOf

	names := make([]string, len(samples))
	for j, i := range samples {
		names[j] = r.store.Samples.Row(i).Name
	}
	r.header = OutputHeader{Contigs: append([]string(nil), r.store.Header.Contigs...), SampleNames: names}

	cols := make([]int, 0, 2*len(samples))
	for _, i := range samples {
		cols = append(cols, 2*i, 2*i+1)
	}
	r.mreader.SubsetColumns(cols)

	if r.region != nil {
		if err := r.store.Sites().QueryRegion(*r.region); err != nil {
			return err
		}
	} else if r.hasStart {
		if err := r.store.Sites().SeekRow(r.startRow); err != nil {
			return err
		}
	}
	r.prepared = true
	return nil
}

// Samples returns the selected sample indices, in output-column order.
// The mapping is fixed for the lifetime of the Reader once Prepare has
// run.
func (r *Reader) Samples() []int { return r.samples }

// GroupOf returns the fixed per-selected-sample group-mask array,
// parallel to Samples(). Unlike a Record's Group field (which aliases
// the same slice), this accessor is valid before the first Read, once
// Prepare has run.
func (r *Reader) GroupOf() []byte { return r.groupOf }

// Header returns the synthesized output header. Valid only after
// Prepare (called explicitly, or implicitly by the first Read).
func (r *Reader) Header() OutputHeader { return r.header }

// Read returns the next selected-and-filtered record, or
// errs.EndOfStream at end of stream.
func (r *Reader) Read() (*Record, error) {
	if err := r.Prepare(); err != nil {
		return nil, err
	}
	for {
		site, err := r.store.Sites().Next()
		if err != nil {
			return nil, err
		}
		if site == nil {
			return nil, errs.EndOfStream
		}
		if err := requireRow(site); err != nil {
			return nil, err
		}
		if r.bed != nil {
			contig := ""
			if int(site.RefID) < len(r.header.Contigs) {
				contig = r.header.Contigs[site.RefID]
			}
			overlap := r.bed.Overlaps(contig, int64(site.Pos), int64(site.Pos)+int64(site.RLen))
			if overlap == r.bedExclude {
				vlog.VI(2).Infof("reader: dropping site at %v:%v (bed filter)", contig, site.Pos)
				continue
			}
		}
		if err := r.mreader.Seek(site.Row); err != nil {
			return nil, err
		}
		a0, a1, err := r.mreader.Read()
		if err != nil {
			return nil, err
		}
		return &Record{Site: site, A0: append([]byte(nil), a0...), A1: append([]byte(nil), a1...), Group: r.groupOf}, nil
	}
}

func requireRow(s *vmeta.Site) error {
	// _row presence is a hard invariant, enforced by SiteSource
	// implementations during decode (VCFSource fails with a
	// FormatError when _row is absent). This check only rejects a
	// negative row-id; an unset Row reads as 0 and passes.
	if s.Row < 0 {
		return &errs.FormatError{Reason: "site missing required _row info field"}
	}
	return nil
}
