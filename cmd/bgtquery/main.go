/*
bgtquery opens one or more genotype-table store prefixes, merges them
with a MultiReader, and streams the synthesized header and annotated
records to stdout.

Sample usage:

	bgtquery -region chr1:1000-2000 -sample-expr '?cohort=case' cohortA cohortB
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/biogt/bgt/group"
	"github.com/biogt/bgt/internal/bedset"
	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/multireader"
	"github.com/biogt/bgt/store"
)

var (
	region     = flag.String("region", "", "Restrict the merge to this region (chr, chr:start-end, or chr:start-)")
	bedPath    = flag.String("bed", "", "BED file restricting output to listed intervals")
	bedExclude = flag.Bool("bed-exclude", false, "Invert the BED filter (keep sites NOT overlapping)")
	sampleExpr = flag.String("sample-expr", "", "Sample selector applied as a single group across every store (see group.ParseInput)")
	noGT       = flag.Bool("no-gt", false, "Suppress FORMAT/sample columns; site and info only")
	noAC       = flag.Bool("no-ac", false, "Suppress AN/AC and per-group AN/AC annotation")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] prefix [prefix...]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	prefixes := flag.Args()
	if len(prefixes) == 0 {
		log.Fatalf("at least one store prefix is required; got: %q", strings.Join(os.Args[1:], " "))
	}

	ctx := vcontext.Background()
	var stores []*store.Store
	for _, p := range prefixes {
		s, err := store.Open(ctx, p)
		if err != nil {
			log.Fatalf("opening %s: %v", p, err)
		}
		defer s.Close() // nolint: errcheck
		stores = append(stores, s)
	}

	mr := multireader.New(stores)
	if *sampleExpr != "" {
		spec, err := group.ParseInput(*sampleExpr)
		if err != nil {
			log.Fatalf("-sample-expr: %v", err)
		}
		if err := mr.AddGroup(spec); err != nil {
			log.Fatalf("-sample-expr: %v", err)
		}
	}
	if *region != "" {
		if err := mr.SetRegion(*region); err != nil {
			log.Fatalf("-region: %v", err)
		}
	}
	if *bedPath != "" {
		f, err := os.Open(*bedPath)
		if err != nil {
			log.Fatalf("-bed: %v", err)
		}
		set, err := bedset.ParseBED(f)
		f.Close() // nolint: errcheck
		if err != nil {
			log.Fatalf("-bed: %v", err)
		}
		mr.SetBed(set, *bedExclude)
	}
	mr.SetNoGT(*noGT)
	mr.SetNoAC(*noAC)

	if err := run(mr, newLineWriter(os.Stdout)); err != nil {
		log.Fatalf("%v", err)
	}
}

// run drains mr through w until end of stream. It depends only on the
// injected RecordWriter, so a caller can substitute a real encoder
// without touching the merge driver.
func run(mr *multireader.MultiReader, w RecordWriter) error {
	if err := mr.Prepare(); err != nil {
		return err
	}
	if err := w.WriteHeader(mr.Header()); err != nil {
		return err
	}
	for {
		rec, err := mr.ReadOne()
		if err == errs.EndOfStream {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
}

// RecordWriter is the injected output sink: one call for the
// synthesized header, one per merged record.
type RecordWriter interface {
	WriteHeader(h multireader.Header) error
	WriteRecord(rec *multireader.Record) error
}

type lineWriter struct{ w io.Writer }

func newLineWriter(w io.Writer) *lineWriter { return &lineWriter{w: w} }

func (l *lineWriter) WriteHeader(h multireader.Header) error {
	_, err := fmt.Fprintf(l.w, "#CHROM\tPOS\tREF\tALT\tAN\tAC\t%s\n", strings.Join(h.SampleNames, "\t"))
	return err
}

func (l *lineWriter) WriteRecord(rec *multireader.Record) error {
	contig := fmt.Sprintf("%d", rec.Site.RefID)
	_, err := fmt.Fprintf(l.w, "%s\t%d\t%s\t%s\t%d\t%v\n",
		contig, rec.Site.Pos+1, rec.Site.Ref(), strings.Join(rec.Site.Alts(), ","), rec.AN, rec.AC)
	return err
}
