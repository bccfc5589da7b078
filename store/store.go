// Package store implements Store: an open handle to one on-disk
// cohort keyed by a filesystem prefix, binding the variant header, the
// coordinate index, the variant-metadata stream, the genotype-matrix
// handle, and the sample-metadata table. Immutable after open.
package store

import (
	"bytes"
	"context"
	"io/ioutil"

	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/internal/matrix"
	"github.com/biogt/bgt/internal/sample"
	"github.com/biogt/bgt/internal/vmeta"
	"github.com/grailbio/base/file"
)

// Suffixes of the four per-prefix artifacts.
const (
	SuffixVariants = ".bcf"
	SuffixIndex    = ".csi"
	SuffixMatrix   = ".pbf"
	SuffixSamples  = ".spl"
)

// Store is an immutable open handle to one cohort.
type Store struct {
	Prefix  string
	Header  *vmeta.Header
	Samples *sample.Table

	sites vmeta.SiteSource
	geno  matrix.RawSource
}

// Open locates the four artifacts sharing prefix and reads the variant
// header fully into memory. Any missing artifact fails with
// *errs.StoreOpenError; header parse errors fail with
// *errs.FormatError. No partial open is observable: on any error,
// whatever was opened so far is closed before returning.
func Open(ctx context.Context, prefix string) (s *Store, err error) {
	var opened []interface{ Close() error }
	defer func() {
		if err != nil {
			for i := len(opened) - 1; i >= 0; i-- {
				opened[i].Close() // nolint: errcheck
			}
		}
	}()

	sites, err := vmeta.OpenVCFSource(prefix+SuffixVariants, prefix+SuffixIndex)
	if err != nil {
		return nil, err
	}
	opened = append(opened, sites)

	geno, err := matrix.OpenBlockSource(ctx, prefix+SuffixMatrix)
	if err != nil {
		return nil, err
	}
	opened = append(opened, geno)

	samples, err := openSamples(ctx, prefix+SuffixSamples)
	if err != nil {
		return nil, err
	}

	if geno.NumCols() != 2*samples.Len() {
		return nil, &errs.FormatError{Prefix: prefix, Reason: "genotype matrix column count does not match 2*|samples|"}
	}

	return &Store{
		Prefix:  prefix,
		Header:  sites.Header(),
		Samples: samples,
		sites:   sites,
		geno:    geno,
	}, nil
}

// OpenWithSources builds a Store from already-open components, for
// tests and for callers with custom SiteSource/RawSource adapters
// (memory-backed fixtures, for instance).
func OpenWithSources(prefix string, header *vmeta.Header, samples *sample.Table, sites vmeta.SiteSource, geno matrix.RawSource) *Store {
	return &Store{Prefix: prefix, Header: header, Samples: samples, sites: sites, geno: geno}
}

func openSamples(ctx context.Context, path string) (*sample.Table, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, &errs.StoreOpenError{Prefix: path, Cause: err}
	}
	defer f.Close(ctx) // nolint: errcheck
	data, err := ioutil.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, &errs.StoreOpenError{Prefix: path, Cause: err}
	}
	t, err := sample.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &errs.FormatError{Prefix: path, Reason: err.Error()}
	}
	return t, nil
}

// Sites returns the variant-metadata source.
func (s *Store) Sites() vmeta.SiteSource { return s.sites }

// Genotypes returns the genotype-matrix source.
func (s *Store) Genotypes() matrix.RawSource { return s.geno }

// Close releases all four artifacts.
func (s *Store) Close() error {
	err1 := s.sites.Close()
	err2 := s.geno.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
