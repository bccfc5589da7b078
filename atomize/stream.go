package atomize

import (
	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/reader"
)

// Stream drives a Reader and atomizes every site it yields, for
// callers that want a fully atomized variant stream rather than
// per-site Atomize calls. Scan advances; Record and Err inspect
// state.
type Stream struct {
	r          *reader.Reader
	numSamples int

	atoms []Atom
	pos   int
	err   error
}

// NewStream wraps r, atomizing each site against numSamples samples
// using the reader's own haplotype planes (DecodeFromPlanes), which is
// exact only for biallelic sites.
func NewStream(r *reader.Reader, numSamples int) *Stream {
	return &Stream{r: r, numSamples: numSamples}
}

// Scan advances to the next atom, returning false at end of stream or
// on error (distinguished by Err).
func (s *Stream) Scan() bool {
	for s.pos >= len(s.atoms) {
		rec, err := s.r.Read()
		if err == errs.EndOfStream {
			return false
		}
		if err != nil {
			s.err = err
			return false
		}
		atoms, err := Atomize(rec.Site, s.numSamples, DecodeFromPlanes(rec.A0, rec.A1))
		if err != nil {
			s.err = err
			return false
		}
		s.atoms = atoms
		s.pos = 0
	}
	s.pos++
	return true
}

// Record returns the atom produced by the most recent successful Scan.
func (s *Stream) Record() Atom { return s.atoms[s.pos-1] }

// Err returns the error that ended the stream, or nil on a clean EOF.
func (s *Stream) Err() error { return s.err }
