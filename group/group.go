// Package group implements the sample-group mask: a small fixed-width
// bitset assigning each sample row to zero or more of up to 8 named
// groups at a cost of one byte per sample.
package group

import (
	"bufio"
	"os"
	"strings"

	"github.com/biogt/bgt/internal/errs"
	"github.com/biogt/bgt/internal/sample"
)

// MaxGroups is the hard cap on concurrently active groups: a group
// mask must fit in one byte.
const MaxGroups = 8

// Spec describes one AddGroup call: the sentinel "all samples",
// an explicit name list, a predicate, or a hybrid of the two (union).
type Spec struct {
	All       bool
	Names     []string
	Predicate sample.Predicate
}

// All is the sentinel "all samples" spec.
func All() Spec { return Spec{All: true} }

// ByNames selects samples by explicit name list.
func ByNames(names []string) Spec { return Spec{Names: names} }

// ByPredicate selects samples for which pred evaluates true.
func ByPredicate(pred sample.Predicate) Spec { return Spec{Predicate: pred} }

// ParseInput resolves one of the three textual selector forms passed
// to AddGroup:
//
//	a path to a line-delimited name list
//	":" followed by inline, comma-separated names
//	a predicate expression (prefixed by "?", or any non-file, non-":" string)
func ParseInput(input string) (Spec, error) {
	switch {
	case input == "":
		return Spec{}, &errs.MalformedKey{Key: input, Reason: "empty sample selector"}
	case strings.HasPrefix(input, ":"):
		names := strings.Split(input[1:], ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		return ByNames(names), nil
	case strings.HasPrefix(input, "?"):
		pred, err := sample.ParsePredicate(input[1:])
		if err != nil {
			return Spec{}, err
		}
		return ByPredicate(pred), nil
	default:
		if f, err := os.Open(input); err == nil {
			defer f.Close()
			var names []string
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line != "" {
					names = append(names, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return Spec{}, err
			}
			return ByNames(names), nil
		}
		pred, err := sample.ParsePredicate(input)
		if err != nil {
			return Spec{}, err
		}
		return ByPredicate(pred), nil
	}
}

// Masks tracks per-sample group membership, one byte per sample row,
// plus the current group count in [0, MaxGroups].
type Masks struct {
	mask  []byte
	count int
}

// NewMasks allocates an all-zero mask array of length S.
func NewMasks(numSamples int) *Masks {
	return &Masks{mask: make([]byte, numSamples)}
}

// Count returns the number of groups added so far.
func (m *Masks) Count() int { return m.count }

// Add applies spec as group m.count, ORing its bit into every matching
// sample's mask byte, and increments the group count. Fails with
// *errs.TooManyGroups if the count would exceed MaxGroups.
func (m *Masks) Add(table *sample.Table, spec Spec) error {
	if m.count >= MaxGroups {
		return &errs.TooManyGroups{Limit: MaxGroups}
	}
	bit := byte(1) << uint(m.count)
	switch {
	case spec.All:
		for i := range m.mask {
			m.mask[i] |= bit
		}
	default:
		if spec.Predicate != nil {
			for i := 0; i < table.Len(); i++ {
				if spec.Predicate.Test(table.Row(i)) {
					m.mask[i] |= bit
				}
			}
		}
		for _, name := range spec.Names {
			if i, ok := table.IndexOf(name); ok {
				m.mask[i] |= bit
			}
		}
	}
	m.count++
	return nil
}

// Byte returns the group-mask byte for sample index i.
func (m *Masks) Byte(i int) byte { return m.mask[i] }

// SelectedSamples returns { i : mask[i] != 0 } in sample order, and
// the parallel per-selected-sample group mask bytes.
func (m *Masks) SelectedSamples() (samples []int, groupOf []byte) {
	for i, b := range m.mask {
		if b != 0 {
			samples = append(samples, i)
			groupOf = append(groupOf, b)
		}
	}
	return samples, groupOf
}
