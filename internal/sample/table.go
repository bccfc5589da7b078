// Package sample implements the sample-metadata table: an ordered list
// of samples with structured key=value attributes, queryable by name
// or by a predicate over those attributes.
package sample

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Row is one sample-metadata table entry. A sample's position in table
// order is its sample index; sample i owns haplotype columns 2*i and
// 2*i+1 of the genotype matrix.
type Row struct {
	Name  string
	Attrs map[string]string
}

// Table is the ordered, queryable list of sample rows.
type Table struct {
	rows   []Row
	byName map[string]int
}

// New builds a Table from rows already in their canonical order.
func New(rows []Row) *Table {
	t := &Table{rows: rows, byName: make(map[string]int, len(rows))}
	for i, r := range rows {
		t.byName[r.Name] = i
	}
	return t
}

// Parse reads the `.spl` text table format: one row per line,
// `name<TAB>key=value<TAB>key=value...`.
func Parse(r io.Reader) (*Table, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		row := Row{Name: fields[0], Attrs: map[string]string{}}
		for _, kv := range fields[1:] {
			if kv == "" {
				continue
			}
			eq := strings.IndexByte(kv, '=')
			if eq < 0 {
				return nil, fmt.Errorf("sample table: malformed attribute %q for sample %q", kv, row.Name)
			}
			row.Attrs[kv[:eq]] = kv[eq+1:]
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(rows), nil
}

// Len returns the number of samples.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the row at sample index i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Names returns the sample names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.rows))
	for i, r := range t.rows {
		names[i] = r.Name
	}
	return names
}

// IndexOf returns the sample index for name, or (0, false) if absent.
func (t *Table) IndexOf(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// Attr returns the value of key for the named sample.
func (t *Table) Attr(name, key string) (string, bool) {
	i, ok := t.byName[name]
	if !ok {
		return "", false
	}
	v, ok := t.rows[i].Attrs[key]
	return v, ok
}
