// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import "strings"

// Ordering defines the order of rows provided or required by an operator. A
// negative value indicates descending order on the column id "-(value)".
type Ordering []OrderingColumn

// Empty returns true if the ordering is empty or unset.
func (o Ordering) Empty() bool {
	return len(o) == 0
}

// ColSet returns the set of column IDs used in the ordering.
func (o Ordering) ColSet() ColSet {
	var colSet ColSet
	for _, col := range o {
		colSet.Add(int(col.ID()))
	}
	return colSet
}

// Columns returns the column IDs used in the ordering, in ordering order.
func (o Ordering) Columns() ColList {
	if len(o) == 0 {
		return nil
	}
	cols := make(ColList, len(o))
	for i, col := range o {
		cols[i] = col.ID()
	}
	return cols
}

// Equals returns true if the two orderings are identical.
func (o Ordering) Equals(rhs Ordering) bool {
	if len(o) != len(rhs) {
		return false
	}
	for i := range o {
		if o[i] != rhs[i] {
			return false
		}
	}
	return true
}

// CommonPrefix returns the longest ordering that is a prefix of both
// orderings.
func (o Ordering) CommonPrefix(other Ordering) Ordering {
	for i := range o {
		if i >= len(other) || o[i] != other[i] {
			return o[:i]
		}
	}
	return o
}

func (o Ordering) String() string {
	return o.Format(nil)
}

// Format prints the ordering as "+a,-b", using the metadata aliases when md
// is not nil.
func (o Ordering) Format(md *Metadata) string {
	var buf strings.Builder
	for i, col := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if col.Descending() {
			buf.WriteByte('-')
		} else {
			buf.WriteByte('+')
		}
		buf.WriteString(md.ColumnLabel(col.ID()))
	}
	return buf.String()
}
