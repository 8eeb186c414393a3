// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/localex/pkg/util"
)

// ColumnID uniquely identifies the usage of a column within the scope of a
// plan. ColumnID 0 is reserved to mean "unknown column". See the comment for
// Metadata for more details.
type ColumnID int32

// index returns the index of the column in Metadata.cols. It's biased by 1, so
// that ColumnID 0 can be be reserved to mean "unknown column".
func (c ColumnID) index() int {
	return int(c - 1)
}

// ColSet efficiently stores an unordered set of column ids.
type ColSet = util.FastIntSet

// ColList is a list of column ids. Unlike a ColSet, the order of the columns
// is significant (for example in the output of an operator or in a sort
// prefix).
type ColList = []ColumnID

// ColumnMeta stores information about one of the columns stored in the
// metadata.
type ColumnMeta struct {
	// MetaID is the identifier for this column that is unique within the plan
	// metadata.
	MetaID ColumnID

	// Alias is the most recent user-assigned alias for the column.
	Alias string
}

// OrderingColumn is the ColumnID for a column that is part of an ordering,
// except that it can be negated to indicate a descending ordering on that
// column.
type OrderingColumn int32

// MakeOrderingColumn initializes an ordering column with a ColumnID and a flag
// indicating whether the direction is descending.
func MakeOrderingColumn(id ColumnID, descending bool) OrderingColumn {
	if descending {
		return OrderingColumn(-id)
	}
	return OrderingColumn(id)
}

// ID returns the ColumnID for this OrderingColumn.
func (c OrderingColumn) ID() ColumnID {
	if c < 0 {
		return ColumnID(-c)
	}
	return ColumnID(c)
}

// Ascending returns true if the ordering on this column is ascending.
func (c OrderingColumn) Ascending() bool {
	return c > 0
}

// Descending returns true if the ordering on this column is descending.
func (c OrderingColumn) Descending() bool {
	return c < 0
}

func (c OrderingColumn) String() string {
	if c.Descending() {
		return fmt.Sprintf("-%d", c.ID())
	}
	return fmt.Sprintf("+%d", c.ID())
}

// MakeColSet returns a set initialized with the given column ids.
func MakeColSet(vals ...ColumnID) ColSet {
	var r ColSet
	for _, v := range vals {
		r.Add(int(v))
	}
	return r
}

// ColListToSet converts a column id list to a column id set.
func ColListToSet(colList ColList) ColSet {
	var r ColSet
	for _, col := range colList {
		r.Add(int(col))
	}
	return r
}

// ColSetToList converts a column id set to a column id list.
func ColSetToList(colSet ColSet) ColList {
	colList := make(ColList, 0, colSet.Len())
	colSet.ForEach(func(i int) {
		colList = append(colList, ColumnID(i))
	})
	return colList
}

// ColListEquals returns true if the two lists contain the same columns in the
// same order.
func ColListEquals(a, b ColList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ColListContainsAll returns true if every column in cols is part of list.
func ColListContainsAll(list ColList, cols ColList) bool {
	return ColListToSet(cols).SubsetOf(ColListToSet(list))
}

// FormatColList returns the list as "(a,b)". Columns are labeled with their
// metadata alias when md is not nil, and with their id otherwise.
func FormatColList(md *Metadata, cols ColList) string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, col := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(md.ColumnLabel(col))
	}
	buf.WriteByte(')')
	return buf.String()
}

// FormatColSet is like FormatColList, but for a set of columns. The columns
// are printed in increasing id order.
func FormatColSet(md *Metadata, cols ColSet) string {
	return FormatColList(md, ColSetToList(cols))
}
