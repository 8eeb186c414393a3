// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"strings"

	"github.com/cockroachdb/localex/pkg/sql/opt"
)

// LocalProperty is a guarantee about the organization of rows within a single
// stream. A list of local properties is interpreted in order: each property
// holds within every group of rows that is defined by the properties before
// it. For example, [grouped(a), sorted(+b)] describes a stream in which the
// rows of each value of a are contiguous and, within each such group, sorted
// ascending on b.
type LocalProperty interface {
	// Columns returns the set of columns the property refers to.
	Columns() opt.ColSet

	// Translate maps the columns of the property through fn. The second return
	// value is false if any of the columns cannot be mapped.
	Translate(fn func(opt.ColumnID) (opt.ColumnID, bool)) (LocalProperty, bool)

	// Equals returns true if other is a property of the same kind on the same
	// columns.
	Equals(other LocalProperty) bool

	// Format prints the property, labeling columns with their metadata alias
	// when md is not nil.
	Format(md *opt.Metadata) string

	String() string

	// isSimplifiedBy returns true if the known property, when established,
	// makes progress towards this desired property.
	isSimplifiedBy(known LocalProperty) bool

	// withConstants returns the remainder of the property once the given
	// columns are known to be constant, or nil if nothing remains to be
	// satisfied.
	withConstants(constants opt.ColSet) LocalProperty
}

// Grouped states that the rows for each distinct combination of Cols are
// contiguous within the stream.
type Grouped struct {
	Cols opt.ColSet
}

// Sorted states that the rows are ordered on a single column, in the
// direction encoded by the ordering column.
type Sorted struct {
	Col opt.OrderingColumn
}

// Constant states that a column has a single value within the stream (or
// within the group established by the preceding properties).
type Constant struct {
	Col opt.ColumnID
}

var _ LocalProperty = Grouped{}
var _ LocalProperty = Sorted{}
var _ LocalProperty = Constant{}

// MakeGrouped returns a Grouped property on the given columns.
func MakeGrouped(cols ...opt.ColumnID) Grouped {
	return Grouped{Cols: opt.MakeColSet(cols...)}
}

// GroupedOn returns the single-element property list [grouped(cols)].
func GroupedOn(cols opt.ColList) []LocalProperty {
	return []LocalProperty{Grouped{Cols: opt.ColListToSet(cols)}}
}

// SortedOn returns one Sorted property per column of the ordering.
func SortedOn(ordering opt.Ordering) []LocalProperty {
	if len(ordering) == 0 {
		return nil
	}
	res := make([]LocalProperty, len(ordering))
	for i, col := range ordering {
		res[i] = Sorted{Col: col}
	}
	return res
}

// Columns is part of the LocalProperty interface.
func (g Grouped) Columns() opt.ColSet {
	return g.Cols
}

// Translate is part of the LocalProperty interface.
func (g Grouped) Translate(fn func(opt.ColumnID) (opt.ColumnID, bool)) (LocalProperty, bool) {
	var res opt.ColSet
	ok := true
	g.Cols.ForEach(func(i int) {
		to, found := fn(opt.ColumnID(i))
		if !found {
			ok = false
			return
		}
		res.Add(int(to))
	})
	if !ok {
		return nil, false
	}
	return Grouped{Cols: res}, true
}

// Equals is part of the LocalProperty interface.
func (g Grouped) Equals(other LocalProperty) bool {
	o, ok := other.(Grouped)
	return ok && g.Cols.Equals(o.Cols)
}

// Format is part of the LocalProperty interface.
func (g Grouped) Format(md *opt.Metadata) string {
	return "grouped" + opt.FormatColSet(md, g.Cols)
}

func (g Grouped) String() string {
	return g.Format(nil)
}

func (g Grouped) isSimplifiedBy(known LocalProperty) bool {
	return known.Columns().SubsetOf(g.Cols)
}

func (g Grouped) withConstants(constants opt.ColSet) LocalProperty {
	remaining := g.Cols.Difference(constants)
	if remaining.Empty() {
		return nil
	}
	return Grouped{Cols: remaining}
}

// Columns is part of the LocalProperty interface.
func (s Sorted) Columns() opt.ColSet {
	return opt.MakeColSet(s.Col.ID())
}

// Translate is part of the LocalProperty interface.
func (s Sorted) Translate(fn func(opt.ColumnID) (opt.ColumnID, bool)) (LocalProperty, bool) {
	to, ok := fn(s.Col.ID())
	if !ok {
		return nil, false
	}
	return Sorted{Col: opt.MakeOrderingColumn(to, s.Col.Descending())}, true
}

// Equals is part of the LocalProperty interface.
func (s Sorted) Equals(other LocalProperty) bool {
	o, ok := other.(Sorted)
	return ok && s.Col == o.Col
}

// Format is part of the LocalProperty interface.
func (s Sorted) Format(md *opt.Metadata) string {
	return "sorted(" + opt.Ordering{s.Col}.Format(md) + ")"
}

func (s Sorted) String() string {
	return s.Format(nil)
}

func (s Sorted) isSimplifiedBy(known LocalProperty) bool {
	if _, ok := known.(Constant); ok {
		return true
	}
	return s.Equals(known)
}

func (s Sorted) withConstants(constants opt.ColSet) LocalProperty {
	if constants.Contains(int(s.Col.ID())) {
		return nil
	}
	return s
}

// Columns is part of the LocalProperty interface.
func (c Constant) Columns() opt.ColSet {
	return opt.MakeColSet(c.Col)
}

// Translate is part of the LocalProperty interface.
func (c Constant) Translate(fn func(opt.ColumnID) (opt.ColumnID, bool)) (LocalProperty, bool) {
	to, ok := fn(c.Col)
	if !ok {
		return nil, false
	}
	return Constant{Col: to}, true
}

// Equals is part of the LocalProperty interface.
func (c Constant) Equals(other LocalProperty) bool {
	o, ok := other.(Constant)
	return ok && c.Col == o.Col
}

// Format is part of the LocalProperty interface.
func (c Constant) Format(md *opt.Metadata) string {
	return "constant(" + md.ColumnLabel(c.Col) + ")"
}

func (c Constant) String() string {
	return c.Format(nil)
}

func (c Constant) isSimplifiedBy(known LocalProperty) bool {
	return c.Equals(known)
}

func (c Constant) withConstants(constants opt.ColSet) LocalProperty {
	if constants.Contains(int(c.Col)) {
		return nil
	}
	return c
}

// Normalize removes from each property the columns that are already made
// constant by the properties preceding it. The result has one entry per
// input property; an entry is nil when nothing of the property remains.
func Normalize(local []LocalProperty) []LocalProperty {
	res := make([]LocalProperty, len(local))
	var constants opt.ColSet
	for i, p := range local {
		res[i] = p.withConstants(constants)
		constants.UnionWith(p.Columns())
	}
	return res
}

// NormalizeAndPrune is like Normalize, but drops the properties that are
// entirely implied by their predecessors. After pruning, each column appears
// in at most one property.
func NormalizeAndPrune(local []LocalProperty) []LocalProperty {
	var res []LocalProperty
	for _, p := range Normalize(local) {
		if p != nil {
			res = append(res, p)
		}
	}
	return res
}

// Match determines which of the desired properties are already provided by
// the actual ones. The result has one entry per desired property: nil if the
// property is satisfied, otherwise the remainder of the property that still
// needs to be established.
//
// Actual properties are consumed in order for as long as every previous
// desired property has been fully satisfied; a desired property that is not
// satisfied breaks the correspondence for all the ones after it, except for
// the parts made redundant by known constants.
func Match(actual, desired []LocalProperty) []LocalProperty {
	actual = NormalizeAndPrune(actual)
	res := make([]LocalProperty, len(desired))

	var constants opt.ColSet
	consumeMore := true
	next := 0
	for i, want := range desired {
		for consumeMore && next < len(actual) && want.isSimplifiedBy(actual[next]) {
			constants.UnionWith(actual[next].Columns())
			next++
		}
		res[i] = want.withConstants(constants)
		// Only continue processing actual properties if all previous desired
		// properties were fully satisfied.
		consumeMore = consumeMore && res[i] == nil
	}
	return res
}

// Translate maps every property of the list through fn. Constants that cannot
// be translated are skipped; the list is truncated at the first other property
// that cannot be translated, since the properties after it are only
// meaningful within the groups it defines.
func Translate(
	local []LocalProperty, fn func(opt.ColumnID) (opt.ColumnID, bool),
) []LocalProperty {
	var res []LocalProperty
	for _, p := range local {
		to, ok := p.Translate(fn)
		if ok {
			res = append(res, to)
			continue
		}
		if _, isConst := p.(Constant); isConst {
			continue
		}
		break
	}
	return res
}

// Equal returns true if the two lists contain equal properties in the same
// order.
func Equal(a, b []LocalProperty) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Format prints a list of properties as "[grouped(a), sorted(+b)]". Nil
// entries (as returned by Match) are printed as "-".
func Format(md *opt.Metadata, local []LocalProperty) string {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, p := range local {
		if i > 0 {
			buf.WriteString(", ")
		}
		if p == nil {
			buf.WriteByte('-')
			continue
		}
		buf.WriteString(p.Format(md))
	}
	buf.WriteByte(']')
	return buf.String()
}
