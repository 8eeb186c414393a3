// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props_test

import (
	"testing"

	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/props"
	"github.com/stretchr/testify/require"
)

const (
	a opt.ColumnID = iota + 1
	b
	c
	x
)

func asc(col opt.ColumnID) props.Sorted {
	return props.Sorted{Col: opt.MakeOrderingColumn(col, false)}
}

func desc(col opt.ColumnID) props.Sorted {
	return props.Sorted{Col: opt.MakeOrderingColumn(col, true)}
}

func grouped(cols ...opt.ColumnID) props.Grouped {
	return props.MakeGrouped(cols...)
}

func constant(col opt.ColumnID) props.Constant {
	return props.Constant{Col: col}
}

func list(p ...props.LocalProperty) []props.LocalProperty {
	return p
}

func TestNormalize(t *testing.T) {
	in := list(grouped(a), grouped(a, b), constant(b), asc(c))
	require.Equal(t,
		"[grouped(1), grouped(2), -, sorted(+3)]",
		props.Format(nil, props.Normalize(in)),
	)
	require.Equal(t,
		"[grouped(1), grouped(2), sorted(+3)]",
		props.Format(nil, props.NormalizeAndPrune(in)),
	)
	require.Len(t, props.NormalizeAndPrune(nil), 0)
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		actual   []props.LocalProperty
		desired  []props.LocalProperty
		expected string
	}{
		{
			actual:   list(grouped(a)),
			desired:  list(grouped(a)),
			expected: "[-]",
		},
		{
			// Grouping on (a,b) does not imply grouping on a.
			actual:   list(grouped(a, b)),
			desired:  list(grouped(a)),
			expected: "[grouped(1)]",
		},
		{
			actual:   list(grouped(a)),
			desired:  list(grouped(a, b)),
			expected: "[grouped(2)]",
		},
		{
			actual:   list(constant(a), grouped(b)),
			desired:  list(grouped(a, b)),
			expected: "[-]",
		},
		{
			actual:   list(grouped(a), asc(b)),
			desired:  list(grouped(a), asc(b)),
			expected: "[-, -]",
		},
		{
			actual:   list(grouped(a), desc(b)),
			desired:  list(grouped(a), asc(b)),
			expected: "[-, sorted(+2)]",
		},
		{
			// Once a desired property is unsatisfied, no more actual properties
			// are consumed.
			actual:   list(asc(b)),
			desired:  list(grouped(a), asc(b)),
			expected: "[grouped(1), sorted(+2)]",
		},
		{
			// A constant simplifies any sort.
			actual:   list(constant(x), asc(b)),
			desired:  list(asc(b), asc(c)),
			expected: "[-, sorted(+3)]",
		},
		{
			actual:   nil,
			desired:  list(grouped(a), asc(b)),
			expected: "[grouped(1), sorted(+2)]",
		},
		{
			actual:   list(grouped(a)),
			desired:  nil,
			expected: "[]",
		},
		{
			// Normalization of the actual properties makes the constant on b
			// redundant once a and b are grouped.
			actual:   list(grouped(a, b), constant(b), asc(c)),
			desired:  list(grouped(a, b), asc(c)),
			expected: "[-, -]",
		},
	}
	for _, tc := range testCases {
		t.Run(props.Format(nil, tc.actual)+" "+props.Format(nil, tc.desired), func(t *testing.T) {
			require.Equal(t, tc.expected, props.Format(nil, props.Match(tc.actual, tc.desired)))
		})
	}
}

func TestTranslate(t *testing.T) {
	mapping := map[opt.ColumnID]opt.ColumnID{a: 10, b: 20}
	fn := func(col opt.ColumnID) (opt.ColumnID, bool) {
		to, ok := mapping[col]
		return to, ok
	}

	in := list(grouped(a), constant(x), desc(b), asc(c), asc(a))
	require.Equal(t,
		"[grouped(10), sorted(-20)]",
		props.Format(nil, props.Translate(in, fn)),
	)

	// A grouping with any unmapped column cannot be translated.
	require.Len(t, props.Translate(list(grouped(a, c), asc(b)), fn), 0)
}

func TestLocalPropertyEquals(t *testing.T) {
	require.True(t, grouped(a, b).Equals(grouped(b, a)))
	require.False(t, grouped(a).Equals(constant(a)))
	require.False(t, asc(a).Equals(desc(a)))
	require.True(t, constant(a).Equals(constant(a)))
	require.True(t, props.Equal(list(grouped(a), asc(b)), list(grouped(a), asc(b))))
	require.False(t, props.Equal(list(grouped(a)), list(grouped(a), asc(b))))
}

func TestLocalPropertyFormat(t *testing.T) {
	var md opt.Metadata
	colA := md.AddColumn("a")
	colB := md.AddColumn("b")
	require.Equal(t,
		"[grouped(a,b), sorted(-b), constant(a)]",
		props.Format(&md, list(grouped(colA, colB), desc(colB), constant(colA))),
	)
	require.Equal(t,
		"[sorted(+a), sorted(-b)]",
		props.Format(&md, props.SortedOn(opt.Ordering{
			opt.MakeOrderingColumn(colA, false), opt.MakeOrderingColumn(colB, true),
		})),
	)
	require.Equal(t, "[grouped(a)]", props.Format(&md, props.GroupedOn(opt.ColList{colA})))
}
