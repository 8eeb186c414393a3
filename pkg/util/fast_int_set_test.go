// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package util

import (
	"reflect"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestFastIntSetString(t *testing.T) {
	testCases := []struct {
		vals     []int
		expected string
	}{
		{nil, "()"},
		{[]int{3}, "(3)"},
		{[]int{1, 2}, "(1,2)"},
		{[]int{0, 1, 2, 5, 6, 10}, "(0-2,5,6,10)"},
		{[]int{63, 64, 65}, "(63-65)"},
		// Negative values are never shown as ranges.
		{[]int{-3, -1, 0, 1, 2, 100}, "(-3,-1,0-2,100)"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, MakeFastIntSet(tc.vals...).String(), "%v", tc.vals)
	}
}

func TestFastIntSetBasics(t *testing.T) {
	t.Run("small", func(t *testing.T) {
		s := MakeFastIntSet(7, 3)
		require.Equal(t, 2, s.Len())
		require.Equal(t, []int{3, 7}, s.Ordered())
		require.True(t, s.Contains(3))
		require.False(t, s.Contains(-1))
		require.False(t, s.Contains(smallCutoff))

		next, ok := s.Next(-5)
		require.True(t, ok)
		require.Equal(t, 3, next)
		next, ok = s.Next(4)
		require.True(t, ok)
		require.Equal(t, 7, next)
		_, ok = s.Next(8)
		require.False(t, ok)

		s.Remove(100)
		s.Remove(3)
		require.Equal(t, []int{7}, s.Ordered())
		s.Remove(7)
		require.True(t, s.Empty())
		require.Nil(t, s.Ordered())
	})

	t.Run("large", func(t *testing.T) {
		s := MakeFastIntSet(5, 0, 2*smallCutoff, -2)
		require.Equal(t, 4, s.Len())
		require.Equal(t, []int{-2, 0, 5, 2 * smallCutoff}, s.Ordered())
		require.True(t, s.Contains(2*smallCutoff))
		require.True(t, s.Contains(-2))
		require.False(t, s.Contains(6))

		next, ok := s.Next(-10)
		require.True(t, ok)
		require.Equal(t, -2, next)
		next, ok = s.Next(6)
		require.True(t, ok)
		require.Equal(t, 2*smallCutoff, next)
		_, ok = s.Next(2*smallCutoff + 1)
		require.False(t, ok)

		var visited []int
		s.ForEach(func(i int) { visited = append(visited, i) })
		require.Equal(t, s.Ordered(), visited)

		for _, v := range []int{2 * smallCutoff, -2, 0, 5} {
			s.Remove(v)
		}
		require.True(t, s.Empty())
		require.Equal(t, 0, s.Len())
	})
}

func TestFastIntSetSetOps(t *testing.T) {
	testCases := []struct {
		lhs, rhs     []int
		union        string
		intersection string
		difference   string
		intersects   bool
		subsetOf     bool
	}{
		{
			lhs: []int{1, 2, 3}, rhs: []int{2, 3, 4},
			union: "(1-4)", intersection: "(2,3)", difference: "(1)", intersects: true,
		},
		{
			lhs: []int{1}, rhs: []int{5},
			union: "(1,5)", intersection: "()", difference: "(1)",
		},
		{
			lhs: []int{2}, rhs: []int{1, 2, 3},
			union: "(1-3)", intersection: "(2)", difference: "()", intersects: true, subsetOf: true,
		},
		{
			lhs: []int{1, 2}, rhs: []int{1, 2},
			union: "(1,2)", intersection: "(1,2)", difference: "()", intersects: true, subsetOf: true,
		},
		{
			lhs: []int{1, 100}, rhs: []int{1, 2},
			union: "(1,2,100)", intersection: "(1)", difference: "(100)", intersects: true,
		},
		{
			lhs: []int{1}, rhs: []int{1, 200},
			union: "(1,200)", intersection: "(1)", difference: "()", intersects: true, subsetOf: true,
		},
		{
			lhs: []int{-1, 1}, rhs: []int{1},
			union: "(-1,1)", intersection: "(1)", difference: "(-1)", intersects: true,
		},
	}
	for _, tc := range testCases {
		lhs, rhs := MakeFastIntSet(tc.lhs...), MakeFastIntSet(tc.rhs...)
		before := lhs.String()

		require.Equal(t, tc.union, lhs.Union(rhs).String(), "%v union %v", tc.lhs, tc.rhs)
		require.Equal(t, tc.intersection, lhs.Intersection(rhs).String(), "%v intersection %v", tc.lhs, tc.rhs)
		require.Equal(t, tc.difference, lhs.Difference(rhs).String(), "%v difference %v", tc.lhs, tc.rhs)
		require.Equal(t, tc.intersects, lhs.Intersects(rhs), "%v intersects %v", tc.lhs, tc.rhs)
		require.Equal(t, tc.subsetOf, lhs.SubsetOf(rhs), "%v subset of %v", tc.lhs, tc.rhs)
		require.Equal(t, tc.union == tc.intersection, lhs.Equals(rhs), "%v equals %v", tc.lhs, tc.rhs)
		require.Equal(t, before, lhs.String(), "operands must not be modified")

		s := lhs.Copy()
		s.UnionWith(rhs)
		require.Equal(t, tc.union, s.String())
		s = lhs.Copy()
		s.IntersectionWith(rhs)
		require.Equal(t, tc.intersection, s.String())
		s = lhs.Copy()
		s.DifferenceWith(rhs)
		require.Equal(t, tc.difference, s.String())
	}
}

func TestFastIntSetEqualsAcrossRepresentations(t *testing.T) {
	s := MakeFastIntSet(1, 2, 3*smallCutoff)
	s.Remove(3 * smallCutoff)
	require.True(t, s.Equals(MakeFastIntSet(1, 2)))
	require.True(t, MakeFastIntSet(1, 2).Equals(s))
	require.True(t, s.SubsetOf(MakeFastIntSet(1, 2)))
}

func TestFastIntSetCopy(t *testing.T) {
	s := MakeFastIntSet(1, 100)
	c := s.Copy()
	c.Add(2)
	c.Remove(100)
	require.Equal(t, "(1,100)", s.String())
	require.Equal(t, "(1,2)", c.String())

	var d FastIntSet
	d.CopyFrom(s)
	d.Remove(1)
	require.Equal(t, "(1,100)", s.String())
	require.Equal(t, "(100)", d.String())

	// Copying a small set drops the large representation.
	d.CopyFrom(MakeFastIntSet(3))
	require.Equal(t, []int{3}, d.Ordered())
	d.Add(4)
	require.Equal(t, "(3,4)", d.String())
}

func TestFastIntSetMatchesMap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("adds and removes match a map", prop.ForAll(
		func(adds, removes []int) bool {
			var s FastIntSet
			model := make(map[int]bool)
			for _, v := range adds {
				s.Add(v)
				model[v] = true
			}
			for _, v := range removes {
				s.Remove(v)
				delete(model, v)
			}

			var expected []int
			for v := range model {
				expected = append(expected, v)
			}
			sort.Ints(expected)
			if s.Len() != len(expected) || s.Empty() != (len(expected) == 0) {
				return false
			}
			if !reflect.DeepEqual(expected, s.Ordered()) {
				return false
			}
			for v := -10; v <= 150; v++ {
				if s.Contains(v) != model[v] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-10, 150)),
		gen.SliceOf(gen.IntRange(-10, 150)),
	))

	properties.TestingRun(t)
}
