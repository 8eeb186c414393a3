// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package localex

import (
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/props"
)

// pruneMarkDistinctCols removes the distinct columns that are functionally
// dependent on the other distinct columns, which saves hashing and storing
// their values. For example, in
//
//	mark-distinct distinct=(unique,c1,c2)
//	 └── inner-join
//	      ├── assign-unique-id unique
//	      │    └── table-scan (c1,c2)
//	      └── ...
//
// rows that agree on unique also agree on c1 and c2, so the distinct columns
// can be reduced to (unique).
//
// In the list of local properties, a constant column is determined by the
// columns of the properties before it. The scan stops at the first property
// that references a column outside the distinct columns, since the constants
// after it may depend on that column. At least one column is always kept.
func pruneMarkDistinctCols(distinct opt.ColList, local []props.LocalProperty) opt.ColList {
	if len(local) == 0 || len(distinct) == 0 {
		return distinct
	}
	distinctSet := opt.ColListToSet(distinct)
	var redundant opt.ColSet
	for _, p := range local {
		if c, ok := p.(props.Constant); ok {
			redundant.Add(int(c.Col))
			continue
		}
		if !p.Columns().SubsetOf(distinctSet) {
			break
		}
	}

	remaining := make(opt.ColList, 0, len(distinct))
	for _, col := range distinct {
		if !redundant.Contains(int(col)) {
			remaining = append(remaining, col)
		}
	}
	if len(remaining) == 0 {
		// All the distinct columns are constant; keep one of them.
		return opt.ColList{distinct[0]}
	}
	return remaining
}
