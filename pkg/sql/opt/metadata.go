// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import "fmt"

// Metadata assigns unique ids to the columns referenced by a plan. Columns
// are allocated sequentially starting at 1; ColumnID 0 is never handed out.
//
// The metadata is only used when a plan is built or printed. The exchange
// placement pass itself never allocates columns: every exchange it inserts
// produces exactly the columns of its inputs.
type Metadata struct {
	cols   []ColumnMeta
	byName map[string]ColumnID
}

// AddColumn assigns a new unique id to a column with the given alias and
// returns it.
func (md *Metadata) AddColumn(alias string) ColumnID {
	id := ColumnID(len(md.cols) + 1)
	md.cols = append(md.cols, ColumnMeta{MetaID: id, Alias: alias})
	if md.byName == nil {
		md.byName = make(map[string]ColumnID)
	}
	if _, ok := md.byName[alias]; !ok {
		md.byName[alias] = id
	}
	return id
}

// ColumnByAlias returns the first column that was added with the given alias.
func (md *Metadata) ColumnByAlias(alias string) (ColumnID, bool) {
	id, ok := md.byName[alias]
	return id, ok
}

// NumColumns returns the count of columns tracked by this Metadata instance.
func (md *Metadata) NumColumns() int {
	return len(md.cols)
}

// ColumnMeta looks up the metadata for the column associated with the given
// column id. The same *ColumnMeta pointer is always returned for a given
// column.
func (md *Metadata) ColumnMeta(colID ColumnID) *ColumnMeta {
	return &md.cols[colID.index()]
}

// ColumnLabel returns the alias of the column, or its id if there is no
// metadata for it. A nil Metadata is allowed.
func (md *Metadata) ColumnLabel(colID ColumnID) string {
	if md == nil || colID <= 0 || colID.index() >= len(md.cols) {
		return fmt.Sprintf("%d", colID)
	}
	if alias := md.cols[colID.index()].Alias; alias != "" {
		return alias
	}
	return fmt.Sprintf("column%d", colID)
}
