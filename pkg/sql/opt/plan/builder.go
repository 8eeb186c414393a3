// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import "github.com/cockroachdb/localex/pkg/sql/opt"

// Builder holds the state shared by the code that constructs a plan: the
// column metadata and the node id allocator.
type Builder struct {
	md  *opt.Metadata
	ids IDAllocator
}

// Init initializes the builder. A nil md creates a fresh Metadata.
func (b *Builder) Init(md *opt.Metadata) {
	if md == nil {
		md = &opt.Metadata{}
	}
	*b = Builder{md: md}
}

// Metadata returns the column metadata of the plan.
func (b *Builder) Metadata() *opt.Metadata {
	return b.md
}

// IDs returns the allocator that hands out node ids.
func (b *Builder) IDs() *IDAllocator {
	return &b.ids
}

// Base returns the Base of a new node, with a fresh id.
func (b *Builder) Base() Base {
	return Base{NodeID: b.ids.NextID()}
}

// BaseWithID returns the Base of a new node with an explicit id. Ids handed
// out later are guaranteed to be larger.
func (b *Builder) BaseWithID(id ID) Base {
	b.ids.Reserve(id)
	return Base{NodeID: id}
}

// Col returns the column with the given alias, adding it to the metadata if
// it does not exist yet.
func (b *Builder) Col(alias string) opt.ColumnID {
	if col, ok := b.md.ColumnByAlias(alias); ok {
		return col
	}
	return b.md.AddColumn(alias)
}

// Cols is like Col for a list of aliases.
func (b *Builder) Cols(aliases ...string) opt.ColList {
	cols := make(opt.ColList, len(aliases))
	for i, alias := range aliases {
		cols[i] = b.Col(alias)
	}
	return cols
}

// Asc returns an ascending ordering column on the column with the given
// alias.
func (b *Builder) Asc(alias string) opt.OrderingColumn {
	return opt.MakeOrderingColumn(b.Col(alias), false /* descending */)
}

// Desc returns a descending ordering column on the column with the given
// alias.
func (b *Builder) Desc(alias string) opt.OrderingColumn {
	return opt.MakeOrderingColumn(b.Col(alias), true /* descending */)
}
