// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package planyaml reads physical plans written in YAML. It is used by the
// localex command and by tests.
//
// A plan is a tree of nodes. Each node names its operator with op, and its
// children with input, left and right, sources, and so on, depending on the
// operator. Columns are referenced by name; each distinct name is a distinct
// column. For example:
//
//	op: output
//	cols: [a, total]
//	ordering: [+a]
//	input:
//	  op: aggregation
//	  keys: [a]
//	  aggregates:
//	    - {col: total, func: sum}
//	  input:
//	    op: table-scan
//	    table: orders
//	    cols: [a, b]
package planyaml

// nodeSpec is the YAML representation of a plan node. Only the fields that
// are meaningful for the operator may be set.
type nodeSpec struct {
	Op string `yaml:"op"`
	// ID optionally fixes the id of the node.
	ID int32 `yaml:"id"`

	Table string `yaml:"table"`
	Index string `yaml:"index"`
	Name  string `yaml:"name"`

	Cols   []string `yaml:"cols"`
	Output []string `yaml:"output"`
	Names  []string `yaml:"names"`
	// Column is the single column added by the node: the unique id, the
	// distinct marker, the row number, the rank or the explain output.
	Column string `yaml:"column"`

	Ordering     []string `yaml:"ordering"`
	SingleStream bool     `yaml:"single_stream"`
	Partitioning []string `yaml:"partitioning"`
	// Handle is the partitioning handle of a table writer or exchange.
	Handle string `yaml:"handle"`

	Rows        int      `yaml:"rows"`
	Predicate   string   `yaml:"predicate"`
	Constants   []string `yaml:"constants"`
	Assignments []string `yaml:"assignments"`

	Count    int64  `yaml:"count"`
	Step     string `yaml:"step"`
	Partial  bool   `yaml:"partial"`
	WithTies bool   `yaml:"with_ties"`

	Distinct     []string   `yaml:"distinct"`
	Keys         []string   `yaml:"keys"`
	GroupingSets *int       `yaml:"grouping_sets"`
	GlobalSets   int        `yaml:"global_sets"`
	Aggregates   []funcSpec `yaml:"aggregates"`
	AggType      string     `yaml:"agg_type"`
	PartitionBy  []string   `yaml:"partition_by"`
	Functions    []funcSpec `yaml:"functions"`
	MaxRows      int        `yaml:"max_rows"`
	MaxRank      int        `yaml:"max_rank"`
	Target       string     `yaml:"target"`

	// Type is the join type or the exchange type.
	Type     string   `yaml:"type"`
	Scope    string   `yaml:"scope"`
	Criteria []string `yaml:"criteria"`
	Filter   string   `yaml:"filter"`

	SourceCol    string `yaml:"source_col"`
	FilteringCol string `yaml:"filtering_col"`
	Match        string `yaml:"match"`

	Input       *nodeSpec   `yaml:"input"`
	Left        *nodeSpec   `yaml:"left"`
	Right       *nodeSpec   `yaml:"right"`
	Sources     []*nodeSpec `yaml:"sources"`
	Layouts     [][]string  `yaml:"layouts"`
	Filtering   *nodeSpec   `yaml:"filtering"`
	Probe       *nodeSpec   `yaml:"probe"`
	IndexSource *nodeSpec   `yaml:"index_source"`
	Subquery    *nodeSpec   `yaml:"subquery"`
}

// funcSpec describes an aggregate or window function.
type funcSpec struct {
	Col  string `yaml:"col"`
	Func string `yaml:"func"`
	// Decomposable defaults to true.
	Decomposable *bool `yaml:"decomposable"`
}
