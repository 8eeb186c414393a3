// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package planyaml

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"gopkg.in/yaml.v2"
)

// Parse reads a plan from its YAML description. Columns are added to the
// metadata of b and node ids are allocated by b. Unknown fields are errors.
func Parse(data []byte, b *plan.Builder) (plan.Node, error) {
	var spec nodeSpec
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return nil, errors.Wrap(err, "parsing plan")
	}
	p := parser{b: b, seen: make(map[plan.ID]struct{})}
	n, err := p.build(&spec)
	if err != nil {
		return nil, errors.Wrap(err, "invalid plan")
	}
	return n, nil
}

// Load is like Parse, but reads the description from r.
func Load(r io.Reader, b *plan.Builder) (plan.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading plan")
	}
	return Parse(data, b)
}

type parser struct {
	b    *plan.Builder
	seen map[plan.ID]struct{}
}

func (p *parser) base(s *nodeSpec) (plan.Base, error) {
	var base plan.Base
	if s.ID != 0 {
		if s.ID < 0 {
			return base, errors.Newf("invalid node id %d", s.ID)
		}
		base = p.b.BaseWithID(plan.ID(s.ID))
	} else {
		base = p.b.Base()
	}
	if _, ok := p.seen[base.NodeID]; ok {
		return base, errors.Newf("duplicate node id %d", base.NodeID)
	}
	p.seen[base.NodeID] = struct{}{}
	return base, nil
}

func (p *parser) cols(names []string) opt.ColList {
	if len(names) == 0 {
		return nil
	}
	return p.b.Cols(names...)
}

func (p *parser) col(field, name string) (opt.ColumnID, error) {
	if name == "" {
		return 0, errors.Newf("%s is required", field)
	}
	return p.b.Col(name), nil
}

func (p *parser) ordering(cols []string) (opt.Ordering, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	res := make(opt.Ordering, len(cols))
	for i, c := range cols {
		if len(c) < 2 || (c[0] != '+' && c[0] != '-') {
			return nil, errors.Newf("invalid ordering column %q: expected +col or -col", c)
		}
		res[i] = opt.MakeOrderingColumn(p.b.Col(c[1:]), c[0] == '-')
	}
	return res, nil
}

func (p *parser) child(field string, s *nodeSpec) (plan.Node, error) {
	if s == nil {
		return nil, errors.Newf("%s is required", field)
	}
	n, err := p.build(s)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", field)
	}
	return n, nil
}

func (p *parser) assignment(a string) (plan.Assignment, error) {
	lhs, rhs, found := strings.Cut(a, ":=")
	lhs = strings.TrimSpace(lhs)
	if lhs == "" {
		return plan.Assignment{}, errors.Newf("invalid assignment %q", a)
	}
	if !found {
		col := p.b.Col(lhs)
		return plan.Assignment{Col: col, From: col}, nil
	}
	rhs = strings.TrimSpace(rhs)
	if rhs == "constant" {
		return plan.Assignment{Col: p.b.Col(lhs), Constant: true}, nil
	}
	if from, ok := p.b.Metadata().ColumnByAlias(rhs); ok {
		return plan.Assignment{Col: p.b.Col(lhs), From: from}, nil
	}
	return plan.Assignment{Col: p.b.Col(lhs)}, nil
}

func (p *parser) criteria(conds []string) ([]plan.EquiJoinCondition, error) {
	res := make([]plan.EquiJoinCondition, len(conds))
	for i, c := range conds {
		l, r, found := strings.Cut(c, "=")
		l, r = strings.TrimSpace(l), strings.TrimSpace(r)
		if !found || l == "" || r == "" {
			return nil, errors.Newf("invalid join condition %q: expected left = right", c)
		}
		res[i] = plan.EquiJoinCondition{Left: p.b.Col(l), Right: p.b.Col(r)}
	}
	return res, nil
}

func (p *parser) functions(specs []funcSpec) ([]plan.Aggregate, error) {
	res := make([]plan.Aggregate, len(specs))
	for i := range specs {
		col, err := p.col("function col", specs[i].Col)
		if err != nil {
			return nil, err
		}
		res[i] = plan.Aggregate{
			Col:          col,
			Func:         specs[i].Func,
			Decomposable: specs[i].Decomposable == nil || *specs[i].Decomposable,
		}
	}
	return res, nil
}

var steps = map[string]plan.Step{
	"":             plan.StepSingle,
	"single":       plan.StepSingle,
	"partial":      plan.StepPartial,
	"intermediate": plan.StepIntermediate,
	"final":        plan.StepFinal,
}

func parseStep(s string) (plan.Step, error) {
	if step, ok := steps[s]; ok {
		return step, nil
	}
	return 0, errors.Newf("unknown step %q", s)
}

func parseAggType(s string) (plan.AggregationType, error) {
	switch s {
	case "", "hash":
		return plan.HashAggregation, nil
	case "sort":
		return plan.SortAggregation, nil
	}
	return 0, errors.Newf("unknown aggregation type %q", s)
}

func concatCols(lists ...opt.ColList) opt.ColList {
	var res opt.ColList
	for _, l := range lists {
		res = append(res, l...)
	}
	return res
}

// build constructs the node described by s. The id of a node is allocated
// before the ids of its children.
func (p *parser) build(s *nodeSpec) (plan.Node, error) {
	op, ok := opt.ParseOperator(s.Op)
	if !ok {
		return nil, errors.Newf("unknown operator %q", s.Op)
	}
	base, err := p.base(s)
	if err != nil {
		return nil, err
	}
	n, err := p.buildOp(op, base, s)
	if err != nil {
		return nil, errors.Wrapf(err, "%s node %d", op, base.NodeID)
	}
	return n, nil
}

func (p *parser) buildOp(op opt.Operator, base plan.Base, s *nodeSpec) (plan.Node, error) {
	ordering, err := p.ordering(s.Ordering)
	if err != nil {
		return nil, err
	}

	switch op {
	case opt.TableScanOp:
		return &plan.TableScan{
			Base:               base,
			Table:              s.Table,
			Cols:               p.cols(s.Cols),
			SingleStream:       s.SingleStream,
			StreamPartitioning: p.cols(s.Partitioning),
			Ordering:           ordering,
		}, nil

	case opt.ValuesOp:
		return &plan.Values{Base: base, Cols: p.cols(s.Cols), RowCount: s.Rows}, nil

	case opt.IndexSourceOp:
		return &plan.IndexSource{Base: base, Index: s.Index, Cols: p.cols(s.Cols)}, nil

	case opt.TableDeleteOp:
		del := &plan.TableDelete{Base: base, Table: s.Table, Output: p.defaultCols(s.Output, "rows")}
		if s.Input != nil {
			if del.Input, err = p.child("input", s.Input); err != nil {
				return nil, err
			}
		}
		return del, nil

	case opt.ExchangeOp, opt.UnionOp:
		return p.buildSetOp(op, base, s, ordering)

	case opt.JoinOp, opt.SemiJoinOp, opt.SpatialJoinOp, opt.IndexJoinOp, opt.ApplyOp, opt.LateralJoinOp:
		return p.buildJoin(op, base, s)
	}

	input, err := p.child("input", s.Input)
	if err != nil {
		return nil, err
	}

	switch op {
	case opt.OutputOp:
		cols := p.cols(s.Cols)
		if cols == nil {
			cols = input.OutputCols()
		}
		return &plan.Output{Base: base, Input: input, Cols: cols, Names: s.Names, Ordering: ordering}, nil

	case opt.ExplainAnalyzeOp:
		name := s.Column
		if name == "" {
			name = "plan"
		}
		return &plan.ExplainAnalyze{Base: base, Input: input, Col: p.b.Col(name)}, nil

	case opt.ProjectOp:
		assignments := make([]plan.Assignment, len(s.Assignments))
		for i, a := range s.Assignments {
			if assignments[i], err = p.assignment(a); err != nil {
				return nil, err
			}
		}
		return &plan.Project{Base: base, Input: input, Assignments: assignments}, nil

	case opt.FilterOp:
		return &plan.Filter{
			Base:              base,
			Input:             input,
			Predicate:         s.Predicate,
			EqualityConstants: p.cols(s.Constants),
		}, nil

	case opt.AssignUniqueIDOp:
		col, err := p.col("column", s.Column)
		if err != nil {
			return nil, err
		}
		return &plan.AssignUniqueID{Base: base, Input: input, IDCol: col}, nil

	case opt.SortOp:
		if len(ordering) == 0 {
			return nil, errors.New("ordering is required")
		}
		return &plan.Sort{Base: base, Input: input, Ordering: ordering}, nil

	case opt.TopNOp:
		step, err := parseStep(s.Step)
		if err != nil {
			return nil, err
		}
		return &plan.TopN{Base: base, Input: input, Count: s.Count, Ordering: ordering, Step: step}, nil

	case opt.LimitOp:
		return &plan.Limit{
			Base: base, Input: input, Count: s.Count, Partial: s.Partial, WithTies: s.WithTies,
		}, nil

	case opt.DistinctLimitOp:
		return &plan.DistinctLimit{
			Base: base, Input: input, Count: s.Count, DistinctCols: p.cols(s.Distinct), Partial: s.Partial,
		}, nil

	case opt.EnforceSingleRowOp:
		return &plan.EnforceSingleRow{Base: base, Input: input}, nil

	case opt.AggregationOp:
		return p.buildAggregation(base, input, s)

	case opt.WindowOp:
		funcs, err := p.functions(s.Functions)
		if err != nil {
			return nil, err
		}
		window := &plan.Window{
			Base:        base,
			Input:       input,
			PartitionBy: p.cols(s.PartitionBy),
			Ordering:    ordering,
		}
		for i := range funcs {
			window.Functions = append(window.Functions, plan.WindowFunc{Col: funcs[i].Col, Func: funcs[i].Func})
		}
		return window, nil

	case opt.MarkDistinctOp:
		marker, err := p.col("column", s.Column)
		if err != nil {
			return nil, err
		}
		if len(s.Distinct) == 0 {
			return nil, errors.New("distinct is required")
		}
		return &plan.MarkDistinct{Base: base, Input: input, Marker: marker, DistinctCols: p.cols(s.Distinct)}, nil

	case opt.RowNumberOp:
		col, err := p.col("column", s.Column)
		if err != nil {
			return nil, err
		}
		return &plan.RowNumber{
			Base: base, Input: input, PartitionBy: p.cols(s.PartitionBy), RowNumberCol: col, MaxRows: s.MaxRows,
		}, nil

	case opt.TopNRankingOp:
		col, err := p.col("column", s.Column)
		if err != nil {
			return nil, err
		}
		return &plan.TopNRanking{
			Base:        base,
			Input:       input,
			PartitionBy: p.cols(s.PartitionBy),
			Ordering:    ordering,
			RankCol:     col,
			MaxRank:     s.MaxRank,
			Partial:     s.Partial,
		}, nil

	case opt.TableWriterOp:
		return p.buildTableWriter(base, input, s)

	case opt.TableFinishOp:
		return &plan.TableFinish{Base: base, Input: input, Output: p.defaultCols(s.Output, "rows")}, nil

	case opt.StatisticsWriterOp:
		return &plan.StatisticsWriter{Base: base, Input: input, Output: p.defaultCols(s.Output, "rows")}, nil

	case opt.CubeFinishOp:
		return &plan.CubeFinish{Base: base, Input: input, Output: p.defaultCols(s.Output, "rows")}, nil

	case opt.CTEScanOp:
		return &plan.CTEScan{Base: base, Input: input, Name: s.Name}, nil
	}
	return nil, errors.AssertionFailedf("unhandled operator %s", op)
}

func (p *parser) defaultCols(names []string, def string) opt.ColList {
	if len(names) == 0 {
		return opt.ColList{p.b.Col(def)}
	}
	return p.cols(names)
}

func (p *parser) buildAggregation(base plan.Base, input plan.Node, s *nodeSpec) (plan.Node, error) {
	step, err := parseStep(s.Step)
	if err != nil {
		return nil, err
	}
	aggType, err := parseAggType(s.AggType)
	if err != nil {
		return nil, err
	}
	aggs, err := p.functions(s.Aggregates)
	if err != nil {
		return nil, err
	}
	sets := 1
	if s.GroupingSets != nil {
		sets = *s.GroupingSets
	}
	keys := p.cols(s.Keys)
	global := s.GlobalSets
	if len(keys) == 0 && s.GroupingSets == nil && global == 0 {
		// An aggregation without keys is a global aggregation.
		global = 1
	}
	if sets < 1 || global > sets {
		return nil, errors.Newf("invalid grouping sets: %d sets, %d global", sets, global)
	}
	return &plan.Aggregation{
		Base:               base,
		Input:              input,
		GroupingKeys:       keys,
		GroupingSetCount:   sets,
		GlobalGroupingSets: global,
		Aggregates:         aggs,
		Step:               step,
		Type:               aggType,
	}, nil
}

func (p *parser) buildTableWriter(base plan.Base, input plan.Node, s *nodeSpec) (plan.Node, error) {
	target := plan.InsertTarget
	if s.Target != "" {
		var ok bool
		if target, ok = plan.ParseWriterTarget(s.Target); !ok {
			return nil, errors.Newf("unknown writer target %q", s.Target)
		}
	}
	writer := &plan.TableWriter{
		Base:   base,
		Input:  input,
		Table:  s.Table,
		Target: target,
		Output: p.defaultCols(s.Output, "rows"),
	}
	if s.Handle != "" || len(s.Partitioning) > 0 {
		handle := plan.FixedHashPartitioning
		if s.Handle != "" {
			var ok bool
			if handle, ok = plan.ParsePartitioningHandle(s.Handle); !ok {
				return nil, errors.Newf("unknown partitioning handle %q", s.Handle)
			}
		}
		writer.Partitioning = &plan.PartitioningScheme{Handle: handle, Cols: p.cols(s.Partitioning)}
	}
	return writer, nil
}

// buildSetOp builds the operators with a list of sources.
func (p *parser) buildSetOp(
	op opt.Operator, base plan.Base, s *nodeSpec, ordering opt.Ordering,
) (plan.Node, error) {
	specs := s.Sources
	if s.Input != nil {
		specs = append([]*nodeSpec{s.Input}, specs...)
	}
	if len(specs) == 0 {
		return nil, errors.New("sources are required")
	}
	sources := make([]plan.Node, len(specs))
	for i := range specs {
		var err error
		if sources[i], err = p.child("sources", specs[i]); err != nil {
			return nil, err
		}
	}

	output := p.cols(s.Output)
	if output == nil {
		output = sources[0].OutputCols()
	}
	layouts := make([]opt.ColList, len(sources))
	for i := range sources {
		if i < len(s.Layouts) {
			layouts[i] = p.cols(s.Layouts[i])
		} else {
			layouts[i] = sources[i].OutputCols()
		}
		if len(layouts[i]) != len(output) {
			return nil, errors.Newf("layout of source %d has %d columns, expected %d", i, len(layouts[i]), len(output))
		}
		if !opt.ColListContainsAll(sources[i].OutputCols(), layouts[i]) {
			return nil, errors.Newf("layout of source %d references columns it does not produce", i)
		}
	}

	if op == opt.UnionOp {
		return &plan.Union{Base: base, Sources: sources, Output: output, InputLayouts: layouts}, nil
	}

	ex := &plan.Exchange{
		Base:         base,
		Scope:        plan.RemoteScope,
		Ordering:     ordering,
		Sources:      sources,
		InputLayouts: layouts,
		Output:       output,
	}
	switch s.Scope {
	case "", "remote":
	case "local":
		ex.Scope = plan.LocalScope
	default:
		return nil, errors.Newf("unknown exchange scope %q", s.Scope)
	}
	var err error
	if ex.AggType, err = parseAggType(s.AggType); err != nil {
		return nil, err
	}
	ex.Partitioning.Cols = p.cols(s.Partitioning)
	switch s.Type {
	case "gather", "":
		ex.Type = plan.GatherExchange
		ex.Partitioning.Handle = plan.SinglePartitioning
	case "repartition":
		ex.Type = plan.RepartitionExchange
		ex.Partitioning.Handle = plan.FixedArbitraryPartitioning
		if len(ex.Partitioning.Cols) > 0 {
			ex.Partitioning.Handle = plan.FixedHashPartitioning
		}
	case "replicate":
		ex.Type = plan.ReplicateExchange
		ex.Partitioning.Handle = plan.FixedBroadcastPartitioning
	default:
		return nil, errors.Newf("unknown exchange type %q", s.Type)
	}
	if s.Handle != "" {
		handle, ok := plan.ParsePartitioningHandle(s.Handle)
		if !ok {
			return nil, errors.Newf("unknown partitioning handle %q", s.Handle)
		}
		ex.Partitioning.Handle = handle
	}
	return ex, nil
}

// buildJoin builds the operators with two inputs.
func (p *parser) buildJoin(op opt.Operator, base plan.Base, s *nodeSpec) (plan.Node, error) {
	joinType := plan.InnerJoin
	if s.Type != "" {
		var ok bool
		if joinType, ok = plan.ParseJoinType(s.Type); !ok {
			return nil, errors.Newf("unknown join type %q", s.Type)
		}
	}
	criteria, err := p.criteria(s.Criteria)
	if err != nil {
		return nil, err
	}

	switch op {
	case opt.JoinOp, opt.SpatialJoinOp:
		left, err := p.child("left", s.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.child("right", s.Right)
		if err != nil {
			return nil, err
		}
		output := p.cols(s.Output)
		if output == nil {
			output = concatCols(left.OutputCols(), right.OutputCols())
		}
		if op == opt.SpatialJoinOp {
			return &plan.SpatialJoin{
				Base: base, Type: joinType, Left: left, Right: right, Filter: s.Filter, Output: output,
			}, nil
		}
		return &plan.Join{
			Base: base, Type: joinType, Left: left, Right: right, Criteria: criteria, Output: output,
		}, nil

	case opt.SemiJoinOp:
		source, err := p.child("input", s.Input)
		if err != nil {
			return nil, err
		}
		filtering, err := p.child("filtering", s.Filtering)
		if err != nil {
			return nil, err
		}
		sourceCol, err := p.col("source_col", s.SourceCol)
		if err != nil {
			return nil, err
		}
		filteringCol, err := p.col("filtering_col", s.FilteringCol)
		if err != nil {
			return nil, err
		}
		match, err := p.col("match", s.Match)
		if err != nil {
			return nil, err
		}
		return &plan.SemiJoin{
			Base:            base,
			Source:          source,
			FilteringSource: filtering,
			SourceCol:       sourceCol,
			FilteringCol:    filteringCol,
			MatchCol:        match,
		}, nil

	case opt.IndexJoinOp:
		probe, err := p.child("probe", s.Probe)
		if err != nil {
			return nil, err
		}
		index, err := p.child("index_source", s.IndexSource)
		if err != nil {
			return nil, err
		}
		output := p.cols(s.Output)
		if output == nil {
			output = concatCols(probe.OutputCols(), index.OutputCols())
		}
		return &plan.IndexJoin{
			Base: base, Type: joinType, Probe: probe, IndexSource: index, Criteria: criteria, Output: output,
		}, nil
	}

	input, err := p.child("input", s.Input)
	if err != nil {
		return nil, err
	}
	subquery, err := p.child("subquery", s.Subquery)
	if err != nil {
		return nil, err
	}
	output := p.cols(s.Output)
	if output == nil {
		output = concatCols(input.OutputCols(), subquery.OutputCols())
	}
	if op == opt.ApplyOp {
		return &plan.Apply{Base: base, Input: input, Subquery: subquery, Output: output}, nil
	}
	return &plan.LateralJoin{Base: base, Input: input, Subquery: subquery, Output: output}, nil
}
