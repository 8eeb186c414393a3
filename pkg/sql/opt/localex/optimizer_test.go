// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package localex

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/cockroachdb/localex/pkg/sql/opt/planyaml"
	"github.com/cockroachdb/localex/pkg/sql/sessiondata"
	"github.com/cockroachdb/localex/pkg/util/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const unionPlan = `
op: exchange
input:
  op: union
  output: [u]
  sources:
    - {op: table-scan, table: t, cols: [a]}
    - {op: table-scan, table: s, cols: [b]}
`

const applyPlan = `
op: apply
input: {op: values, cols: [a]}
subquery: {op: values, cols: [b]}
`

func parsePlan(t *testing.T, text string) (plan.Node, *plan.Builder) {
	t.Helper()
	var b plan.Builder
	b.Init(nil)
	root, err := planyaml.Parse([]byte(text), &b)
	require.NoError(t, err)
	return root, &b
}

func TestOptimizeKeepsInputPlan(t *testing.T) {
	root, b := parsePlan(t, unionPlan)
	before := plan.Format(root, b.Metadata(), nil)

	res, err := Optimize(context.Background(), root, sessiondata.Default())
	require.NoError(t, err)
	require.Equal(t, before, plan.Format(root, b.Metadata(), nil))

	// The union node is replaced by a local exchange with a new id; all other
	// ids are kept.
	var ids []plan.ID
	plan.Walk(res, func(n plan.Node) bool {
		ids = append(ids, n.ID())
		return true
	})
	require.Equal(t, []plan.ID{1, 5, 3, 4}, ids)
	require.Equal(t, opt.ExchangeOp, res.Child(0).Op())
}

func TestOptimizeRejectsRewrittenPlan(t *testing.T) {
	root, b := parsePlan(t, `
op: exchange
input:
  op: aggregation
  keys: [a]
  aggregates: [{col: s, func: sum}]
  input:
    op: join
    criteria: [a = x]
    left: {op: table-scan, table: t, cols: [a, b]}
    right: {op: table-scan, table: u, cols: [x, y]}
`)
	sd := sessiondata.Default()
	first, err := Optimize(context.Background(), root, sd)
	require.NoError(t, err)

	// The rewritten plan contains local exchanges, which must not appear in
	// an input plan.
	var o Optimizer
	m := NewMetrics()
	o.Init(sd, WithMetrics(m), WithMetadata(b.Metadata()))
	_, err = o.Optimize(context.Background(), first)
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "unexpected local exchange")
	require.Equal(t, 1.0, testutil.ToFloat64(m.PlanErrors))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, m.Register(reg))
	require.Error(t, m.Register(reg), "metrics can only be registered once")

	var o Optimizer
	o.Init(sessiondata.Default(), WithMetrics(m))

	root, _ := parsePlan(t, unionPlan)
	_, err := o.Optimize(context.Background(), root)
	require.NoError(t, err)
	root, _ = parsePlan(t, applyPlan)
	_, err = o.Optimize(context.Background(), root)
	require.Error(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.PlansRewritten))
	require.Equal(t, 1.0, testutil.ToFloat64(m.PlanErrors))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ExchangesInserted.WithLabelValues("repartition_arbitrary")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.ExchangesInserted.WithLabelValues("gather")))
	// Every kind is exported, even before it is used.
	require.Equal(t, 5, testutil.CollectAndCount(m.ExchangesInserted))
}

func TestOptimizeLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer log.SetLogger(zap.New(core))()
	defer log.SetVerbosity(2)()

	root, b := parsePlan(t, unionPlan)
	var o Optimizer
	o.Init(sessiondata.Default(), WithMetadata(b.Metadata()))
	_, err := o.Optimize(context.Background(), root)
	require.NoError(t, err)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	require.Equal(t,
		"inserted local repartition_arbitrary exchange 5 above table-scan node 3 (2 inputs) on ()",
		entries[0].Message)
	require.Equal(t, "inserted 1 local exchanges; root provides single", entries[1].Message)
	require.Equal(t, "localex", entries[1].ContextMap()["tags"])

	root, _ = parsePlan(t, applyPlan)
	_, err = o.Optimize(context.Background(), root)
	require.Error(t, err)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "local exchange placement failed: unexpected apply node 1", entries[0].Message)
}
