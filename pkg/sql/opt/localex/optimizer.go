// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package localex places local exchanges in a physical plan.
//
// Every operator of a physical plan runs as one or more parallel drivers
// within a task, and expects its input in a particular stream shape: a single
// stream, any number of parallel streams, or parallel streams that are hash
// partitioned on some columns, possibly preserving an order. The pass walks
// the plan top-down, telling each node which shape its consumer would like
// (its preferred properties), and then bottom-up, computing the shape each
// rewritten subtree actually provides. Wherever the provided shape does not
// satisfy the shape the consumer requires, a local exchange is inserted.
//
// The pass never changes remote exchanges, which are planned earlier. The
// rewritten plan has the property that the output of every node satisfies
// the requirement imposed on it by its parent.
package localex

import (
	"context"
	"time"

	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/exchange"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/derive"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/physical"
	"github.com/cockroachdb/localex/pkg/sql/sessiondata"
	"github.com/cockroachdb/localex/pkg/util/log"
	"github.com/cockroachdb/logtags"
)

// EnforceObserver is called for every input of every node, once the input has
// been planned and enforced. required is the requirement the node imposed on
// its input, and enforced is the final input with its properties.
type EnforceObserver func(required physical.StreamPrefs, enforced exchange.Planned)

// Option configures an Optimizer.
type Option func(o *Optimizer)

// WithDeriver replaces the default stream property derivation.
func WithDeriver(d derive.Deriver) Option {
	return func(o *Optimizer) { o.deriver = d }
}

// WithMetrics makes the optimizer update the given metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// WithMetadata provides the column metadata of the plans, which is used to
// label columns in log messages.
func WithMetadata(md *opt.Metadata) Option {
	return func(o *Optimizer) { o.md = md }
}

// WithObserver installs a function that is called at every enforcement site.
func WithObserver(fn EnforceObserver) Option {
	return func(o *Optimizer) { o.observer = fn }
}

// Optimizer places local exchanges. An Optimizer can be reused for any number
// of plans, but is not safe for concurrent use.
type Optimizer struct {
	sd       *sessiondata.SessionData
	deriver  derive.Deriver
	metrics  *Metrics
	md       *opt.Metadata
	observer EnforceObserver
}

// errorLogEvery limits the rate at which failed rewrites are logged.
var errorLogEvery = log.Every(10 * time.Second)

// Init initializes the optimizer with the given session settings. The
// settings must not change while the optimizer is in use.
func (o *Optimizer) Init(sd *sessiondata.SessionData, opts ...Option) {
	*o = Optimizer{sd: sd, deriver: derive.StreamDeriver{}}
	for _, fn := range opts {
		fn(o)
	}
}

// Optimize returns a copy of the plan rooted at root with local exchanges
// placed. Node ids of the input plan are preserved; the inserted exchanges
// get ids that are larger than any id in the input plan.
//
// An error is returned if the plan contains nodes that must not reach this
// pass (apply and lateral joins, limits with ties, local exchanges), or if an
// internal invariant is violated. Such errors are assertion failures.
func (o *Optimizer) Optimize(ctx context.Context, root plan.Node) (_ plan.Node, err error) {
	ctx = logtags.AddTag(ctx, "localex", nil)
	defer func() {
		if err == nil {
			return
		}
		if o.metrics != nil {
			o.metrics.PlanErrors.Inc()
		}
		if errorLogEvery.ShouldLog() {
			log.Warningf(ctx, "local exchange placement failed: %v", err)
		}
	}()
	defer opt.CatchOptimizerError(&err)

	var ids plan.IDAllocator
	ids.Reserve(plan.MaxID(root))

	var r rewriter
	r.init(ctx, o, &ids)
	res := r.visit(root, physical.DefaultParallelismPrefs(o.sd))

	if o.metrics != nil {
		o.metrics.PlansRewritten.Inc()
	}
	log.VEventf(ctx, 1, "inserted %d local exchanges; root provides %s",
		r.inserted, res.Props.Format(o.md))
	return res.Node, nil
}

// Optimize places local exchanges in the plan rooted at root, using the
// default stream property derivation.
func Optimize(
	ctx context.Context, root plan.Node, sd *sessiondata.SessionData,
) (plan.Node, error) {
	var o Optimizer
	o.Init(sd)
	return o.Optimize(ctx, root)
}
