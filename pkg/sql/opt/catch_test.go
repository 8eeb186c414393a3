// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/stretchr/testify/require"
)

func TestCatchOptimizerError(t *testing.T) {
	run := func(f func()) (err error) {
		defer opt.CatchOptimizerError(&err)
		f()
		return nil
	}

	t.Run("no panic", func(t *testing.T) {
		require.NoError(t, run(func() {}))
	})

	t.Run("assertion failure", func(t *testing.T) {
		err := run(func() {
			panic(errors.AssertionFailedf("unexpected operator %s", opt.ApplyOp))
		})
		require.Error(t, err)
		require.True(t, errors.HasAssertionFailure(err))
		require.Contains(t, err.Error(), "unexpected operator apply")
	})

	t.Run("runtime error", func(t *testing.T) {
		err := run(func() {
			var cols opt.ColList
			_ = cols[3]
		})
		require.Error(t, err)
		require.True(t, errors.HasAssertionFailure(err))
	})

	t.Run("non-error panic", func(t *testing.T) {
		require.Panics(t, func() {
			_ = run(func() { panic("not an error") })
		})
	})
}

func TestParseOperator(t *testing.T) {
	for op := opt.UnknownOp + 1; op < opt.NumOperators; op++ {
		res, ok := opt.ParseOperator(op.String())
		require.True(t, ok, "operator %d", op)
		require.Equal(t, op, res)
	}
	_, ok := opt.ParseOperator("unknown")
	require.False(t, ok)
	require.Equal(t, "operator(200)", opt.Operator(200).String())
}
