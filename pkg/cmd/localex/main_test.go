// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const scanPlan = `
op: output
input: {op: table-scan, table: t, cols: [a, b]}
`

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestOptimizeCmd(t *testing.T) {
	path := writeFile(t, "plan.yaml", scanPlan)
	out, err := runCmd(t, "", "optimize", path)
	require.NoError(t, err)
	require.Equal(t, `output (a,b)
 └── exchange local gather
      └── table-scan t (a,b)
`, out)
}

func TestOptimizeCmdStdin(t *testing.T) {
	out, err := runCmd(t, scanPlan, "optimize", "-", "--props")
	require.NoError(t, err)
	require.Contains(t, out, "exchange local gather")
	require.Contains(t, out, "props: single")
	require.Contains(t, out, "props: multiple")
}

func TestOptimizeCmdShowInput(t *testing.T) {
	out, err := runCmd(t, scanPlan, "optimize", "-", "--show-input")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "output (a,b)\n └── table-scan t (a,b)\n\n"), out)
	require.Contains(t, out, "exchange local gather")
}

func TestOptimizeCmdMetrics(t *testing.T) {
	out, err := runCmd(t, scanPlan, "optimize", "-", "--metrics")
	require.NoError(t, err)
	require.Contains(t, out, "sql_localex_exchanges_inserted_total")
	require.Contains(t, out, "kind=gather")
	require.Contains(t, out, "sql_localex_plans_rewritten_total")
	// Counters that are zero are not printed.
	require.NotContains(t, out, "sql_localex_plan_errors_total")
}

func TestOptimizeCmdMultiplePlans(t *testing.T) {
	first := writeFile(t, "first.yaml", scanPlan)
	second := writeFile(t, "second.yaml", `
op: output
input: {op: values, cols: [x]}
`)
	out, err := runCmd(t, "", "optimize", first, second, "--metrics")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "-- "+first+" --\noutput (a,b)\n"), out)
	require.Contains(t, out, "\n\n-- "+second+" --\noutput (x)\n └── values (x) rows=0\n")
	// Only the first plan needs an exchange, but both are counted.
	require.Regexp(t, `sql_localex_plans_rewritten_total\s+\|\s+\|\s+2\s`, out)
	require.Regexp(t, `kind=gather\s+\|\s+1\s`, out)
}

func TestOptimizeCmdDiff(t *testing.T) {
	out, err := runCmd(t, scanPlan, "optimize", "-", "--diff")
	require.NoError(t, err)
	require.Equal(t, `--- input
+++ rewritten
@@ -1,2 +1,3 @@
 output (a,b)
- └── table-scan t (a,b)
+ └── exchange local gather
+      └── table-scan t (a,b)
`, out)
}

func TestOptimizeCmdDot(t *testing.T) {
	out, err := runCmd(t, scanPlan, "optimize", "-", "--format=dot")
	require.NoError(t, err)
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "1: output (a,b)")
	require.Contains(t, out, "3: exchange local gather")
	require.Contains(t, out, "2: table-scan t (a,b)")
	require.Contains(t, out, "lightblue")
	require.Equal(t, 2, strings.Count(out, "->"))

	_, err = runCmd(t, scanPlan, "optimize", "-", "--format=json")
	require.ErrorContains(t, err, `unknown format "json"`)
}

func TestOptimizeCmdErrors(t *testing.T) {
	_, err := runCmd(t, "", "optimize")
	require.Error(t, err)

	_, err = runCmd(t, "", "optimize", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "opening plan")

	_, err = runCmd(t, scanPlan, "optimize", "-", "-")
	require.ErrorContains(t, err, "stdin can only be read once")

	_, err = runCmd(t, scanPlan, "optimize", "-", "--diff", "--show-input")
	require.ErrorContains(t, err, "--diff and --show-input cannot be combined")

	_, err = runCmd(t, "op: nope\n", "optimize", "-")
	require.ErrorContains(t, err, `unknown operator "nope"`)

	_, err = runCmd(t, scanPlan, "optimize", "-", "--task-concurrency=3")
	require.ErrorContains(t, err, "task_concurrency must be a positive power of two, got 3")

	_, err = runCmd(t, "op: output\ninput: {op: apply, input: {op: values, cols: [a]}, subquery: {op: values, cols: [b]}}\n",
		"optimize", "-")
	require.ErrorContains(t, err, "unexpected apply node")
}

func TestSettingsCmd(t *testing.T) {
	out, err := runCmd(t, "", "settings", "--task-concurrency=4")
	require.NoError(t, err)
	require.Contains(t, out, "task_concurrency")
	require.Regexp(t, `task_concurrency\s+\|\s+4\s`, out)
	require.Regexp(t, `distributed_sort\s+\|\s+true\s`, out)
}

func TestSettingsCmdSessionFile(t *testing.T) {
	path := writeFile(t, "session.yaml", "task_concurrency: 8\nspill_enabled: true\n")

	out, err := runCmd(t, "", "settings", "--session", path)
	require.NoError(t, err)
	require.Regexp(t, `task_concurrency\s+\|\s+8\s`, out)
	require.Regexp(t, `spill_enabled\s+\|\s+true\s`, out)

	// Flags given explicitly override the file.
	out, err = runCmd(t, "", "settings", "--session", path, "--task-concurrency=2")
	require.NoError(t, err)
	require.Regexp(t, `task_concurrency\s+\|\s+2\s`, out)
	require.Regexp(t, `spill_enabled\s+\|\s+true\s`, out)

	_, err = runCmd(t, "", "settings", "--session", writeFile(t, "bad.yaml", "bogus: 1\n"))
	require.ErrorContains(t, err, "parsing session settings")
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "localex "), out)
}
