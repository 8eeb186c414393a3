// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt/localex"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/cockroachdb/localex/pkg/sql/opt/planyaml"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/derive"
	"github.com/cockroachdb/localex/pkg/sql/sessiondata"
	"github.com/cockroachdb/localex/pkg/util/log"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

type optimizeFlags struct {
	session   sessionFlags
	props     bool
	metrics   bool
	showInput bool
	diff      bool
	format    string
	verbosity int
}

func newOptimizeCmd() *cobra.Command {
	var flags optimizeFlags
	cmd := &cobra.Command{
		Use:   "optimize <plan.yaml | ->...",
		Short: "place local exchanges in plans and print the result",
		Long: `
Reads physical plans in YAML, places the local exchanges required by their
operators, and prints the rewritten plans. Use - to read a plan from stdin.
When several plans are given they are rewritten concurrently and printed in
the order of the arguments.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, args, &flags)
		},
	}
	fs := cmd.Flags()
	flags.session.register(fs)
	fs.BoolVar(&flags.props, "props", false, "print the stream properties of every node")
	fs.BoolVar(&flags.metrics, "metrics", false, "print the placement metrics")
	fs.BoolVar(&flags.showInput, "show-input", false, "print the input plan before the rewritten one")
	fs.BoolVar(&flags.diff, "diff", false, "print a unified diff between the input and the rewritten plan")
	fs.StringVar(&flags.format, "format", "tree", "output format of the plans: tree or dot")
	fs.IntVarP(&flags.verbosity, "verbosity", "v", 0, "log verbosity; logs go to stderr")
	return cmd
}

func newLogger(w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// planFile is a plan read from one of the arguments.
type planFile struct {
	path string
	data []byte
	out  bytes.Buffer
}

func readPlanFiles(cmd *cobra.Command, paths []string) ([]*planFile, error) {
	files := make([]*planFile, len(paths))
	sawStdin := false
	for i, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			if sawStdin {
				return nil, errors.New("stdin can only be read once")
			}
			sawStdin = true
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "opening plan %s", path)
		}
		files[i] = &planFile{path: path, data: data}
	}
	return files, nil
}

func runOptimize(cmd *cobra.Command, paths []string, flags *optimizeFlags) error {
	if flags.format != "tree" && flags.format != "dot" {
		return errors.Newf("unknown format %q: expected tree or dot", flags.format)
	}
	if flags.diff && flags.showInput {
		return errors.New("--diff and --show-input cannot be combined")
	}
	sd, err := flags.session.resolve(cmd.Flags())
	if err != nil {
		return err
	}
	files, err := readPlanFiles(cmd, paths)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	defer func() { _ = logger.Sync() }()
	defer log.SetLogger(logger)()
	defer log.SetVerbosity(log.Level(flags.verbosity))()

	reg := prometheus.NewRegistry()
	metrics := localex.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		f := f
		g.Go(func() error {
			return optimizeFile(ctx, f, sd, metrics, flags)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, f := range files {
		if len(files) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "-- %s --\n", f.path)
		}
		if _, err := f.out.WriteTo(out); err != nil {
			return err
		}
	}

	if flags.metrics {
		fmt.Fprintln(out)
		return printMetrics(out, reg)
	}
	return nil
}

// optimizeFile rewrites a single plan and writes the result to f.out. Every
// plan gets its own optimizer, so plans can be rewritten concurrently.
func optimizeFile(
	ctx context.Context,
	f *planFile,
	sd *sessiondata.SessionData,
	metrics *localex.Metrics,
	flags *optimizeFlags,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b plan.Builder
	b.Init(nil)
	root, err := planyaml.Parse(f.data, &b)
	if err != nil {
		return errors.Wrapf(err, "%s", f.path)
	}

	var annotate plan.AnnotateFunc
	if flags.props {
		annotate = func(n plan.Node) []string {
			p := derive.Recursively(derive.StreamDeriver{}, n)
			return []string{"props: " + p.Format(b.Metadata())}
		}
	}
	format := plan.Format
	if flags.format == "dot" {
		format = formatDot
	}
	before := format(root, b.Metadata(), annotate)

	var o localex.Optimizer
	o.Init(sd, localex.WithMetrics(metrics), localex.WithMetadata(b.Metadata()))
	res, err := o.Optimize(ctx, root)
	if err != nil {
		return errors.Wrapf(err, "%s", f.path)
	}
	after := format(res, b.Metadata(), annotate)

	switch {
	case flags.diff:
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(before),
			B:        difflib.SplitLines(after),
			FromFile: "input",
			ToFile:   "rewritten",
			Context:  3,
		})
		if err != nil {
			return errors.Wrap(err, "computing diff")
		}
		f.out.WriteString(diff)
	case flags.showInput:
		f.out.WriteString(before)
		f.out.WriteString("\n")
		f.out.WriteString(after)
	default:
		f.out.WriteString(after)
	}
	return nil
}

// printMetrics prints the counters of reg that are not zero.
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	var rows [][]string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			rows = append(rows, []string{mf.GetName(), strings.Join(labels, ","), fmt.Sprint(value)})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i][0] < rows[j][0] || (rows[i][0] == rows[j][0] && rows[i][1] < rows[j][1])
	})

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"metric", "labels", "value"})
	table.AppendBulk(rows)
	table.Render()
	return nil
}
