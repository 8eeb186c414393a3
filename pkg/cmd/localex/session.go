// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/sessiondata"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sessionFlags holds the session settings given on the command line.
type sessionFlags struct {
	sd   *sessiondata.SessionData
	file string
}

func (s *sessionFlags) register(fs *pflag.FlagSet) {
	s.sd = sessiondata.Default()
	s.sd.RegisterFlags(fs)
	fs.StringVar(&s.file, "session", "", "YAML file with session settings; flags override it")
}

// resolve returns the session settings: the settings file if one was given,
// with the flags that were set explicitly applied on top.
func (s *sessionFlags) resolve(fs *pflag.FlagSet) (*sessiondata.SessionData, error) {
	if s.file == "" {
		if err := s.sd.Validate(); err != nil {
			return nil, err
		}
		return s.sd, nil
	}

	f, err := os.Open(s.file)
	if err != nil {
		return nil, errors.Wrap(err, "opening session settings")
	}
	defer f.Close()
	sd, err := sessiondata.Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", s.file)
	}

	overrides := pflag.NewFlagSet("session", pflag.ContinueOnError)
	sd.RegisterFlags(overrides)
	var setErr error
	fs.Visit(func(flag *pflag.Flag) {
		if setErr == nil && overrides.Lookup(flag.Name) != nil {
			setErr = overrides.Set(flag.Name, flag.Value.String())
		}
	})
	if setErr != nil {
		return nil, setErr
	}
	if err := sd.Validate(); err != nil {
		return nil, err
	}
	return sd, nil
}

func newSettingsCmd() *cobra.Command {
	var flags sessionFlags
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "print the session settings that apply to local exchange placement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sd, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"setting", "value"})
			for _, s := range sd.Settings() {
				table.Append([]string{s.Name, s.Value})
			}
			table.Render()
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
