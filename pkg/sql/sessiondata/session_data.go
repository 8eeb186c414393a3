// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package sessiondata

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// SessionData contains the session parameters that influence local exchange
// placement. The planner treats it as a read-only snapshot: it is never
// modified while a plan is being optimized.
type SessionData struct {
	// DistributedSort indicates whether a sort may be executed as parallel
	// partial sorts followed by a local merge. When disabled, a sort consumes a
	// single stream.
	DistributedSort bool `yaml:"distributed_sort"`
	// SpillEnabled indicates whether operators are allowed to spill to disk.
	// Joins are only marked spillable when their probe side has a fixed number
	// of streams.
	SpillEnabled bool `yaml:"spill_enabled"`
	// TaskConcurrency is the number of parallel drivers that run each pipeline
	// within a task. It must be a power of two.
	TaskConcurrency int `yaml:"task_concurrency"`
	// TaskWriterCount is the number of parallel table writers per task. It must
	// be a power of two.
	TaskWriterCount int `yaml:"task_writer_count"`
	// PreferStreamingOperators disables the default preference for parallel
	// streams, so that operators keep their input in as few streams as
	// possible.
	PreferStreamingOperators bool `yaml:"prefer_streaming_operators"`
}

// Default returns the session settings that are used when none are
// specified.
func Default() *SessionData {
	return &SessionData{
		DistributedSort: true,
		TaskConcurrency: 16,
		TaskWriterCount: 1,
	}
}

// Validate returns an error if any of the settings is out of range.
func (sd *SessionData) Validate() error {
	if err := checkPowerOfTwo("task_concurrency", sd.TaskConcurrency); err != nil {
		return err
	}
	return checkPowerOfTwo("task_writer_count", sd.TaskWriterCount)
}

func checkPowerOfTwo(name string, v int) error {
	if v <= 0 || v&(v-1) != 0 {
		return errors.Newf("%s must be a positive power of two, got %d", name, v)
	}
	return nil
}

// Parse reads session settings in YAML format. Settings that are not present
// keep their default value; unknown settings are an error.
func Parse(data []byte) (*SessionData, error) {
	sd := Default()
	if err := yaml.UnmarshalStrict(data, sd); err != nil {
		return nil, errors.Wrap(err, "parsing session settings")
	}
	if err := sd.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid session settings")
	}
	return sd, nil
}

// Load is like Parse, but reads the settings from r.
func Load(r io.Reader) (*SessionData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading session settings")
	}
	return Parse(data)
}

// RegisterFlags adds a command line flag for every setting to fs. The flags
// write directly into sd, so they override whatever was loaded before the
// flag set is parsed.
func (sd *SessionData) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&sd.DistributedSort, "distributed-sort", sd.DistributedSort,
		"allow sorts to run as parallel partial sorts followed by a local merge")
	fs.BoolVar(&sd.SpillEnabled, "spill", sd.SpillEnabled,
		"allow operators to spill to disk")
	fs.IntVar(&sd.TaskConcurrency, "task-concurrency", sd.TaskConcurrency,
		"number of parallel drivers per pipeline (power of two)")
	fs.IntVar(&sd.TaskWriterCount, "writer-count", sd.TaskWriterCount,
		"number of parallel table writers per task (power of two)")
	fs.BoolVar(&sd.PreferStreamingOperators, "prefer-streaming-operators", sd.PreferStreamingOperators,
		"keep operator inputs in as few streams as possible")
}

// Setting is a single named session setting, as shown to users.
type Setting struct {
	Name  string
	Value string
}

// Settings returns all the settings in a stable order.
func (sd *SessionData) Settings() []Setting {
	return []Setting{
		{Name: "distributed_sort", Value: strconv.FormatBool(sd.DistributedSort)},
		{Name: "spill_enabled", Value: strconv.FormatBool(sd.SpillEnabled)},
		{Name: "task_concurrency", Value: strconv.Itoa(sd.TaskConcurrency)},
		{Name: "task_writer_count", Value: strconv.Itoa(sd.TaskWriterCount)},
		{Name: "prefer_streaming_operators", Value: strconv.FormatBool(sd.PreferStreamingOperators)},
	}
}

func (sd *SessionData) String() string {
	return fmt.Sprintf(
		"distributed_sort=%t spill_enabled=%t task_concurrency=%d task_writer_count=%d prefer_streaming_operators=%t",
		sd.DistributedSort, sd.SpillEnabled, sd.TaskConcurrency, sd.TaskWriterCount, sd.PreferStreamingOperators,
	)
}
