package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MergeJob is a declarative description of a merge pipeline, loaded from a
// YAML file. Relative paths are resolved against the job file's directory.
type MergeJob struct {
	// Inputs lists input files in merge order. Order matters: on
	// conflicting event ids the later input wins.
	Inputs []string `yaml:"inputs"`

	// Output is the destination file.
	Output string `yaml:"output"`

	// From/To optionally name formats explicitly; otherwise file
	// extensions decide.
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	// Pretty selects indented output.
	Pretty bool `yaml:"pretty,omitempty"`

	// Validate schema-validates inputs and output.
	Validate bool `yaml:"validate,omitempty"`

	// Repair removes dangling object references from the merged log.
	Repair bool `yaml:"repair,omitempty"`
}

// LoadMergeJob reads and resolves a job file.
func LoadMergeJob(path string) (*MergeJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	var job MergeJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if len(job.Inputs) == 0 {
		return nil, fmt.Errorf("job file %s: no inputs", path)
	}
	if job.Output == "" {
		return nil, fmt.Errorf("job file %s: no output", path)
	}

	base := filepath.Dir(path)
	for i, input := range job.Inputs {
		if !filepath.IsAbs(input) {
			job.Inputs[i] = filepath.Join(base, input)
		}
	}
	if !filepath.IsAbs(job.Output) {
		job.Output = filepath.Join(base, job.Output)
	}
	return &job, nil
}
