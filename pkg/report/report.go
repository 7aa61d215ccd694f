package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuya-takeyama/dupsweep/pkg/cleanup"
	"github.com/yuya-takeyama/dupsweep/pkg/dedup"
	"github.com/yuya-takeyama/dupsweep/pkg/executor"
	"gopkg.in/yaml.v3"
)

// Report is the machine readable outcome of a run
type Report struct {
	ID         string        `json:"id" yaml:"id"`
	Root       string        `json:"root" yaml:"root"`
	Algorithm  string        `json:"algorithm" yaml:"algorithm"`
	Workers    int           `json:"workers" yaml:"workers"`
	DurationMs int64         `json:"duration_ms" yaml:"duration_ms"`
	Groups     []Group       `json:"groups" yaml:"groups"`
	Skipped    []SkippedFile `json:"skipped" yaml:"skipped"`
	Deletion   *Deletion     `json:"deletion,omitempty" yaml:"deletion,omitempty"`
	Summary    Summary       `json:"summary" yaml:"summary"`
}

type Group struct {
	Digest string   `json:"digest" yaml:"digest"`
	Keep   string   `json:"keep" yaml:"keep"`
	Remove []string `json:"remove" yaml:"remove"`
}

type SkippedFile struct {
	Stage string `json:"stage" yaml:"stage"`
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

type Deletion struct {
	DryRun  bool        `json:"dry_run" yaml:"dry_run"`
	Deleted []string    `json:"deleted" yaml:"deleted"`
	Errors  []ErrorFile `json:"errors" yaml:"errors"`
}

type ErrorFile struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

type Summary struct {
	FilesFound  int `json:"files_found" yaml:"files_found"`
	FilesHashed int `json:"files_hashed" yaml:"files_hashed"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Collisions  int `json:"collisions" yaml:"collisions"`
	Duplicates  int `json:"duplicates" yaml:"duplicates"`
	Deleted     int `json:"deleted" yaml:"deleted"`
	Failed      int `json:"failed" yaml:"failed"`
}

// Format selects the report encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Build assembles a report. deletion is nil when no deletion pass ran.
func Build(id string, scan *cleanup.ScanResult, decisions []dedup.Decision, deletion *executor.Report) *Report {
	r := &Report{
		ID:         id,
		Root:       scan.Root,
		Algorithm:  string(scan.Algorithm),
		Workers:    scan.Workers,
		DurationMs: scan.Duration.Milliseconds(),
		Groups:     []Group{},
		Skipped:    []SkippedFile{},
	}

	for _, d := range decisions {
		r.Groups = append(r.Groups, Group{
			Digest: string(d.Digest),
			Keep:   d.Keep,
			Remove: append([]string{}, d.Remove...),
		})
		r.Summary.Duplicates += len(d.Remove)
	}

	for _, s := range scan.Skipped {
		skipped := SkippedFile{Stage: string(s.Stage), Path: s.Path}
		if s.Err != nil {
			skipped.Error = s.Err.Error()
		}
		r.Skipped = append(r.Skipped, skipped)
	}

	if deletion != nil {
		r.Deletion = &Deletion{
			DryRun:  deletion.DryRun,
			Deleted: append([]string{}, deletion.Deleted...),
			Errors:  []ErrorFile{},
		}
		for _, f := range deletion.Failed {
			r.Deletion.Errors = append(r.Deletion.Errors, ErrorFile{Path: f.Path, Error: f.Error.Error()})
		}
		r.Summary.Deleted = len(deletion.Deleted)
		r.Summary.Failed = len(deletion.Failed)
	}

	r.Summary.FilesFound = scan.FilesFound
	r.Summary.FilesHashed = len(scan.Files)
	r.Summary.Skipped = len(scan.Skipped)
	r.Summary.Collisions = len(decisions)

	return r
}

// Encode serializes the report
func (r *Report) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", string(format))
	}
}

// WriteFile writes the report to path, encoded according to its extension
func WriteFile(path string, r *Report) error {
	data, err := r.Encode(FormatForPath(path))
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
