package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yuya-takeyama/dupsweep/pkg/cleanup"
	"github.com/yuya-takeyama/dupsweep/pkg/dedup"
	"github.com/yuya-takeyama/dupsweep/pkg/digest"
	"github.com/yuya-takeyama/dupsweep/pkg/executor"
	"github.com/yuya-takeyama/dupsweep/pkg/pool"
	"gopkg.in/yaml.v3"
)

func sampleScan() *cleanup.ScanResult {
	return &cleanup.ScanResult{
		Root:       "/data",
		Algorithm:  digest.MD5,
		Workers:    4,
		FilesFound: 5,
		Files: []pool.FileResult{
			{Path: "/data/a", Digest: "x"},
			{Path: "/data/b/a", Digest: "x"},
			{Path: "/data/c/d/a", Digest: "x"},
			{Path: "/data/z", Digest: "y"},
		},
		Skipped: []cleanup.Skip{
			{Stage: cleanup.StageHash, Path: "/data/locked.bin", Err: errors.New("permission denied")},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestBuild(t *testing.T) {
	scan := sampleScan()
	decisions := []dedup.Decision{
		{Digest: "x", Keep: "/data/a", Remove: []string{"/data/b/a", "/data/c/d/a"}},
	}
	deletion := &executor.Report{
		Deleted: []string{"/data/b/a"},
		Failed:  []executor.Failure{{Path: "/data/c/d/a", Error: errors.New("read-only file system")}},
	}

	r := Build("scan-1", scan, decisions, deletion)

	want := Summary{
		FilesFound:  5,
		FilesHashed: 4,
		Skipped:     1,
		Collisions:  1,
		Duplicates:  2,
		Deleted:     1,
		Failed:      1,
	}
	if r.Summary != want {
		t.Errorf("Summary = %+v, want %+v", r.Summary, want)
	}
	if r.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", r.DurationMs)
	}
	if len(r.Skipped) != 1 || r.Skipped[0].Stage != "hash" || r.Skipped[0].Error != "permission denied" {
		t.Errorf("Skipped = %+v", r.Skipped)
	}
	if r.Deletion == nil || len(r.Deletion.Errors) != 1 || r.Deletion.Errors[0].Error != "read-only file system" {
		t.Errorf("Deletion = %+v", r.Deletion)
	}
}

func TestBuildWithoutDeletion(t *testing.T) {
	r := Build("scan-2", sampleScan(), nil, nil)

	if r.Deletion != nil {
		t.Errorf("Deletion = %+v, want nil", r.Deletion)
	}
	data, err := r.Encode(FormatJSON)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["deletion"]; ok {
		t.Error("deletion should be omitted when no deletion ran")
	}
	if groups, ok := decoded["groups"].([]any); !ok || len(groups) != 0 {
		t.Errorf("groups = %v, want empty array", decoded["groups"])
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"report.json": FormatJSON,
		"report.yaml": FormatYAML,
		"report.YML":  FormatYAML,
		"report":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	r := Build("scan-3", sampleScan(), []dedup.Decision{
		{Digest: "x", Keep: "/data/a", Remove: []string{"/data/b/a"}},
	}, nil)

	jsonPath := filepath.Join(dir, "report.json")
	if err := WriteFile(jsonPath, r); err != nil {
		t.Fatalf("WriteFile(json) error = %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var fromJSON Report
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if fromJSON.ID != "scan-3" || len(fromJSON.Groups) != 1 || fromJSON.Groups[0].Keep != "/data/a" {
		t.Errorf("json report = %+v", fromJSON)
	}

	yamlPath := filepath.Join(dir, "report.yaml")
	if err := WriteFile(yamlPath, r); err != nil {
		t.Fatalf("WriteFile(yaml) error = %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var fromYAML Report
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if fromYAML.Summary.FilesHashed != 4 || fromYAML.Algorithm != "md5" {
		t.Errorf("yaml report = %+v", fromYAML)
	}

	if _, err := r.Encode("xml"); err == nil {
		t.Error("Encode(xml) should fail")
	}
}
