package config

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readArchive returns content of every entry in zip file.
func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	logName := filepath.Join(dir, "run.log")
	rpt.Store("cssb.log", logName)
	rpt.Store("missing.log", filepath.Join(dir, "never-created.log"))
	rpt.StoreData("config/cssb.yaml", []byte("version: 1\n"))
	rpt.Record("a>b", "a > b", nil)
	rpt.Record("#a#b", "", errors.New("duplicate id"))

	// stored files are read on close, not when stored
	if err := os.WriteFile(logName, []byte("final log content"), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if rpt.Name() != conf.Destination {
		t.Errorf("Name() = %s, want %s", rpt.Name(), conf.Destination)
	}

	entries := readArchive(t, conf.Destination)
	if entries["cssb.log"] != "final log content" {
		t.Errorf("cssb.log = %q", entries["cssb.log"])
	}
	if entries["config/cssb.yaml"] != "version: 1\n" {
		t.Errorf("config/cssb.yaml = %q", entries["config/cssb.yaml"])
	}
	if _, ok := entries["missing.log"]; ok {
		t.Error("absent file should be skipped")
	}

	transcript := entries[transcriptName]
	if !strings.Contains(transcript, `1	"a>b"	"a > b"`) {
		t.Errorf("transcript does not contain parsed selector:\n%s", transcript)
	}
	if !strings.Contains(transcript, `2	"#a#b"	ERROR duplicate id`) {
		t.Errorf("transcript does not contain rejected selector:\n%s", transcript)
	}

	manifest := entries[manifestName]
	for _, name := range []string{"cssb.log", "config/cssb.yaml", transcriptName} {
		if !strings.Contains(manifest, name) {
			t.Errorf("manifest does not list %s:\n%s", name, manifest)
		}
	}
}

func TestReport_NoTranscriptWithoutRecords(t *testing.T) {
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := readArchive(t, conf.Destination)
	if _, ok := entries[transcriptName]; ok {
		t.Error("empty transcript should not be archived")
	}
	if _, ok := entries[manifestName]; !ok {
		t.Error("manifest is missing")
	}
}

func TestReport_FallsBackToTemp(t *testing.T) {
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "no", "such", "dir", "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer os.Remove(rpt.Name())

	if rpt.Name() == conf.Destination {
		t.Error("expected report in temporary location")
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestReport_Nil(t *testing.T) {
	var rpt *Report

	rpt.Store("a", "b")
	rpt.StoreData("a", nil)
	rpt.Record("a", "a", nil)
	if rpt.Name() != "" {
		t.Errorf("Name() = %q, want empty", rpt.Name())
	}
	if err := rpt.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestReport_DuplicateData(t *testing.T) {
	rpt, err := (&ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer rpt.Close()

	rpt.StoreData("x", []byte("1"))
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	rpt.StoreData("x", []byte("2"))
}
