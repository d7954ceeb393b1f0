package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"cssb/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report archive. When configured destination cannot
// be created report goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{
		files: make(map[string]string),
		data:  make(map[string]stamped),
	}
	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type stamped struct {
	stamp time.Time
	data  []byte
}

// Report collects everything needed to troubleshoot a run: log files, active
// configuration and transcript of processed selectors. It is written as a
// zip archive on Close. All methods are no-ops on nil Report, so callers do
// not have to check whether report was requested.
// NOTE: not safe for concurrent use.
type Report struct {
	file       *os.File
	files      map[string]string // archive name -> absolute path, read on Close
	data       map[string]stamped
	transcript bytes.Buffer
	records    int
}

// Close writes the archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns absolute name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be put into archive under name. File is read when
// report is closed, so logs will have their final content.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if old, exists := r.files[name]; exists && old != path {
		panic(fmt.Sprintf("report entry [%s] already points to %s, refusing %s", name, old, path))
	}
	r.files[name] = path
}

// StoreData puts copy of data into archive under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.data[name]; exists {
		panic(fmt.Sprintf("report entry [%s] already has data", name))
	}
	r.data[name] = stamped{stamp: time.Now(), data: bytes.Clone(data)}
}

// Record adds line to selector transcript: source text and what it became,
// or why it was rejected.
func (r *Report) Record(source, result string, err error) {
	if r == nil {
		return
	}
	r.records++
	if err != nil {
		fmt.Fprintf(&r.transcript, "%d\t%q\tERROR %v\n", r.records, source, err)
		return
	}
	fmt.Fprintf(&r.transcript, "%d\t%q\t%q\n", r.records, source, result)
}

const (
	manifestName   = "MANIFEST"
	transcriptName = "transcript.txt"
)

func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	now := time.Now()
	if r.records > 0 {
		r.data[transcriptName] = stamped{stamp: now, data: r.transcript.Bytes()}
	}

	names := make([]string, 0, len(r.files)+len(r.data))
	for name := range r.files {
		names = append(names, name)
	}
	for name := range r.data {
		if _, dup := r.files[name]; !dup {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	var manifest bytes.Buffer
	for _, name := range names {
		if path, ok := r.files[name]; ok {
			fmt.Fprintf(&manifest, "%s\t%s\t%s\n", now.UTC().Format(time.UnixDate), name, path)
			continue
		}
		fmt.Fprintf(&manifest, "%s\t%s\t(data, %d bytes)\n", r.data[name].stamp.UTC().Format(time.UnixDate), name, len(r.data[name].data))
	}
	if err := addEntry(arc, manifestName, now, &manifest); err != nil {
		return err
	}

	for _, name := range names {
		if path, ok := r.files[name]; ok {
			if err := addFile(arc, name, path); err != nil {
				return err
			}
			continue
		}
		if err := addEntry(arc, name, r.data[name].stamp, bytes.NewReader(r.data[name].data)); err != nil {
			return err
		}
	}
	return arc.Close()
}

// addFile copies regular file into archive, absent files are skipped.
func addFile(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addEntry(arc, name, info.ModTime(), f)
}

func addEntry(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	return nil
}
