// Package source loads the ledger feed, price list and shop space tables
// from disk.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Loader reads one input format.
type Loader interface {
	Load(path string) (model.Inputs, error)
	Format() string
}

// Registry holds named loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds a loader. Panics on duplicate format.
func (r *Registry) Register(l Loader) {
	key := strings.ToLower(l.Format())
	if _, ok := r.loaders[key]; ok {
		panic("duplicate loader format: " + key)
	}
	r.loaders[key] = l
}

// Get returns the loader for format, or nil.
func (r *Registry) Get(format string) Loader {
	return r.loaders[strings.ToLower(format)]
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVLoader{})
	r.Register(&XLSXLoader{})
	return r
}

// Load reads path with the named loader. An empty format is detected from
// the path.
func (r *Registry) Load(path, format string) (model.Inputs, error) {
	if format == "" {
		detected, err := Detect(path)
		if err != nil {
			return model.Inputs{}, err
		}
		format = detected
	}
	l := r.Get(format)
	if l == nil {
		return model.Inputs{}, fmt.Errorf("unknown input format %q (have %s)", format, strings.Join(r.Formats(), ", "))
	}
	in, err := l.Load(path)
	if err != nil {
		return model.Inputs{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return in, nil
}

// Detect names the format of path: a directory is read as csv tables and
// a workbook by its extension.
func Detect(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return FormatCSV, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("cannot detect format of %s", path)
}

// InputDir is the repo subdirectory holding input files.
const InputDir = "input"

// FileInfo describes a candidate input in the input directory.
type FileInfo struct {
	Name    string
	Path    string
	Format  string
	ModTime int64
}

// Scan returns the inputs found in <repoRoot>/input/, newest first. The
// directory itself is a candidate when it holds a transactions table.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, InputDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		name := e.Name()
		switch {
		case strings.HasPrefix(name, "~$"):
			// Excel lock file.
		case strings.EqualFold(name, TransactionsFile):
			files = append(files, FileInfo{Name: InputDir, Path: dir, Format: FormatCSV, ModTime: info.ModTime().UnixNano()})
		case strings.EqualFold(filepath.Ext(name), ".xlsx"):
			files = append(files, FileInfo{Name: name, Path: filepath.Join(dir, name), Format: FormatXLSX, ModTime: info.ModTime().UnixNano()})
		}
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].ModTime > files[j].ModTime })
	return files, nil
}
