// Package files locates the raw extract files the pipeline consumes.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Part file extensions, tried in order.
var partExtensions = []string{".csv", ".xlsx"}

// FileInfo describes a discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery over the raw data directory.
type Discovery struct {
	rawDir string
}

// NewDiscovery creates a discovery instance rooted at the raw data directory.
func NewDiscovery(rawDir string) *Discovery {
	return &Discovery{rawDir: rawDir}
}

// FindTableParts locates all expected part files for a table, named
// <year>_<table>_part<N> with a .csv or .xlsx extension. Every part must be
// present: a missing part returns an error naming the exact path expected,
// so there is never a partial load.
func (d *Discovery) FindTableParts(year int, table string, expected int) ([]FileInfo, error) {
	if _, err := os.Stat(d.rawDir); err != nil {
		return nil, fmt.Errorf("raw data directory not found: %s: %w", d.rawDir, err)
	}

	parts := make([]FileInfo, 0, expected)
	for n := 1; n <= expected; n++ {
		stem := filepath.Join(d.rawDir, fmt.Sprintf("%d_%s_part%d", year, table, n))

		var found *FileInfo
		for _, ext := range partExtensions {
			path := stem + ext
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			found = &FileInfo{
				Path:    path,
				Name:    filepath.Base(path),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}
			break
		}
		if found == nil {
			return nil, fmt.Errorf("part %d of table %s not found: expected %s.csv (or .xlsx) in %s",
				n, table, stem, d.rawDir)
		}
		parts = append(parts, *found)
	}
	return parts, nil
}

// FindCSVFiles lists the CSV files in a directory, sorted by name.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".csv")
}

// FindExcelFiles lists the workbook files in a directory, sorted by name.
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".xlsx")
}

func (d *Discovery) findByExtension(dir, ext string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.rawDir, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}
