package datasets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileEntry describes one candidate dataset file found in a folder.
type FileEntry struct {
	Path     string
	Name     string
	Size     int64
	Modified time.Time
	Driver   string
}

// DriverForPath maps a file extension to a registered driver name.
func DriverForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt", ".tsv":
		return "csv", nil
	case ".xlsx", ".xls", ".xlsm":
		return "excel", nil
	case ".html", ".htm":
		return "html", nil
	case ".zip":
		return "zip", nil
	}
	return "", fmt.Errorf("unsupported file type: %s", ext)
}

// ScanFolder walks root and returns the dataset files a driver can open,
// sorted by name. Hidden files and directories are skipped.
func ScanFolder(root string) ([]FileEntry, error) {
	var entries []FileEntry
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		driver, err := DriverForPath(path)
		if err != nil {
			return nil // not a dataset file
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			Path:     path,
			Name:     d.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Driver:   driver,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan folder: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
