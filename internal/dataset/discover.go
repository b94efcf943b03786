package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Discover lists the regular entries of dir (not recursive) whose name ends
// with ext and returns their paths in lexicographic order. Directories are
// skipped even when their name matches.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: listing %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by filename.
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
