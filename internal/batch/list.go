package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Default file patterns.
var (
	LabelPatterns = []string{"*.json"}
	ImagePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.bmp", "*.tif", "*.tiff", "*.gif"}
)

// ListFiles walks every directory in dirs and returns the files whose base
// name matches one of patterns, sorted and without duplicates.
func ListFiles(dirs, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || seen[path] {
				return nil
			}
			for _, p := range patterns {
				if ok, _ := filepath.Match(p, d.Name()); ok {
					seen[path] = true
					out = append(out, path)
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
	}
	sort.Strings(out)
	return out, nil
}
