package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Discover expands paths into the image files to process. Files are kept as
// given, in order; directories contribute their supported images in lexical
// order, descending into subdirectories only when recursive is set.
//
// Patterns match the base name with filepath.Match. A file matching any
// exclude pattern is skipped; when include patterns are given a file must
// match one of them.
func Discover(paths []string, recursive bool, include, exclude []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			if selected(p, include, exclude) {
				files = append(files, p)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSupportedImage(path) && selected(path, include, exclude) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
	}
	return files, nil
}

func selected(path string, include, exclude []string) bool {
	if matchesAny(path, exclude) {
		return false
	}
	return len(include) == 0 || matchesAny(path, include)
}

func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
