package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverInputs finds the extraction files under dir: every .json file
// except generated manifests, sorted for deterministic batch order.
func DiscoverInputs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".json") || d.Name() == "manifest.json" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir loads every extraction file under dir into one record batch,
// preserving file order and in-file order.
func LoadDir(dir string) ([]Record, error) {
	paths, err := DiscoverInputs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no extraction files under %s", dir)
	}
	var records []Record
	for _, path := range paths {
		recs, err := LoadRecordsFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}
