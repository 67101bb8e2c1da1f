package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhaobenny/ccledger/internal/model"
)

// DefaultDataDirs returns the standard Claude Code log location.
func DefaultDataDirs() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(homeDir, ".claude", "projects")}, nil
}

// FindUsageFiles walks the given directories for JSONL logs. Missing or
// unreadable directories are skipped.
func FindUsageFiles(dirs []string) []string {
	var files []string
	for _, dir := range dirs {
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if !info.IsDir() && filepath.Ext(path) == ".jsonl" {
				files = append(files, path)
			}
			return nil
		})
	}
	return files
}

// LoadFile parses one file, dispatching on extension.
func LoadFile(path string) ([]model.UsageRecord, error) {
	switch filepath.Ext(path) {
	case ".jsonl":
		return ParseJSONLFile(path)
	case ".json":
		return ParseJSONFile(path)
	case ".csv":
		return ParseCSVFile(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// LoadAll parses every given source. Directory entries are walked for
// JSONL logs; file entries are dispatched on extension, so a source may
// name a .jsonl, .json, or .csv file directly. Sources that fail to parse
// are skipped; their paths are returned for diagnostics.
func LoadAll(sources []string) (records []model.UsageRecord, failed []string) {
	for _, source := range sources {
		var files []string
		if info, err := os.Stat(source); err == nil && !info.IsDir() {
			files = []string{source}
		} else {
			files = FindUsageFiles([]string{source})
		}
		for _, file := range files {
			parsed, err := LoadFile(file)
			if err != nil {
				failed = append(failed, file)
				continue
			}
			records = append(records, parsed...)
		}
	}
	return records, failed
}
