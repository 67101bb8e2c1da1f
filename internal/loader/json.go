package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zhaobenny/ccledger/internal/model"
)

// ParseJSONFile parses a JSON array of normalized records, the
// round-trip format produced by the JSON output mode. Records missing an
// id get one assigned.
func ParseJSONFile(path string) ([]model.UsageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []model.UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = recordID(records[i].Timestamp, records[i].Model)
		}
	}
	return records, nil
}
