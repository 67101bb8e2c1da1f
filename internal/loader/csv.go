package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/zhaobenny/ccledger/internal/model"
)

// csvColumns maps header names to their required position. The first
// five are mandatory, session_id and user_id optional.
var csvColumns = []string{"timestamp", "model", "input_tokens", "output_tokens", "cost", "session_id", "user_id"}

// ParseCSVFile parses a CSV export with the header
// timestamp,model,input_tokens,output_tokens,cost[,session_id[,user_id]].
// Unlike the tolerant JSONL path, a malformed row is a format error.
func ParseCSVFile(path string) ([]model.UsageRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(header) < 5 || len(header) > len(csvColumns) {
		return nil, fmt.Errorf("parse %s: expected 5-7 columns, got %d", path, len(header))
	}
	for i, name := range header {
		if name != csvColumns[i] {
			return nil, fmt.Errorf("parse %s: column %d is %q, want %q", path, i, name, csvColumns[i])
		}
	}

	var records []model.UsageRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		line++
		if len(row) != len(header) {
			return nil, fmt.Errorf("parse %s line %d: %d fields, want %d", path, line, len(row), len(header))
		}

		timestamp, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, line, err)
		}
		input, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: input_tokens: %w", path, line, err)
		}
		output, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: output_tokens: %w", path, line, err)
		}
		cost, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: cost: %w", path, line, err)
		}

		r := model.UsageRecord{
			ID:           recordID(timestamp, row[1]),
			Timestamp:    timestamp,
			Model:        row[1],
			InputTokens:  input,
			OutputTokens: output,
			Cost:         cost,
		}
		if len(row) > 5 {
			r.SessionID = row[5]
		}
		if len(row) > 6 {
			r.UserID = row[6]
		}
		records = append(records, r)
	}

	return records, nil
}
