// Package loader decodes usage records from Claude Code JSONL logs and
// from normalized JSON/CSV exports.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/zhaobenny/ccledger/internal/model"
)

// ParseJSONLFile parses one Claude Code JSONL log. Malformed lines,
// non-assistant entries, and entries without usage are skipped; the
// remaining lines become normalized records with cache tokens folded
// into the input count.
func ParseJSONLFile(path string) ([]model.UsageRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []model.UsageRecord
	scanner := bufio.NewScanner(file)

	// Increase buffer size for large lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !gjson.ValidBytes(line) {
			continue
		}
		entry := gjson.ParseBytes(line)

		if entry.Get("type").String() != "assistant" {
			continue
		}
		modelName := entry.Get("message.model").String()
		if modelName == "" {
			continue
		}

		usage := entry.Get("message.usage")
		input := usage.Get("input_tokens").Int()
		output := usage.Get("output_tokens").Int()
		if input == 0 && output == 0 {
			continue
		}
		input += usage.Get("cache_creation_input_tokens").Int()
		input += usage.Get("cache_read_input_tokens").Int()

		timestamp, err := time.Parse(time.RFC3339, entry.Get("timestamp").String())
		if err != nil {
			continue
		}

		r := model.UsageRecord{
			ID:           recordID(timestamp, modelName),
			Timestamp:    timestamp,
			Model:        modelName,
			InputTokens:  input,
			OutputTokens: output,
			SessionID:    entry.Get("sessionId").String(),
		}
		if cwd := entry.Get("cwd").String(); cwd != "" {
			r.Metadata = map[string]model.MetaValue{"cwd": model.StringValue(cwd)}
		}
		records = append(records, r)
	}

	return records, scanner.Err()
}

// recordID builds a unique, roughly sortable record identity.
func recordID(at time.Time, modelName string) string {
	return fmt.Sprintf("%d_%s_%s", at.Unix(), modelName, uuid.NewString())
}
