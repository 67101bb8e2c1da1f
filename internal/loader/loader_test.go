package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/ccledger/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseJSONLFile(t *testing.T) {
	content := `{"type":"assistant","sessionId":"s1","timestamp":"2024-08-01T10:00:00Z","cwd":"/home/user/proj","message":{"model":"claude-3-5-sonnet","usage":{"input_tokens":100,"output_tokens":50,"cache_creation_input_tokens":20,"cache_read_input_tokens":10}}}
{"type":"user","timestamp":"2024-08-01T10:01:00Z"}
not json at all
{"type":"assistant","timestamp":"2024-08-01T10:02:00Z","message":{"model":"claude-3-5-sonnet","usage":{"input_tokens":0,"output_tokens":0}}}
{"type":"assistant","timestamp":"not-a-time","message":{"model":"claude-3-5-sonnet","usage":{"input_tokens":5,"output_tokens":5}}}
{"type":"assistant","sessionId":"s2","timestamp":"2024-08-01T11:00:00Z","message":{"model":"claude-3-opus","usage":{"input_tokens":200,"output_tokens":80}}}
`
	path := writeFile(t, "usage.jsonl", content)

	records, err := ParseJSONLFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "claude-3-5-sonnet", r.Model)
	// cache tokens fold into the input count
	assert.EqualValues(t, 130, r.InputTokens)
	assert.EqualValues(t, 50, r.OutputTokens)
	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, model.StringValue("/home/user/proj"), r.Metadata["cwd"])
	assert.Zero(t, r.Cost)

	assert.Equal(t, "claude-3-opus", records[1].Model)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestParseJSONFileRoundTrip(t *testing.T) {
	content := `[{"id":"r1","timestamp":"2024-08-01T10:00:00Z","model":"claude-3-opus","input_tokens":100,"output_tokens":50,"cost":0.5,"session_id":"s1"},
{"timestamp":"2024-08-01T11:00:00Z","model":"claude-3-opus","input_tokens":10,"output_tokens":5,"cost":0.1}]`
	path := writeFile(t, "records.json", content)

	records, err := ParseJSONFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.InDelta(t, 0.5, records[0].Cost, 1e-9)
	assert.NotEmpty(t, records[1].ID)
}

func TestParseCSVFile(t *testing.T) {
	content := `timestamp,model,input_tokens,output_tokens,cost,session_id,user_id
2024-08-01T10:00:00Z,claude-3-5-sonnet,100,50,0.0105,s1,u1
2024-08-01T11:00:00Z,claude-3-opus,200,80,0.9,s2,u1
`
	path := writeFile(t, "usage.csv", content)

	records, err := ParseCSVFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC), r.Timestamp.UTC())
	assert.Equal(t, "claude-3-5-sonnet", r.Model)
	assert.EqualValues(t, 100, r.InputTokens)
	assert.InDelta(t, 0.0105, r.Cost, 1e-9)
	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, "u1", r.UserID)
}

func TestParseCSVFileWithoutOptionalColumns(t *testing.T) {
	content := `timestamp,model,input_tokens,output_tokens,cost
2024-08-01T10:00:00Z,claude-3-5-sonnet,100,50,0.0105
`
	records, err := ParseCSVFile(writeFile(t, "usage.csv", content))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].SessionID)
}

func TestParseCSVFileErrors(t *testing.T) {
	t.Run("wrong header", func(t *testing.T) {
		_, err := ParseCSVFile(writeFile(t, "bad.csv", "date,model,in,out,cost\n"))
		assert.Error(t, err)
	})
	t.Run("bad row", func(t *testing.T) {
		content := "timestamp,model,input_tokens,output_tokens,cost\n2024-08-01T10:00:00Z,m,abc,50,0.1\n"
		_, err := ParseCSVFile(writeFile(t, "bad.csv", content))
		assert.Error(t, err)
	})
}

func TestFindAndLoadAll(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "project-a")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	line := `{"type":"assistant","sessionId":"s1","timestamp":"2024-08-01T10:00:00Z","message":{"model":"claude-3-5-sonnet","usage":{"input_tokens":100,"output_tokens":50}}}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(sub, "log.jsonl"), []byte(line), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	files := FindUsageFiles([]string{dir, filepath.Join(dir, "missing")})
	require.Len(t, files, 1)

	records, failed := LoadAll([]string{dir})
	assert.Empty(t, failed)
	require.Len(t, records, 1)
	assert.Equal(t, "claude-3-5-sonnet", records[0].Model)
}

func TestLoadAllWithFileSources(t *testing.T) {
	csvPath := writeFile(t, "usage.csv",
		"timestamp,model,input_tokens,output_tokens,cost\n2024-08-01T10:00:00Z,claude-3-opus,100,50,0.9\n")

	records, failed := LoadAll([]string{csvPath})
	assert.Empty(t, failed)
	require.Len(t, records, 1)
	assert.Equal(t, "claude-3-opus", records[0].Model)
	assert.InDelta(t, 0.9, records[0].Cost, 1e-9)

	// a broken file source is reported, not fatal
	bad := writeFile(t, "bad.csv", "not,a,valid,header\n")
	records, failed = LoadAll([]string{csvPath, bad})
	require.Len(t, records, 1)
	assert.Equal(t, []string{bad}, failed)
}

func TestLoadFileDispatch(t *testing.T) {
	_, err := LoadFile("usage.xml")
	assert.Error(t, err)
}
