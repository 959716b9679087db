package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
)

// Helper function to create a test directory with the given files
func setupTestFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
	return tempDir
}

func processJSON(t *testing.T, content, field string) *Parser {
	t.Helper()
	parser := NewParser(strings.NewReader(content), "test.json")
	parser.Field = field
	if err := parser.ProcessJSON(); err != nil {
		t.Fatalf("ProcessJSON failed: %v", err)
	}
	return parser
}

func TestProcessSimpleScan(t *testing.T) {
	testURLs := []string{
		"https://example.com",
		"http://example.org/path?q=1",
		"example.net",
	}
	testContent := "# scan targets\n\n" + strings.Join(testURLs, "\n") + "\n   \n"

	parser := NewSimpleParser(strings.NewReader(testContent), "urls.txt", "url")
	if err := parser.ProcessSimpleScan(); err != nil {
		t.Fatalf("ProcessSimpleScan failed: %v", err)
	}

	if len(parser.Records) != len(testURLs) {
		t.Fatalf("Expected %d records, got %d", len(testURLs), len(parser.Records))
	}
	for i, url := range testURLs {
		if got := parser.Records[i].Value("url"); got != url {
			t.Errorf("Expected record %d to hold %s, got %s", i, url, got)
		}
	}
}

func TestProcessJSONArray(t *testing.T) {
	parser := processJSON(t, `[
		{"host": "web01", "url": "https://example.com", "status": 200},
		{"url": "https://example.org", "tags": ["a", "b"]}
	]`, "url")

	if len(parser.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(parser.Records))
	}
	if got := parser.Records[0].Keys(); !reflect.DeepEqual(got, []string{"host", "url", "status"}) {
		t.Errorf("Expected field order to be kept, got %v", got)
	}
	if parser.Records[0].Value("status") != "200" {
		t.Errorf("Expected status 200, got %s", parser.Records[0].Value("status"))
	}
	if parser.Records[1].Value("tags") != `["a","b"]` {
		t.Errorf("Expected tags as JSON text, got %s", parser.Records[1].Value("tags"))
	}
}

func TestProcessJSONSingleObject(t *testing.T) {
	parser := processJSON(t, `{
		"template-id": "generic-detection",
		"info": {"name": "Generic Detection", "severity": "info"},
		"url": "http://example.com/"
	}`, "url")

	if len(parser.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(parser.Records))
	}
	if parser.Records[0].Value("url") != "http://example.com/" {
		t.Errorf("Unexpected url %s", parser.Records[0].Value("url"))
	}
}

func TestProcessJSONKeyedMap(t *testing.T) {
	parser := processJSON(t, `{
		"https://b.example": {"owner": "team-b"},
		"https://a.example": {"owner": "team-a", "url": "https://a.example/login"}
	}`, "url")

	if len(parser.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(parser.Records))
	}
	if parser.Records[0].Value("url") != "https://b.example" {
		t.Errorf("Expected key to fill the missing url, got %s", parser.Records[0].Value("url"))
	}
	if parser.Records[1].Value("url") != "https://a.example/login" {
		t.Errorf("Expected existing url to be kept, got %s", parser.Records[1].Value("url"))
	}
}

func TestProcessJSONLines(t *testing.T) {
	parser := processJSON(t, "{\"url\":\"https://a.example\"}\n{\"url\":\"https://b.example\"}\n", "url")

	if len(parser.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(parser.Records))
	}
	if parser.Records[1].Value("url") != "https://b.example" {
		t.Errorf("Unexpected url %s", parser.Records[1].Value("url"))
	}
}

func TestProcessJSONInvalid(t *testing.T) {
	parser := NewParser(strings.NewReader(`[{"url": `), "broken.json")
	if err := parser.ProcessJSON(); err == nil {
		t.Error("Expected an error for truncated JSON")
	}

	parser = NewParser(strings.NewReader(`["https://example.com"]`), "strings.json")
	if err := parser.ProcessJSON(); err == nil {
		t.Error("Expected an error for an array of strings")
	}
}

func TestDetectFormat(t *testing.T) {
	testDir := setupTestFiles(t, map[string]string{
		"urls.txt":    "https://example.com\nexample.org\n",
		"events.json": `[{"url": "https://example.com"}]`,
		"lines.json":  "{\"url\": \"https://example.com\"}\n",
		"empty.txt":   "\n",
	})

	tests := map[string]string{
		"urls.txt":    FormatURLList,
		"events.json": FormatJSON,
		"lines.json":  FormatJSON,
		"empty.txt":   FormatUnknown,
	}
	for name, want := range tests {
		got, err := DetectFormat(filepath.Join(testDir, name))
		if err != nil {
			t.Fatalf("DetectFormat(%s) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("Expected %s for %s, got %s", want, name, got)
		}
	}

	if _, err := DetectFormat(filepath.Join(testDir, "missing.txt")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestWriteOutput(t *testing.T) {
	testDir := setupTestFiles(t, nil)
	outputPath := filepath.Join(testDir, "output.json")

	outputFile, err := os.Create(outputPath)
	if err != nil {
		t.Fatalf("Failed to create output file: %v", err)
	}

	parser := Parser{}
	parser.Records = append(parser.Records,
		types.NewRecord("url", "https://example.com", "http_lookup_success", "true", "http_status_code", "200"),
		types.NewRecord("url", "", "http_error", types.ErrMissingField, "http_lookup_success", "false"),
	)

	if err := parser.WriteOutput(outputFile); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}
	outputFile.Close()

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}

	var result []map[string]string
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to parse output JSON: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 records in output, got %d", len(result))
	}
	if result[1]["http_error"] != types.ErrMissingField {
		t.Errorf("Unexpected error field %s", result[1]["http_error"])
	}
	if strings.Index(string(data), `"url"`) > strings.Index(string(data), `"http_lookup_success"`) {
		t.Error("Expected field order to be kept in output")
	}
}

func TestWriteOutputEmpty(t *testing.T) {
	var sb strings.Builder
	if err := (&Parser{}).WriteOutput(&sb); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}
	if strings.TrimSpace(sb.String()) != "[]" {
		t.Errorf("Expected an empty array, got %s", sb.String())
	}
}
