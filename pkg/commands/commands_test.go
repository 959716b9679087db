package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/searchcommand"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/whois"

	whoisparser "github.com/likexian/whois-parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SPLUNK_LOOKUP_CONFIG", "")
	t.Setenv("IPINFO_TOKEN", "")
}

func frame(meta, body string) string {
	return fmt.Sprintf("chunked 1.0,%d,%d\n%s%s", len(meta), len(body), meta, body)
}

func splunkInput(args []string, body string) string {
	encoded, _ := json.Marshal(args)
	return frame(`{"action":"getinfo","searchinfo":{"args":`+string(encoded)+`,"sid":"scheduler_1"}}`, "") +
		frame(`{"action":"execute","finished":true}`, body)
}

func readChunks(t *testing.T, out *bytes.Buffer) []*searchcommand.Chunk {
	t.Helper()
	reader := bufio.NewReader(out)
	var chunks []*searchcommand.Chunk
	for {
		chunk, err := searchcommand.ReadChunk(reader)
		if errors.Is(err, io.EOF) {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
}

type stubQuerier struct{}

func (stubQuerier) Query(_ context.Context, domain string) (*whois.Entry, error) {
	return &whois.Entry{
		Domain: domain,
		Info: whoisparser.WhoisInfo{
			Domain:    &whoisparser.Domain{Domain: domain, NameServers: []string{"ns1.example.net", "ns2.example.net"}},
			Registrar: &whoisparser.Contact{Name: "Example Registrar"},
		},
	}, nil
}

func TestTestCommandSplunk(t *testing.T) {
	cleanEnv(t)
	var out bytes.Buffer

	code := Run(TestName, NewTest, []string{"--splunk"}, strings.NewReader(splunkInput(nil, "")), &out)

	require.Equal(t, ExitOK, code)
	chunks := readChunks(t, &out)
	require.Len(t, chunks, 2)
	assert.JSONEq(t, `{"type":"stateful","generating":true}`, string(chunks[0].RawMetadata))
	assert.Equal(t, "_time,message\n1234567890,Hello from test command!\n", string(chunks[1].Body))
}

func TestTestCommandStandalone(t *testing.T) {
	cleanEnv(t)
	var out bytes.Buffer

	code := Run(TestName, NewTest, []string{"-o", "-"}, strings.NewReader(""), &out)

	require.Equal(t, ExitOK, code)
	var records []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	assert.Equal(t, []map[string]string{{"_time": "1234567890", "message": TestMessage}}, records)
}

func TestCurlSplunk(t *testing.T) {
	cleanEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "pong")
	}))
	defer server.Close()

	body := "_raw,url\nfirst," + server.URL + "/ping\nsecond,\n"
	var out bytes.Buffer

	code := Run(CurlName, NewCurl, []string{"--splunk"}, strings.NewReader(splunkInput([]string{"url_field=url", "timeout=5"}, body)), &out)

	require.Equal(t, ExitOK, code)
	chunks := readChunks(t, &out)
	require.Len(t, chunks, 2)
	assert.JSONEq(t, `{"type":"streaming","generating":false}`, string(chunks[0].RawMetadata))

	records, err := searchcommand.DecodeRecords(chunks[1].Body)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "first", records[0].Value("_raw"))
	assert.Equal(t, "true", records[0].Value("http_lookup_success"))
	assert.Equal(t, "200", records[0].Value("http_status_code"))
	assert.Equal(t, "pong", records[0].Value("http_body_content"))

	assert.Equal(t, "second", records[1].Value("_raw"))
	assert.Equal(t, "false", records[1].Value("http_lookup_success"))
	assert.Equal(t, types.ErrMissingField, records[1].Value("http_error"))
}

func TestCurlSplunkRejectsBadOptions(t *testing.T) {
	cleanEnv(t)
	var out bytes.Buffer

	code := Run(CurlName, NewCurl, []string{"--splunk"}, strings.NewReader(splunkInput([]string{"url_field=url", "timeout=never"}, "")), &out)

	assert.Equal(t, ExitError, code)
	chunks := readChunks(t, &out)
	require.Len(t, chunks, 1)
	assert.Contains(t, string(chunks[0].RawMetadata), `"ERROR"`)
	assert.Contains(t, string(chunks[0].RawMetadata), "Invalid value for timeout")
}

func TestCurlStandaloneURLList(t *testing.T) {
	cleanEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "urls.txt")
	output := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(input, []byte("# targets\n"+server.URL+"/missing\n"), 0o600))

	code := Run(CurlName, NewCurl, []string{"-f", input, "-o", output, "--url-field", "target"}, strings.NewReader(""), io.Discard)

	require.Equal(t, ExitOK, code)
	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var records []map[string]string
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, server.URL+"/missing", records[0]["target"])
	assert.Equal(t, "404", records[0]["http_status_code"])
	assert.Equal(t, "HTTP error: 404 Not Found", records[0]["http_error"])
	assert.Equal(t, "false", records[0]["http_lookup_success"])
}

func TestWhoisSplunkWithStubQuerier(t *testing.T) {
	cleanEnv(t)
	factory := func(env *Env) searchcommand.Command {
		return &Whois{env: env, querier: stubQuerier{}}
	}
	body := "url\nhttps://example.com/login\n"
	var out bytes.Buffer

	code := Run(WhoisName, factory, []string{"--splunk"}, strings.NewReader(splunkInput([]string{"url_field=url"}, body)), &out)

	require.Equal(t, ExitOK, code)
	chunks := readChunks(t, &out)
	require.Len(t, chunks, 2)

	records, err := searchcommand.DecodeRecords(chunks[1].Body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "true", records[0].Value("whois_lookup_success"))
	assert.Equal(t, "example.com", records[0].Value("whois_domain"))
	assert.Equal(t, "Example Registrar", records[0].Value("whois_parsed_registrar"))
	assert.Equal(t, "ns1.example.net, ns2.example.net", records[0].Value("whois_parsed_name_servers"))
}

func TestWhoisDisabledIsUnavailable(t *testing.T) {
	cleanEnv(t)
	configPath := filepath.Join(t.TempDir(), "lookup.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("whois:\n  enabled: false\n"), 0o600))

	var out bytes.Buffer
	code := Run(WhoisName, NewWhois, []string{"--splunk", "-c", configPath}, strings.NewReader(splunkInput([]string{"url_field=url"}, "url\nexample.com\nexample.org\n")), &out)

	require.Equal(t, ExitOK, code)
	chunks := readChunks(t, &out)
	require.Len(t, chunks, 2)

	records, err := searchcommand.DecodeRecords(chunks[1].Body)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, whois.ErrMsgUnavailable, r.Value("whois_error"))
		assert.Equal(t, "false", r.Value("whois_lookup_success"))
	}
}

func TestRunFlagErrors(t *testing.T) {
	cleanEnv(t)

	assert.Equal(t, ExitOK, Run(TestName, NewTest, []string{"--help"}, strings.NewReader(""), io.Discard))
	assert.Equal(t, ExitUsage, Run(TestName, NewTest, []string{"--bogus"}, strings.NewReader(""), io.Discard))
	assert.Equal(t, ExitError, Run(CurlName, NewCurl, []string{"--url-field", "bad field", "-o", "-"}, strings.NewReader("https://example.com\n"), io.Discard))
}
