package searchcommand

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// maxChunkSize guards against a corrupted header making us allocate gigabytes
const maxChunkSize = 512 << 20

var headerPattern = regexp.MustCompile(`^chunked\s+1\.0\s*,\s*(\d+)\s*,\s*(\d+)\s*$`)

// Error messages
const (
	errBadHeader    = "searchcommand: malformed chunk header %q"
	errChunkTooBig  = "searchcommand: chunk of %d bytes exceeds the limit"
	errReadMetadata = "searchcommand: reading metadata: %w"
	errReadBody     = "searchcommand: reading body: %w"
	errDecodeMeta   = "searchcommand: decoding metadata: %w"
)

// Chunk is one message of the chunked protocol: a JSON metadata object
// followed by an optional CSV body
type Chunk struct {
	Metadata    Metadata
	RawMetadata []byte
	Body        []byte
}

// Metadata is the JSON header of a chunk sent by splunkd
type Metadata struct {
	Action     string      `json:"action"`
	Preview    bool        `json:"preview"`
	Finished   bool        `json:"finished"`
	SearchInfo *SearchInfo `json:"searchinfo,omitempty"`
}

// SearchInfo describes the search the command runs in. Only the fields the
// commands use are decoded.
type SearchInfo struct {
	Args        []string `json:"args"`
	Command     string   `json:"command"`
	SID         string   `json:"sid"`
	App         string   `json:"app"`
	Owner       string   `json:"owner"`
	Username    string   `json:"username"`
	DispatchDir string   `json:"dispatch_dir"`
	SplunkdURI  string   `json:"splunkd_uri"`
	SplunkVer   string   `json:"splunk_version"`
}

// ReadChunk reads the next chunk. It returns io.EOF when the stream ends
// cleanly between two chunks.
func ReadChunk(r *bufio.Reader) (*Chunk, error) {
	var header string
	for {
		line, err := r.ReadString('\n')
		header = strings.TrimSpace(line)
		if header != "" {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
	}

	match := headerPattern.FindStringSubmatch(header)
	if match == nil {
		return nil, fmt.Errorf(errBadHeader, header)
	}
	metaLen, err := chunkLength(match[1])
	if err != nil {
		return nil, err
	}
	bodyLen, err := chunkLength(match[2])
	if err != nil {
		return nil, err
	}

	meta := make([]byte, metaLen)
	if _, err := io.ReadFull(r, meta); err != nil {
		return nil, fmt.Errorf(errReadMetadata, err)
	}
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf(errReadBody, err)
	}

	chunk := &Chunk{RawMetadata: meta, Body: body}
	if metaLen > 0 {
		if err := json.Unmarshal(meta, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf(errDecodeMeta, err)
		}
	}
	return chunk, nil
}

func chunkLength(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf(errBadHeader, s)
	}
	if n > maxChunkSize {
		return 0, fmt.Errorf(errChunkTooBig, n)
	}
	return n, nil
}

// WriteChunk encodes metadata as JSON and writes it with body as one chunk
func WriteChunk(w io.Writer, metadata any, body []byte) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("searchcommand: encoding metadata: %w", err)
	}

	if _, err := fmt.Fprintf(w, "chunked 1.0,%d,%d\n", len(meta), len(body)); err != nil {
		return err
	}
	if _, err := w.Write(meta); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
