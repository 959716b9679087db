package searchcommand

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
)

// DecodeRecords parses a CSV chunk body into records. The first row is the
// header; an empty body yields no records.
func DecodeRecords(body []byte) ([]*types.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("searchcommand: reading CSV header: %w", err)
	}

	var records []*types.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("searchcommand: reading CSV row %d: %w", len(records)+1, err)
		}

		record := types.NewRecord()
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			record.Set(name, value)
		}
		records = append(records, record)
	}
	return records, nil
}

// EncodeRecords renders records as a CSV body. The header is the union of
// all field names in order of first appearance; absent fields are empty.
func EncodeRecords(records []*types.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var header []string
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			header = append(header, k)
		}
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	row := make([]string, len(header))
	for _, r := range records {
		for i, k := range header {
			row[i] = r.Value(k)
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("searchcommand: writing CSV: %w", err)
	}
	return buf.Bytes(), nil
}
