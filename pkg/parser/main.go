package parser

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/sirupsen/logrus"
)

// Input formats recognized by DetectFormat
const (
	FormatJSON    = "json"
	FormatURLList = "url-list"
	FormatUnknown = "unknown"
)

// Parser reads records for standalone runs and writes the enriched result
type Parser struct {
	io.Reader
	Name    string
	Field   string
	Records []*types.Record
}

// NewParser creates a parser for JSON input
func NewParser(r io.Reader, name string) *Parser {
	return &Parser{
		Reader: r,
		Name:   name,
	}
}

// NewSimpleParser creates a parser for a plain list with one URL per line.
// Every line becomes a record holding the URL under field.
func NewSimpleParser(r io.Reader, name, field string) *Parser {
	return &Parser{
		Reader: r,
		Name:   name,
		Field:  field,
	}
}

// DetectFormat checks whether a file holds JSON records or a list of URLs
func DetectFormat(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return DetectContent(content), nil
}

// DetectContent classifies already loaded input
func DetectContent(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatURLList
}

// ProcessSimpleScan reads one URL per line, skipping empty lines and # comments
func (p *Parser) ProcessSimpleScan() error {
	logrus.Debug("parser: ProcessSimpleScan - started parsing: ", p.Name)
	scanner := bufio.NewScanner(p.Reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p.Records = append(p.Records, types.NewRecord(p.Field, line))
	}

	if err := scanner.Err(); err != nil {
		logrus.Errorf("parser: ProcessSimpleScan - error scanning %s: %v", p.Name, err)
		return fmt.Errorf("error scanning file: %w", err)
	}

	logrus.Debugf("parser: ProcessSimpleScan - parsed %d URLs", len(p.Records))
	return nil
}

// ProcessJSON reads records from an array of objects, a map of objects keyed
// by id, a single object, or newline delimited objects. Field order is kept.
// When Field is set, records of a keyed map that lack it get the key as value.
func (p *Parser) ProcessJSON() error {
	logrus.Debug("parser: ProcessJSON - started parsing: ", p.Name)

	content, err := io.ReadAll(p.Reader)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	var values []json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(content))
	for {
		var value json.RawMessage
		err := decoder.Decode(&value)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logrus.Errorf("parser: ProcessJSON - failed to parse %s: %v", p.Name, err)
			return fmt.Errorf("error parsing JSON: %w", err)
		}
		values = append(values, value)
	}

	switch {
	case len(values) == 0:
		logrus.Warn("parser: ProcessJSON - no records in ", p.Name)
	case len(values) > 1:
		logrus.Debug("parser: ProcessJSON - parsed as newline delimited format")
		for i, value := range values {
			if err := p.appendObject(value); err != nil {
				return fmt.Errorf("error parsing line %d: %w", i+1, err)
			}
		}
	case bytes.HasPrefix(values[0], []byte("[")):
		logrus.Debug("parser: ProcessJSON - parsed as array format")
		var array []json.RawMessage
		if err := json.Unmarshal(values[0], &array); err != nil {
			return fmt.Errorf("error parsing JSON array: %w", err)
		}
		for i, value := range array {
			if err := p.appendObject(value); err != nil {
				return fmt.Errorf("error parsing element %d: %w", i, err)
			}
		}
	default:
		if err := p.processObject(values[0]); err != nil {
			return err
		}
	}

	logrus.Debug("parser: ProcessJSON - ended parsing ", len(p.Records), " records")
	return nil
}

func (p *Parser) appendObject(value json.RawMessage) error {
	record := &types.Record{}
	if err := json.Unmarshal(value, record); err != nil {
		return err
	}
	p.Records = append(p.Records, record)
	return nil
}

// processObject tells a keyed map of records apart from a single record
func (p *Parser) processObject(value json.RawMessage) error {
	var top types.Record
	if err := json.Unmarshal(value, &top); err != nil {
		return fmt.Errorf("error parsing JSON object: %w", err)
	}

	keyed := top.Len() > 0
	for _, k := range top.Keys() {
		if !strings.HasPrefix(top.Value(k), "{") {
			keyed = false
			break
		}
	}

	if !keyed {
		logrus.Debug("parser: ProcessJSON - parsed as single object format")
		p.Records = append(p.Records, &top)
		return nil
	}

	logrus.Debug("parser: ProcessJSON - parsed as map format")
	for _, k := range top.Keys() {
		record := &types.Record{}
		if err := json.Unmarshal([]byte(top.Value(k)), record); err != nil {
			return fmt.Errorf("error parsing record %q: %w", k, err)
		}
		if p.Field != "" && record.Value(p.Field) == "" {
			record.Set(p.Field, k)
		}
		p.Records = append(p.Records, record)
	}
	return nil
}

// WriteOutput writes the records as an indented JSON array
func (p *Parser) WriteOutput(w io.Writer) error {
	records := p.Records
	if len(records) == 0 {
		logrus.Warn("parser: WriteOutput - no records to write")
		records = []*types.Record{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	logrus.Debug("parser: WriteOutput - ended")
	return nil
}
