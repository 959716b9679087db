package types

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field suffixes shared by every lookup namespace
const (
	FieldLookupSuccess = "lookup_success"
	FieldError         = "error"

	ValueTrue  = "true"
	ValueFalse = "false"

	// ErrMissingField is written when the configured source field is absent or empty
	ErrMissingField = "URL field not found or empty in input event"
)

var errNotAnObject = errors.New("record: expected a JSON object")

// Record represents one event of the search pipeline.
// It is an ordered mapping from field name to string value; keys keep the
// position of their first insertion and are never removed.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord creates a record from alternating key, value arguments.
// A trailing key without a value is stored with an empty value.
func NewRecord(pairs ...string) *Record {
	r := &Record{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		r.Set(pairs[i], value)
	}
	return r
}

// Get returns the value stored under key and whether the key exists
func (r *Record) Get(key string) (string, bool) {
	if r == nil || r.values == nil {
		return "", false
	}
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value stored under key or an empty string
func (r *Record) Value(key string) string {
	v, _ := r.Get(key)
	return v
}

// Set stores value under key. New keys are appended, existing keys are
// overwritten in place.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Merge copies every field of other into r, in other's order.
// Colliding keys are overwritten.
func (r *Record) Merge(other *Record) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		r.Set(k, other.values[k])
	}
}

// Keys returns a copy of the field names in insertion order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of fields
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := &Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON encodes the record as a JSON object preserving field order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record preserving field order.
// Non-string values are kept as compact JSON text, null becomes empty.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotAnObject
	}

	*r = Record{values: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record: decoding value of %q: %w", key, err)
		}
		r.Set(key, rawString(raw))
	}

	_, err = dec.Token()
	return err
}

func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err == nil {
		return compact.String()
	}
	return string(trimmed)
}

// Peer describes the network owner of an IP address a lookup connected to
type Peer struct {
	IP      string
	ASN     string
	Org     string
	Country string
	City    string
}

// Namespace is the fixed prefix under which a command writes derived fields,
// e.g. "http_" or "whois_"
type Namespace string

const (
	HTTPNamespace  Namespace = "http_"
	WhoisNamespace Namespace = "whois_"
)

// Key returns the prefixed field name
func (n Namespace) Key(name string) string {
	return string(n) + name
}

// Failure creates a lookup result carrying only an error message and success=false
func (n Namespace) Failure(message string) *Record {
	return NewRecord(
		n.Key(FieldError), message,
		n.Key(FieldLookupSuccess), ValueFalse,
	)
}

// MarkFailed flags an existing lookup result as failed, keeping its captured data
func (n Namespace) MarkFailed(r *Record, message string) {
	r.Set(n.Key(FieldError), message)
	r.Set(n.Key(FieldLookupSuccess), ValueFalse)
}

// Succeeded reports whether r carries success=true for this namespace
func (n Namespace) Succeeded(r *Record) bool {
	return r.Value(n.Key(FieldLookupSuccess)) == ValueTrue
}

// MissingField is the fixed result merged into records that lack the source field
func (n Namespace) MissingField() *Record {
	return n.Failure(ErrMissingField)
}
