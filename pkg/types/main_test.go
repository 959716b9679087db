package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRecord("b", "1", "a", "2")
	r.Set("c", "3")
	r.Set("b", "4")

	if got, want := r.Keys(), []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v", want, got)
	}
	if r.Value("b") != "4" {
		t.Errorf("Expected overwritten value 4, got %s", r.Value("b"))
	}
}

func TestRecordMerge(t *testing.T) {
	r := NewRecord("url", "https://example.com", "http_status_code", "stale")
	r.Merge(NewRecord("http_lookup_success", "true", "http_status_code", "200"))

	if got, want := r.Keys(), []string{"url", "http_status_code", "http_lookup_success"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v", want, got)
	}
	if r.Value("http_status_code") != "200" {
		t.Errorf("Expected merged value to win, got %s", r.Value("http_status_code"))
	}

	r.Merge(nil)
	if r.Len() != 3 {
		t.Errorf("Expected merging nil to be a no-op, got %d fields", r.Len())
	}
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := NewRecord("a", "1")
	c := r.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	if r.Value("a") != "1" || r.Len() != 1 {
		t.Errorf("Expected original to be untouched, got %v", r.Keys())
	}
}

func TestRecordNilSafe(t *testing.T) {
	var r *Record
	if _, ok := r.Get("x"); ok {
		t.Error("Expected nil record to have no fields")
	}
	if r.Len() != 0 || r.Keys() != nil {
		t.Error("Expected nil record to be empty")
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	input := `{"zeta":"last","alpha":1.50,"nested":{"x":[1,2]},"flag":true,"none":null}`

	var r Record
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got, want := r.Keys(), []string{"zeta", "alpha", "nested", "flag", "none"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v", want, got)
	}
	if r.Value("alpha") != "1.50" {
		t.Errorf("Expected number literal to be kept, got %s", r.Value("alpha"))
	}
	if r.Value("nested") != `{"x":[1,2]}` {
		t.Errorf("Expected nested object as JSON text, got %s", r.Value("nested"))
	}
	if r.Value("none") != "" {
		t.Errorf("Expected null to become empty, got %s", r.Value("none"))
	}

	out, err := json.Marshal(&r)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := `{"zeta":"last","alpha":"1.50","nested":"{\"x\":[1,2]}","flag":"true","none":""}`
	if string(out) != want {
		t.Errorf("Expected %s, got %s", want, out)
	}
}

func TestRecordUnmarshalCompactsNestedValues(t *testing.T) {
	var spaced, tight Record
	if err := json.Unmarshal([]byte(`{"tags": [ "a",  "b" ], "info": { "x" : 1 }}`), &spaced); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"tags":["a","b"],"info":{"x":1}}`), &tight); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, k := range []string{"tags", "info"} {
		if spaced.Value(k) != tight.Value(k) {
			t.Errorf("Expected %s to ignore formatting, got %q and %q", k, spaced.Value(k), tight.Value(k))
		}
	}
	if spaced.Value("tags") != `["a","b"]` {
		t.Errorf("Expected compact tags, got %s", spaced.Value("tags"))
	}
}

func TestRecordUnmarshalRejectsArray(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`["a"]`), &r); err == nil {
		t.Error("Expected an error for a JSON array")
	}
}

func TestNamespaceResults(t *testing.T) {
	failure := HTTPNamespace.MissingField()
	if got, want := failure.Keys(), []string{"http_error", "http_lookup_success"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v", want, got)
	}
	if failure.Value("http_error") != ErrMissingField {
		t.Errorf("Unexpected error message %s", failure.Value("http_error"))
	}
	if HTTPNamespace.Succeeded(failure) {
		t.Error("Expected failure not to count as success")
	}

	r := NewRecord(WhoisNamespace.Key(FieldLookupSuccess), ValueTrue, "whois_domain", "example.com")
	WhoisNamespace.MarkFailed(r, "boom")
	if r.Value("whois_lookup_success") != ValueFalse || r.Value("whois_domain") != "example.com" {
		t.Errorf("Expected captured data to survive MarkFailed, got %v", r.Keys())
	}
}
