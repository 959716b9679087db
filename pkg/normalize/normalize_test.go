package normalize

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type stringer struct{ s string }

func (s *stringer) String() string { return s.s }

func TestValueSequenceJoinsEmails(t *testing.T) {
	got := Value(Sequence, []string{"admin@example.com", "abuse@example.com"})
	assert.Equal(t, "admin@example.com, abuse@example.com", got)
}

func TestValueSequenceMixedElements(t *testing.T) {
	got := Value(Sequence, []any{"ns1.example.com", []byte("ns2.example.com"), 3})
	assert.Equal(t, "ns1.example.com, ns2.example.com, 3", got)
}

func TestValueSequenceFallsBackForScalars(t *testing.T) {
	assert.Equal(t, "clientTransferProhibited", Value(Sequence, "clientTransferProhibited"))
}

func TestValueBytes(t *testing.T) {
	assert.Equal(t, "Zürich", Value(Bytes, []byte("Zürich")))

	// ISO-8859-1 encoded "Zürich"
	latin1 := []byte{'Z', 0xfc, 'r', 'i', 'c', 'h'}
	got := Value(Bytes, latin1)
	assert.Equal(t, "Zürich", got)
	assert.True(t, utf8.ValidString(got))
}

func TestInvalidUTF8NeverEmpty(t *testing.T) {
	for _, rule := range []Rule{Text, Bytes, Sequence} {
		got := Value(rule, []byte{0xff, 0xfe, 0xfd})
		assert.NotEmpty(t, got, rule.String())
		assert.True(t, utf8.ValidString(got), rule.String())
	}
}

func TestStringify(t *testing.T) {
	created := time.Date(1995, time.August, 14, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "MarkMonitor Inc.", "MarkMonitor Inc."},
		{"bool", true, "true"},
		{"time", created, "1995-08-14 04:00:00"},
		{"time pointer", &created, "1995-08-14 04:00:00"},
		{"nil time pointer", (*time.Time)(nil), ""},
		{"zero time", time.Time{}, ""},
		{"stringer", &stringer{"signedDelegation"}, "signedDelegation"},
		{"nil stringer", (*stringer)(nil), ""},
		{"int", 42, "42"},
		{"empty slice", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "text", Text.String())
	assert.Equal(t, "bytes", Bytes.String())
	assert.Equal(t, "sequence", Sequence.String())
	assert.Equal(t, "rule(9)", Rule(9).String())
}
