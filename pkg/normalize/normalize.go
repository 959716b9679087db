package normalize

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// Separator joins the elements of multi-value attributes
const Separator = ", "

// timeLayout matches the way registration dates are usually rendered in Splunk
const timeLayout = "2006-01-02 15:04:05"

// Rule selects how an attribute value is flattened into a string field
type Rule int

const (
	// Text stringifies the value directly
	Text Rule = iota
	// Bytes decodes binary data as UTF-8, falling back to ISO-8859-1
	Bytes
	// Sequence stringifies each element and joins them with Separator
	Sequence
)

func (r Rule) String() string {
	switch r {
	case Text:
		return "text"
	case Bytes:
		return "bytes"
	case Sequence:
		return "sequence"
	default:
		return "rule(" + strconv.Itoa(int(r)) + ")"
	}
}

// Value flattens v according to rule. Values that do not have the shape the
// rule expects are stringified, so a table entry never fails on unexpected
// data. Absent values yield an empty string.
func Value(rule Rule, v any) string {
	switch rule {
	case Bytes:
		switch b := v.(type) {
		case []byte:
			return DecodeBytes(b)
		case string:
			return DecodeBytes([]byte(b))
		}
	case Sequence:
		if items, ok := sequence(v); ok {
			return strings.Join(items, Separator)
		}
	}
	return Stringify(v)
}

// Stringify converts a single value to a string
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if utf8.ValidString(t) {
			return t
		}
		return DecodeBytes([]byte(t))
	case []byte:
		return DecodeBytes(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(timeLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return Stringify(*t)
	case fmt.Stringer:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ""
		}
		return t.String()
	case error:
		return t.Error()
	}

	if items, ok := sequence(v); ok {
		return strings.Join(items, Separator)
	}
	return fmt.Sprint(v)
}

// DecodeBytes decodes b as UTF-8. Invalid input is decoded as ISO-8859-1
// instead, which maps every byte, and any residue is replaced with U+FFFD.
func DecodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	logrus.Warnf("normalize: DecodeBytes - could not decode %q as UTF-8, trying latin-1", b)
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(decoded)
}

// sequence reports whether v is a list-like value and returns its stringified elements
func sequence(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		items := make([]string, len(t))
		for i, s := range t {
			items[i] = Stringify(s)
		}
		return items, true
	case []byte:
		return nil, false
	case [][]byte:
		items := make([]string, len(t))
		for i, b := range t {
			items[i] = DecodeBytes(b)
		}
		return items, true
	case []any:
		items := make([]string, len(t))
		for i, e := range t {
			items[i] = Stringify(e)
		}
		return items, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]string, rv.Len())
	for i := range rv.Len() {
		items[i] = Stringify(rv.Index(i).Interface())
	}
	return items, true
}
