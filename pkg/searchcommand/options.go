package searchcommand

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Error messages, phrased the way Splunk users see them in the job inspector
const (
	errMissingOption  = "A value for \"%s\" is required"
	errUnknownOption  = "Unrecognized option: %s"
	errInvalidValue   = "Invalid value for %s: %s"
	errMalformedArg   = "Expected name=value, got: %s"
	errDuplicateValue = "Option %s given more than once"
)

var fieldnamePattern = regexp.MustCompile(`^[_.a-zA-Z-][_.a-zA-Z0-9-]*$`)

// Validator checks and canonicalizes an option value
type Validator func(value string) (string, error)

// Fieldname accepts valid Splunk field names
func Fieldname(value string) (string, error) {
	if !fieldnamePattern.MatchString(value) {
		return "", fmt.Errorf("illegal field name %q", value)
	}
	return value, nil
}

// Boolean accepts the spellings splunkd accepts for booleans and
// canonicalizes them to "true" or "false"
func Boolean(value string) (string, error) {
	switch strings.ToLower(value) {
	case "1", "t", "true", "y", "yes":
		return "true", nil
	case "0", "f", "false", "n", "no":
		return "false", nil
	}
	return "", fmt.Errorf("expected a boolean, got %q", value)
}

// Integer accepts integers within [minimum, maximum]
func Integer(minimum, maximum int) Validator {
	return func(value string) (string, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("expected an integer, got %q", value)
		}
		if n < minimum || n > maximum {
			return "", fmt.Errorf("expected a value between %d and %d, got %d", minimum, maximum, n)
		}
		return strconv.Itoa(n), nil
	}
}

// Option declares one name=value argument of a search command
type Option struct {
	Name     string
	Required bool
	Default  string
	Validate Validator
}

// Values holds the parsed options of one invocation
type Values map[string]string

// Has reports whether name was given or has a default
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the value of name
func (v Values) String(name string) string {
	return v[name]
}

// Bool returns the value of a Boolean option
func (v Values) Bool(name string) bool {
	return v[name] == "true"
}

// Int returns the value of an Integer option, zero when absent
func (v Values) Int(name string) int {
	n, _ := strconv.Atoi(v[name])
	return n
}

// ParseArgs parses search arguments of the form name=value against the
// declared options. Values may be double quoted.
func ParseArgs(args []string, declared []Option) (Values, error) {
	byName := make(map[string]Option, len(declared))
	for _, o := range declared {
		byName[o.Name] = o
	}

	values := make(Values)
	var errs []error
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			errs = append(errs, fmt.Errorf(errMalformedArg, arg))
			continue
		}
		option, known := byName[name]
		if !known {
			errs = append(errs, fmt.Errorf(errUnknownOption, name))
			continue
		}
		if _, dup := values[name]; dup {
			errs = append(errs, fmt.Errorf(errDuplicateValue, name))
			continue
		}

		value = unquote(value)
		if option.Validate != nil {
			canonical, err := option.Validate(value)
			if err != nil {
				errs = append(errs, fmt.Errorf(errInvalidValue, name, err))
				continue
			}
			value = canonical
		}
		values[name] = value
	}

	for _, o := range declared {
		if _, ok := values[o.Name]; ok {
			continue
		}
		switch {
		case o.Required:
			errs = append(errs, fmt.Errorf(errMissingOption, o.Name))
		case o.Default != "":
			values[o.Name] = o.Default
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}

// unquote strips surrounding double quotes and resolves doubled quotes inside,
// the way splunkd quotes search arguments
func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		inner := value[1 : len(value)-1]
		inner = strings.ReplaceAll(inner, `""`, `"`)
		return strings.ReplaceAll(inner, `\"`, `"`)
	}
	return value
}
