package commands

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"iter"
	"strconv"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/searchcommand"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
)

// TestName is the search command name of the smoke test command
const TestName = "testcommand"

// Fixed output of testcommand
const (
	TestTime    = 1234567890
	TestMessage = "Hello from test command!"
)

// Test generates a single static record
type Test struct {
	env *Env
}

// NewTest is the Factory of testcommand
func NewTest(env *Env) searchcommand.Command {
	return &Test{env: env}
}

func (t *Test) Name() string { return TestName }

func (t *Test) Options() []searchcommand.Option { return nil }

func (t *Test) Configure(searchcommand.Values, *searchcommand.SearchInfo) error { return nil }

func (t *Test) Generate(context.Context) iter.Seq[*types.Record] {
	return func(yield func(*types.Record) bool) {
		t.env.Logger.Debug("commands: Test.Generate - yielding static record")
		yield(types.NewRecord(
			"_time", strconv.Itoa(TestTime),
			"message", TestMessage,
		))
	}
}
