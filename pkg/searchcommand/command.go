package searchcommand

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"context"
	"iter"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"
)

// Command is a custom search command hosted by Dispatch
type Command interface {
	// Name is the command name as typed in the search bar
	Name() string
	// Options declares the accepted name=value arguments
	Options() []Option
	// Configure is called once with the validated arguments, before any record
	Configure(values Values, info *SearchInfo) error
}

// Streamer is a streaming command: it receives every record and yields it
// back, enriched, in the same order
type Streamer interface {
	Command
	Stream(ctx context.Context, records iter.Seq[*types.Record]) iter.Seq[*types.Record]
}

// Generator is a generating command: it produces records without input
type Generator interface {
	Command
	Generate(ctx context.Context) iter.Seq[*types.Record]
}

// Command types reported to splunkd
const (
	TypeStreaming = "streaming"
	TypeStateful  = "stateful"
)

type getinfoReply struct {
	Type       string `json:"type"`
	Generating bool   `json:"generating"`
}

type executeReply struct {
	Finished  bool       `json:"finished"`
	Inspector *inspector `json:"inspector,omitempty"`
}

type inspector struct {
	Messages [][2]string `json:"messages"`
}
