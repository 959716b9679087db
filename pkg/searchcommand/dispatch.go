package searchcommand

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// Protocol actions
const (
	ActionGetinfo = "getinfo"
	ActionExecute = "execute"
)

var (
	// ErrProtocol is returned when splunkd sends something out of order
	ErrProtocol = errors.New("searchcommand: protocol error")
	// ErrUnsupported is returned for commands that neither stream nor generate
	ErrUnsupported = errors.New("searchcommand: command is neither a Streamer nor a Generator")
)

// Dispatch runs cmd against the chunked protocol on in and out until splunkd
// closes the input or the command finishes. Errors are reported to splunkd as
// inspector messages before being returned.
func Dispatch(ctx context.Context, cmd Command, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)
	log := logrus.WithField("command", cmd.Name())

	streamer, isStreamer := cmd.(Streamer)
	generator, isGenerator := cmd.(Generator)
	if !isStreamer && !isGenerator {
		return fail(writer, ErrUnsupported)
	}

	chunk, err := ReadChunk(reader)
	if err != nil {
		return fmt.Errorf("searchcommand: Dispatch - reading getinfo: %w", err)
	}
	if chunk.Metadata.Action != ActionGetinfo {
		return fail(writer, fmt.Errorf("%w: expected %s, got %q", ErrProtocol, ActionGetinfo, chunk.Metadata.Action))
	}

	var args []string
	if chunk.Metadata.SearchInfo != nil {
		args = chunk.Metadata.SearchInfo.Args
	}
	log.Debugf("searchcommand: Dispatch - getinfo with args %q", args)

	values, err := ParseArgs(args, cmd.Options())
	if err != nil {
		return fail(writer, err)
	}
	if err := cmd.Configure(values, chunk.Metadata.SearchInfo); err != nil {
		return fail(writer, err)
	}

	reply := getinfoReply{Type: TypeStreaming}
	if isGenerator {
		reply = getinfoReply{Type: TypeStateful, Generating: true}
	}
	if err := WriteChunk(writer, reply, nil); err != nil {
		return err
	}

	for {
		chunk, err := ReadChunk(reader)
		if errors.Is(err, io.EOF) {
			log.Debug("searchcommand: Dispatch - input closed")
			return nil
		}
		if err != nil {
			return fail(writer, err)
		}
		if chunk.Metadata.Action != ActionExecute {
			return fail(writer, fmt.Errorf("%w: expected %s, got %q", ErrProtocol, ActionExecute, chunk.Metadata.Action))
		}

		if isGenerator {
			body, err := EncodeRecords(slices.Collect(generator.Generate(ctx)))
			if err != nil {
				return fail(writer, err)
			}
			return WriteChunk(writer, executeReply{Finished: true}, body)
		}

		records, err := DecodeRecords(chunk.Body)
		if err != nil {
			return fail(writer, err)
		}
		enriched := slices.Collect(streamer.Stream(ctx, slices.Values(records)))
		if err := ctx.Err(); err != nil {
			return fail(writer, err)
		}

		body, err := EncodeRecords(enriched)
		if err != nil {
			return fail(writer, err)
		}
		if err := WriteChunk(writer, executeReply{Finished: chunk.Metadata.Finished}, body); err != nil {
			return err
		}
		if chunk.Metadata.Finished {
			return nil
		}
	}
}

// fail reports err to splunkd as a finished chunk carrying ERROR messages
func fail(w io.Writer, err error) error {
	logrus.Errorf("searchcommand: Dispatch - %v", err)

	reply := executeReply{Finished: true, Inspector: &inspector{}}
	for _, line := range strings.Split(err.Error(), "\n") {
		reply.Inspector.Messages = append(reply.Inspector.Messages, [2]string{"ERROR", line})
	}
	if werr := WriteChunk(w, reply, nil); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}
