package commands

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/config"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/metrics"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/parser"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/searchcommand"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// stdoutName selects standard output as the standalone output file
const stdoutName = "-"

// Main runs the command built by factory with the process arguments and exits
func Main(name string, factory Factory) {
	os.Exit(Run(name, factory, os.Args[1:], os.Stdin, os.Stdout))
}

// SetupLogging sends logrus output to stderr. Standard output carries the
// protocol or the enriched records.
func SetupLogging(level logrus.Level) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
}

// Run hosts one command invocation and returns the process exit code
func Run(name string, factory Factory, args []string, stdin io.Reader, stdout io.Writer) int {
	SetupLogging(logrus.InfoLevel)

	options, cfg, err := config.Parse(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitOK
		}
		logrus.Errorf("Error parsing flags: %v", err)
		return ExitUsage
	}
	logrus.SetLevel(cfg.Level())

	env := &Env{
		Config: cfg,
		Logger: logrus.WithFields(logrus.Fields{
			"command": name,
			"run_id":  uuid.NewString(),
		}),
		Metrics: metrics.New(name),
	}
	env.Logger.Debug("Debug logging enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := factory(env)
	if options.Splunk {
		err = searchcommand.Dispatch(ctx, cmd, stdin, stdout)
	} else {
		err = runStandalone(ctx, env, cmd, options, stdin, stdout)
	}

	if merr := env.Metrics.WriteTextfile(cfg.MetricsTextfile); merr != nil {
		env.Logger.Warn(merr)
	}

	if err != nil {
		env.Logger.Errorf("%s failed: %v", name, err)
		return ExitError
	}
	return ExitOK
}

// runStandalone reads records from files or stdin, runs them through cmd and
// writes the result as JSON
func runStandalone(ctx context.Context, env *Env, cmd searchcommand.Command, options *config.Options, stdin io.Reader, stdout io.Writer) error {
	values := searchcommand.Values{}
	var scanParser *parser.Parser

	switch c := cmd.(type) {
	case searchcommand.Generator:
		if err := cmd.Configure(values, nil); err != nil {
			return err
		}
		scanParser = &parser.Parser{Records: slices.Collect(c.Generate(ctx))}

	case searchcommand.Streamer:
		values[OptionURLField] = options.URLField
		if _, err := searchcommand.Fieldname(options.URLField); err != nil {
			return fmt.Errorf("invalid --url-field: %w", err)
		}
		if err := cmd.Configure(values, nil); err != nil {
			return err
		}

		var err error
		scanParser, err = readInput(env, options, stdin)
		if err != nil {
			return err
		}

		env.Logger.Infof("commands: runStandalone - started working on %d records", len(scanParser.Records))
		scanParser.Records = slices.Collect(c.Stream(ctx, slices.Values(scanParser.Records)))
		env.Logger.Info("commands: runStandalone - ended")

	default:
		return searchcommand.ErrUnsupported
	}

	return writeOutput(env, scanParser, options.Output, stdout)
}

func readInput(env *Env, options *config.Options, stdin io.Reader) (*parser.Parser, error) {
	name := options.Input
	if name == "" {
		name = options.URLFile
	}

	var (
		content []byte
		err     error
	)
	if name != "" {
		content, err = os.ReadFile(name)
	} else {
		if err := checkStdin(stdin); err != nil {
			return nil, err
		}
		name = "stdin"
		content, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening input: %w", err)
	}

	format := parser.DetectContent(content)
	if options.URLFile != "" {
		format = parser.FormatURLList
	}

	switch format {
	case parser.FormatJSON:
		env.Logger.Infof("Detected JSON format, processing as records: %s", name)
		p := parser.NewParser(bytes.NewReader(content), name)
		p.Field = options.URLField
		return p, p.ProcessJSON()
	case parser.FormatURLList:
		env.Logger.Infof("Processing file as URL list: %s", name)
		p := parser.NewSimpleParser(bytes.NewReader(content), name, options.URLField)
		return p, p.ProcessSimpleScan()
	default:
		env.Logger.Warnf("No records found in %s", name)
		return &parser.Parser{Name: name}, nil
	}
}

// checkStdin refuses to block on an interactive terminal
func checkStdin(stdin io.Reader) error {
	f, ok := stdin.(*os.File)
	if !ok {
		return nil
	}
	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error getting stdin stat: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return errors.New("no input file provided and stdin is not a pipe")
	}
	return nil
}

func writeOutput(env *Env, p *parser.Parser, output string, stdout io.Writer) error {
	if output == stdoutName {
		return p.WriteOutput(stdout)
	}
	if output == "" {
		output = fmt.Sprintf("output_%s.json", time.Now().Format("2006-01-02T15-04-05"))
	}

	outputFile, err := os.Create(output)
	if err != nil {
		return err
	}
	defer outputFile.Close()

	env.Logger.Infof("Writing output to %s", output)
	if err := p.WriteOutput(outputFile); err != nil {
		return err
	}
	env.Logger.Infof("Successfully processed %d records and saved results to %s", len(p.Records), output)
	return outputFile.Close()
}
