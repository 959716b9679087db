package config

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Options are the command-line flags shared by every command binary
type Options struct {
	Splunk          bool          `long:"splunk" description:"Speak the Splunk chunked search command protocol on stdin/stdout"`
	Input           string        `short:"i" long:"input" description:"A JSON file with the records to enrich" required:"false"`
	URLFile         string        `short:"f" long:"file" description:"A simple file with one URL per line" required:"false"`
	Output          string        `short:"o" long:"output" description:"A file to write the enriched output to (default output_TIMESTAMP.json)" required:"false"`
	URLField        string        `long:"url-field" description:"Field holding the URL in standalone mode" default:"url"`
	Config          string        `short:"c" long:"config" description:"YAML configuration file" env:"SPLUNK_LOOKUP_CONFIG"`
	Debug           bool          `short:"d" long:"debug" description:"Enable debug logging" required:"false"`
	Insecure        bool          `long:"insecure" description:"Skip TLS certificate verification for HTTP lookups"`
	Timeout         time.Duration `long:"timeout" description:"Timeout of a single lookup, e.g. 10s"`
	RateLimit       float64       `long:"rate-limit" description:"Maximum lookups per second, 0 for unlimited"`
	MetricsTextfile string        `long:"metrics-textfile" description:"Write Prometheus metrics to this file when done"`
	IPInfoToken     string        `long:"ipinfo-token" description:"ipinfo.io token used to describe HTTP peers" env:"IPINFO_TOKEN"`
}

// HTTP configures mycurl
type HTTP struct {
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	UserAgent          string        `yaml:"user_agent"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	MaxRedirects       int           `yaml:"max_redirects"`
	// PeerLookup selects who describes the connected peer: ipinfo, ripestat
	// or none. Empty uses ipinfo when a token is set.
	PeerLookup string `yaml:"peer_lookup"`
}

// Peer lookup sources
const (
	PeerLookupNone     = "none"
	PeerLookupIPInfo   = "ipinfo"
	PeerLookupRipeStat = "ripestat"
)

// Whois configures mywhoiscommand
type Whois struct {
	Enabled         bool          `yaml:"enabled"`
	Timeout         time.Duration `yaml:"timeout"`
	Server          string        `yaml:"server"`
	Proxy           string        `yaml:"proxy"`
	DisableReferral bool          `yaml:"disable_referral"`
}

// IPInfo configures the optional peer description of mycurl
type IPInfo struct {
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the resolved configuration of one command run
type Config struct {
	LogLevel        string  `yaml:"log_level"`
	RateLimit       float64 `yaml:"rate_limit"`
	MetricsTextfile string  `yaml:"metrics_textfile"`
	HTTP            HTTP    `yaml:"http"`
	Whois           Whois   `yaml:"whois"`
	IPInfo          IPInfo  `yaml:"ipinfo"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTP{
			Timeout:      30 * time.Second,
			UserAgent:    "splunk-lookup-commands/1.0",
			MaxRedirects: 10,
		},
		Whois: Whois{
			Enabled: true,
		},
		IPInfo: IPInfo{
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if c.HTTP.Timeout < 0 || c.Whois.Timeout < 0 || c.IPInfo.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.HTTP.MaxRedirects < 0 || c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http limits must not be negative")
	}
	switch c.HTTP.PeerLookup {
	case "", PeerLookupNone, PeerLookupIPInfo, PeerLookupRipeStat:
	default:
		return fmt.Errorf("unknown http.peer_lookup %q", c.HTTP.PeerLookup)
	}
	return nil
}

// PeerSource resolves the effective peer lookup source
func (c *Config) PeerSource() string {
	switch c.HTTP.PeerLookup {
	case "":
		if c.IPInfo.Token != "" {
			return PeerLookupIPInfo
		}
		return PeerLookupNone
	case PeerLookupIPInfo:
		if c.IPInfo.Token == "" {
			return PeerLookupNone
		}
	}
	return c.HTTP.PeerLookup
}

// Apply overrides file values with the flags that were given
func (c *Config) Apply(o *Options) {
	if o.Debug {
		c.LogLevel = "debug"
	}
	if o.Insecure {
		c.HTTP.InsecureSkipVerify = true
	}
	if o.Timeout > 0 {
		c.HTTP.Timeout = o.Timeout
		c.Whois.Timeout = o.Timeout
	}
	if o.RateLimit > 0 {
		c.RateLimit = o.RateLimit
	}
	if o.MetricsTextfile != "" {
		c.MetricsTextfile = o.MetricsTextfile
	}
	if o.IPInfoToken != "" {
		c.IPInfo.Token = o.IPInfoToken
	}
}

// Level returns the logrus level, info when unparseable
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Parse parses args into Options, loads the configuration file they point
// to and applies the flags on top. A help request is returned as a
// *flags.Error of type flags.ErrHelp.
func Parse(args []string) (*Options, *Config, error) {
	options := &Options{}
	parser := flags.NewParser(options, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	c, err := Load(options.Config)
	if err != nil {
		return nil, nil, err
	}
	c.Apply(options)
	return options, c, nil
}
