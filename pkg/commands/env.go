package commands

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/config"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/metrics"
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/searchcommand"

	"github.com/sirupsen/logrus"
)

// OptionURLField names the source field of the streaming commands
const OptionURLField = "url_field"

// Env is what a command needs from the process that hosts it
type Env struct {
	Config  *config.Config
	Logger  *logrus.Entry
	Metrics *metrics.Metrics
}

// Factory creates a command bound to env
type Factory func(env *Env) searchcommand.Command

func urlFieldOption() searchcommand.Option {
	return searchcommand.Option{
		Name:     OptionURLField,
		Required: true,
		Validate: searchcommand.Fieldname,
	}
}
