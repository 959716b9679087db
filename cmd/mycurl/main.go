package main

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/commands"
)

func main() {
	commands.Main(commands.CurlName, commands.NewCurl)
}
