// Command proxyd is a forwarding HTTP/1.x proxy that can splice a client's
// requested byte ranges out of an origin's response body, independent of
// whether the origin itself understands Range requests.
package main

import (
	"os"

	"github.com/sudhirj/rangeproxy/cmd/proxyd/commands"
)

func main() {
	if err := commands.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
