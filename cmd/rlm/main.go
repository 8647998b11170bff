// Command rlm is a thin Cobra front end over the broker's flat in-process
// surface. It holds no logic of its own; see internal/cli.
package main

import "github.com/outpost-dev/rlm/internal/cli"

func main() {
	cli.Execute()
}
