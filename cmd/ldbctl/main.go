// Command ldbctl is the operator CLI against a running LDB process's
// control surface: status snapshots, a REPL console, and a live
// top-style view, built on the same urfave/cli conventions as other
// geth-lineage tooling.
package main

import (
	"fmt"
	"os"

	"github.com/arsham/figurine/figurine"
	cli "gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "ldbctl"
	app.Usage = "operate a running LDB profiler"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "addr",
			Value: "http://127.0.0.1:6699",
			Usage: "LDB control surface address",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.NArg() == 0 && c.Command.Name == "" {
			figurine.Write(os.Stdout, "ldbctl", "standard")
		}
		return nil
	}
	app.Commands = []cli.Command{
		statusCommand,
		resetCommand,
		consoleCommand,
		topCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
