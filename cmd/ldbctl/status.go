package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	cli "gopkg.in/urfave/cli.v1"
)

var statusCommand = cli.Command{
	Name:  "status",
	Usage: "print a snapshot of the profiler's current stats",
	Action: func(c *cli.Context) error {
		cl := newClient(c.GlobalString("addr"))
		stats, err := cl.stats()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"metric", "value"})
		for _, k := range keys {
			table.Append([]string{k, fmt.Sprintf("%v", stats[k])})
		}
		table.Render()
		return nil
	},
}

var resetCommand = cli.Command{
	Name:  "reset",
	Usage: "archive and truncate the profiler's event log",
	Action: func(c *cli.Context) error {
		return newClient(c.GlobalString("addr")).reset()
	},
}
