package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v1"
)

var errExit = errors.New("exit")

var consoleCommand = cli.Command{
	Name:  "console",
	Usage: "interactive REPL against the control surface",
	Action: func(c *cli.Context) error {
		cl := newClient(c.GlobalString("addr"))
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		for {
			input, err := line.Prompt("ldb> ")
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			line.AppendHistory(input)

			if err := runConsoleCommand(cl, strings.TrimSpace(input)); err != nil {
				if errors.Is(err, errExit) {
					return nil
				}
				fmt.Println(err)
			}
		}
	},
}

func runConsoleCommand(cl *client, input string) error {
	switch input {
	case "":
		return nil
	case "stats":
		stats, err := cl.stats()
		if err != nil {
			return err
		}
		fmt.Printf("%+v\n", stats)
		return nil
	case "reset":
		return cl.reset()
	case "recent":
		recent, err := cl.recent()
		if err != nil {
			return err
		}
		fmt.Printf("%+v\n", recent)
		return nil
	case "help":
		fmt.Println("commands: stats, reset, recent, help, exit")
		return nil
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command %q (try 'help')", input)
	}
}
