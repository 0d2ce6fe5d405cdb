package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"byteguard/internal/app"
	"byteguard/internal/command"
	"byteguard/internal/command/core"
	"byteguard/internal/command/modcmd"
	"byteguard/internal/storage"
	"byteguard/pkg/util"
)

func main() {
	cliApp := &cli.App{
		Name:  "byteguard",
		Usage: "inspect ByteGuard commands, durations and stored history",
		Commands: []*cli.Command{
			durationCommand(),
			commandsCommand(),
			historyCommand(),
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func durationCommand() *cli.Command {
	return &cli.Command{
		Name:      "duration",
		Usage:     "parse a ban duration such as 1d12h",
		ArgsUsage: "<expr>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one duration", 2)
			}
			seconds, err := util.ParseDuration(c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fireAt := time.Now().Add(time.Duration(seconds) * time.Second)
			fmt.Fprintf(c.App.Writer, "%d seconds (%s), an unban scheduled now fires at %s\n",
				seconds, util.FormatSeconds(seconds), util.FormatDateTpl(fireAt, "YYYY-MM-DD hh:mm:ss"))
			return nil
		},
	}
}

func commandsCommand() *cli.Command {
	return &cli.Command{
		Name:  "commands",
		Usage: "list the slash commands the bot registers",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "moderation", Value: true, EnvVars: []string{"FEATURE_MODERATION"}, Usage: "include moderation commands"},
		},
		Action: func(c *cli.Context) error {
			reg, err := app.BuildRegistry(&core.Deps{AppName: app.AppName}, &modcmd.Deps{Feature: c.Bool("moderation")})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGROUP\tENABLED\tDESCRIPTION")
			for _, cmd := range reg.GetAll() {
				group := ""
				if meta, ok := command.Meta(cmd); ok {
					group = meta.Group()
				}
				fmt.Fprintf(w, "/%s\t%s\t%t\t%s\n", cmd.Name(), group, command.Enabled(cmd), cmd.Description())
			}
			return w.Flush()
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "print the recent command history of a guild",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "guild", Required: true, Usage: "guild ID"},
			&cli.StringFlag{Name: "storage", Value: "data/datastore.json", EnvVars: []string{"STORAGE_PATH"}},
		},
		Action: func(c *cli.Context) error {
			store, err := storage.New(c.String("storage"), zerolog.Nop())
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := store.CommandsHistory(c.String("guild"))
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(c.App.Writer, "no commands recorded")
				return nil
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tUSER\tCOMMAND\tOUTCOME")
			for _, h := range history {
				fmt.Fprintf(w, "%s\t%s\t/%s\t%s\n", util.FormatDateTpl(h.Datetime, "YYYY-MM-DD hh:mm:ss"), h.Username, h.Command, h.Outcome)
			}
			return w.Flush()
		},
	}
}
