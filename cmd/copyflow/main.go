package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "copyflow",
		Usage: "extract, compare and generate marketing copy from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "sqlite file holding durable slots",
				EnvVars: []string{"SQLITE_PATH"},
			},
			&cli.StringFlag{
				Name:    "gateway",
				Usage:   "generation backend: remote, llm or fallback",
				EnvVars: []string{"GATEWAY_MODE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "print the content extracted from a document",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Value: "text", Usage: "raw, text or article"},
					&cli.BoolFlag{Name: "json", Usage: "print the full extraction result as JSON"},
				},
				Action: ExtractAction,
			},
			{
				Name:      "compare",
				Usage:     "score how close two documents are",
				ArgsUsage: "<file1> <file2>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "copy_design, semantic or brief_copy (text report instead of scores)"},
				},
				Action: CompareAction,
			},
			{
				Name:      "generate-copy",
				Usage:     "generate marketing copy from a briefing",
				ArgsUsage: "<briefing>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "keyword", Aliases: []string{"k"}, Usage: "word to anonymize before generation"},
					&cli.StringFlag{Name: "workflow", Usage: "save the copy as savedCopy of this workflow"},
				},
				Action: GenerateCopyAction,
			},
			{
				Name:  "slots",
				Usage: "inspect durable slots",
				Subcommands: []*cli.Command{
					{
						Name:      "list",
						Usage:     "list workflows, or the slots of one workflow",
						ArgsUsage: "[workflow]",
						Action:    SlotsListAction,
					},
					{
						Name:      "get",
						Usage:     "print one slot value",
						ArgsUsage: "<workflow> <name>",
						Action:    SlotsGetAction,
					},
					{
						Name:      "clear",
						Usage:     "delete slots of a workflow (all durable slots when no name is given)",
						ArgsUsage: "<workflow> [name...]",
						Action:    SlotsClearAction,
					},
				},
			},
			{
				Name:  "watch",
				Usage: "follow stage events published on NATS",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nats", Usage: "NATS url", EnvVars: []string{"NATS_URL"}, Value: "nats://localhost:4222"},
					&cli.StringFlag{Name: "workflow", Usage: "only show events of this workflow"},
					&cli.StringFlag{Name: "durable", Usage: "durable consumer name, replays missed events"},
				},
				Action: WatchAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
