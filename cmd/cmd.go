// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand writes a config file and prepares the database.
func setupCommand(r *Runner) *cli.Command {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   configPath,
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the bearer token cached for uploads
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the cached access token",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Request a new token with the configured credentials",
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the cached token and its claims",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the cached token",
				Action: r.AuthLogout,
			},
		},
	}
}

// uploadCommand removes the background of a single image without the TUI
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "upload",
		Aliases: []string{"up"},
		Usage:   "Remove the background of an image and save the result",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file or directory (default: <name>_nobg.png in upload.output_dir)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the result with the system viewer",
			},
			&cli.BoolFlag{
				Name:  "no-store",
				Usage: "Keep the token in memory and skip upload history",
			},
		},
		Action: r.Upload,
	}
}

// historyCommand lists recorded upload sessions
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded uploads",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of uploads to list",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, json or md",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive uploads.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive background remover",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory to browse for images",
				Value:   ".",
			},
		},
		Action: r.TUI,
	}
}
