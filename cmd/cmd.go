// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration, database, and cache",
		Flags: []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "tracks",
				Usage: "List the tracks of a playlist, page by page",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to list",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Number of pages to fetch (0 for all)",
						Value: 0,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyTracks,
			},
		},
	}
}

// gridCommand launches the interactive panel grid.
func gridCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "grid",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive playlist grid",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "panels",
				Usage: "Number of panels to show (defaults to the configured count)",
			},
		},
		Action: r.Grid,
	}
}

// transferCommand runs one-shot transfers without the TUI.
func transferCommand(r *Runner) *cli.Command {
	sharedFlags := []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:     "from",
			Usage:    "Source playlist ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "to",
			Usage:    "Target playlist ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "indices",
			Usage:    "Comma-separated track indices in the source playlist",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "at",
			Usage: "Insertion index in the target playlist (defaults to the end)",
			Value: -1,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}

	return &cli.Command{
		Name:  "transfer",
		Usage: "Move or copy tracks between playlists",
		Commands: []*cli.Command{
			{
				Name:   "move",
				Usage:  "Move tracks from one playlist to another",
				Flags:  sharedFlags,
				Action: r.TransferMove,
			},
			{
				Name:   "copy",
				Usage:  "Copy tracks into another playlist",
				Flags:  sharedFlags,
				Action: r.TransferCopy,
			},
		},
	}
}
