// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv or markdown",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the export to a file instead of stdout",
		},
	}
}

func listFlags(flags ...cli.Flag) []cli.Flag {
	flags = append(flags, jsonFlags()...)
	return append(flags, exportFlags()...)
}

func mailboxFlags(max int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "max",
			Aliases: []string{"n"},
			Usage:   "Maximum number of emails to read",
			Value:   max,
		},
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Gmail search query to filter emails",
		},
	}
}

// initCommand writes a starter config file
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a config file from the bundled template",
		Action: r.Init,
	}
}

// statusCommand reports the connection state of every agent
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show connection status for Gmail, Notion, Spotify and the model host",
		Flags:  jsonFlags(),
		Action: r.Status,
	}
}

// gmailCommand handles mailbox operations
func gmailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "gmail",
		Aliases: []string{"mail"},
		Usage:   "Read, summarize and triage Gmail",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Gmail using OAuth2",
				Action: r.GmailAuth,
			},
			{
				Name:   "recent",
				Usage:  "List recent emails",
				Flags:  listFlags(mailboxFlags(10)...),
				Action: r.GmailRecent,
			},
			{
				Name:   "unread",
				Usage:  "Show the unread email count",
				Action: r.GmailUnread,
			},
			{
				Name:      "search",
				Usage:     "Search emails with a Gmail query",
				ArgsUsage: "<query>",
				Flags: listFlags(
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				),
				Action: r.GmailSearch,
			},
			{
				Name:   "summarize",
				Usage:  "Summarize recent emails with the local model",
				Flags:  mailboxFlags(10),
				Action: r.GmailSummarize,
			},
			{
				Name:   "actions",
				Usage:  "Extract action items from recent emails",
				Flags:  mailboxFlags(20),
				Action: r.GmailActions,
			},
			{
				Name:  "reply",
				Usage: "Draft a reply to an email",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "id",
						UsageText: "Gmail message ID",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "context",
						Usage: "Extra context for the reply",
					},
				},
				Action: r.GmailReply,
			},
		},
	}
}

// notionCommand handles workspace operations
func notionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notion",
		Usage: "Explore and summarize Notion databases",
		Commands: []*cli.Command{
			{
				Name:   "databases",
				Usage:  "List databases shared with the integration",
				Flags:  jsonFlags(),
				Action: r.NotionDatabases,
			},
			{
				Name:  "summarize",
				Usage: "Summarize the pages of a database",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "id",
						UsageText: "Notion database ID",
					},
				},
				Action: r.NotionSummarize,
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about the workspace",
				ArgsUsage: "<question>",
				Action:    r.NotionAsk,
			},
		},
	}
}

// spotifyCommand handles music operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playback and playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.SpotifyAuth,
			},
			{
				Name:   "current",
				Usage:  "Show the currently playing track",
				Flags:  jsonFlags(),
				Action: r.SpotifyCurrent,
			},
			{
				Name:      "search",
				Usage:     "Search for tracks",
				ArgsUsage: "<query>",
				Flags: listFlags(
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 10,
					},
				),
				Action: r.SpotifySearch,
			},
			{
				Name:  "recommend",
				Usage: "Get track recommendations from seeds or your top tracks",
				Flags: listFlags(
					&cli.StringSliceFlag{
						Name:  "genre",
						Usage: "Seed genre (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "track",
						Usage: "Seed track ID (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "artist",
						Usage: "Seed artist ID (repeatable)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 20,
					},
				),
				Action: r.SpotifyRecommend,
			},
			{
				Name:   "playlists",
				Usage:  "List your playlists",
				Flags:  jsonFlags(),
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "mood",
				Usage: "Create a playlist for a mood with help from the local model",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "mood",
						UsageText: "Mood such as happy, chill or focus",
					},
				},
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of tracks in the playlist (1-100)",
						Value: 20,
					},
				}, jsonFlags()...),
				Action: r.SpotifyMood,
			},
			{
				Name:  "play",
				Usage: "Play a track on the active device",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "id",
						UsageText: "Spotify track ID",
					},
				},
				Action: r.SpotifyPlay,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Action: r.SpotifyPause,
			},
			{
				Name:   "resume",
				Usage:  "Resume playback",
				Action: r.SpotifyResume,
			},
		},
	}
}
