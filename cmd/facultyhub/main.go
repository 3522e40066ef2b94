// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/facultyhub/config"
	"github.com/poiesic/facultyhub/outreach"
	"github.com/poiesic/facultyhub/search"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "facultyhub",
		Usage: "Search faculty directories by research interest and plan outreach emails",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default ./" + config.FileName + " or ~/.config/facultyhub/config.yaml)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables such as API keys from this file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "sources",
				Aliases: []string{"s"},
				Usage:   "Directory of per-institution JSON files (overrides config)",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "AI provider: tfidf, openai or gemini (overrides config)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load, normalize and deduplicate the source files",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the merged records to this JSON file",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Build the embedding index, reusing it when sources are unchanged",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even when the stored index is current",
					},
				},
			},
			{
				Name:      "recommend",
				Usage:     "Find faculty whose research matches a free-text query",
				ArgsUsage: "<query>",
				Action:    recommendCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of interest groups to return (default from config)",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Browse faculty by department, name, interest or college",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "department", Usage: "Exact department, or All", Value: search.AllDepartments},
					&cli.StringFlag{Name: "name", Usage: "Substring of the faculty name"},
					&cli.StringFlag{Name: "interest", Usage: "Research interest keywords"},
					&cli.StringFlag{Name: "college", Usage: "Substring of the college name"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of results", Value: search.DefaultFilterLimit},
					&cli.BoolFlag{Name: "list-departments", Usage: "Print the known departments and colleges instead"},
				},
			},
			{
				Name:   "draft",
				Usage:  "Draft an email to a professor and record it in the outreach log",
				Action: draftCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "professor", Aliases: []string{"p"}, Usage: "Professor name", Required: true},
					&cli.StringFlag{Name: "professor-email", Usage: "Professor email (looked up in the corpus when omitted)"},
					&cli.StringFlag{Name: "student", Usage: "Your name", Required: true, EnvVars: []string{"FACULTYHUB_STUDENT"}},
					&cli.StringFlag{Name: "year", Usage: "Your academic year"},
					&cli.StringFlag{Name: "background", Usage: "Your academic background"},
					&cli.StringFlag{Name: "interest", Usage: "Your research interests"},
					&cli.StringFlag{Name: "goal", Usage: "Purpose of the email", Value: "Research Internship"},
					&cli.StringFlag{Name: "note", Usage: "Additional context for the email"},
					&cli.BoolFlag{Name: "detect-intent", Usage: "Let the model infer the purpose from --note"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the draft without recording it"},
				},
			},
			{
				Name:   "followups",
				Usage:  "List follow-ups that are due",
				Action: followupsCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "List every recorded interaction"},
					&cli.Uint64Flag{Name: "mark-responded", Usage: "Mark the interaction with this id as answered"},
					&cli.StringFlag{Name: "export", Usage: "Write the outreach log to this JSON file"},
					&cli.BoolFlag{Name: "best-time", Usage: "Report when answered emails were usually sent"},
				},
			},
			{
				Name:   "remind",
				Usage:  "Check for due follow-ups on a schedule until interrupted",
				Action: remindCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "every", Usage: "Check interval (default from config)"},
				},
			},
			{
				Name:   "watch",
				Usage:  "Rebuild the index whenever source files change",
				Action: watchCommand,
			},
		},
	}
}

// setup configures logging and loads the env file.
func setup(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}
	return config.LoadEnv(c.String("env-file"))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// goal returns the draft goal selected by the flags.
func goal(c *cli.Context) string {
	if c.Bool("detect-intent") {
		return outreach.GoalAutoDetect
	}
	return c.String("goal")
}
