package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/questionbot-backend/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:  "questionbot",
		Usage: "Questionnaire chatbot backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML config file", Sources: cli.EnvVars("QB_CONFIG_PATH")},
		},
		Commands: []*cli.Command{
			serveCmd(),
			catalogCmd(),
		},
		Action: serve,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Load the catalog and serve the HTTP API (default)",
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := app.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer a.Close(context.Background())

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Import the question catalog and print it as YAML",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Catalog file; overrides catalog.path"},
			&cli.StringFlag{Name: "sheet", Usage: "Worksheet name; overrides catalog.sheet"},
			&cli.IntFlag{Name: "header-rows", Value: -1, Usage: "Rows to skip before the first question; overrides catalog.header_rows"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.LoadConfig(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if p := cmd.String("path"); p != "" {
				cfg.Catalog.Path = p
			}
			if s := cmd.String("sheet"); s != "" {
				cfg.Catalog.Sheet = s
			}
			if n := cmd.Int("header-rows"); n >= 0 {
				cfg.Catalog.HeaderRows = int(n)
			}
			cat, err := app.LoadCatalog(cfg)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(cat.Records()); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d questions\n", cat.Len())
			return nil
		},
	}
}
