package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"arthagpt/internal/config"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfgPath string
	verbose bool
	cfg     *config.AppConfig
	logger  *slog.Logger
	app     *application
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "artha",
		Short:         "ArthaGPT personal finance document assistant",
		Long:          `Upload finance notes and statements, search them, and ask questions answered from your own documents plus market data.`,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/artha/config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(c),
		newIngestCmd(c),
		newSearchCmd(c),
		newAskCmd(c),
		newDocsCmd(c),
		newQuoteCmd(c),
		newHistoryCmd(c),
		newTUICmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	var err error
	if c.cfgPath == "" {
		c.cfg, _, err = config.LoadDefault()
	} else {
		c.cfg, err = config.Load(c.cfgPath)
	}
	if err != nil {
		return err
	}
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: c.level()}))
	return nil
}

func (c *cli) level() slog.Level {
	if c.verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// useJSONLogs switches to structured JSON logs on stdout, used by serve.
func (c *cli) useJSONLogs() {
	level := c.level()
	if level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	c.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)
}

// application builds the component graph on first use.
func (c *cli) application(ctx context.Context) (*application, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := buildApplication(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
