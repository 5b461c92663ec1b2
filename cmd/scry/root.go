package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/platform/database"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/review"
	"github.com/phrazzld/scry-review/internal/service"
)

// cli carries the streams, flags and lazily opened dependencies shared by
// every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string

	// reviewOpts are appended to the options of every review session.
	reviewOpts []review.Option

	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	srs    srs.Service
	cards  service.CardService
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut}
}

// newRootCmd creates the root command for scry.
func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "scry",
		Short: "Review flashcards with a count-down spaced repetition schedule",
		Long: `Review flashcards with a count-down spaced repetition schedule.

Each card needs a number of successful reviews before its interval moves up
the ladder. scry provides tools to:
- Review due cards manually or with timed auto-flip
- Add, import, list and delete cards
- Manage the database schema and mint API tokens`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./config.yaml or $HOME/.scry/config.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newReviewCmd(c))
	root.AddCommand(newAddCmd(c))
	root.AddCommand(newImportCmd(c))
	root.AddCommand(newListCmd(c))
	root.AddCommand(newDueCmd(c))
	root.AddCommand(newDeleteCmd(c))
	root.AddCommand(newMigrateCmd(c))
	root.AddCommand(newTokenCmd(c))

	return root
}

// setup loads the configuration and builds the stderr logger.
func (c *cli) setup() error {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg

	c.logger, err = logger.Setup(logger.LoggerConfig{
		Level:  c.logLevel,
		Format: logger.FormatText,
		Output: c.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	return nil
}

// openDB opens the configured database without touching its schema.
func (c *cli) openDB(ctx context.Context) error {
	db, err := database.Open(ctx, c.cfg.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = db
	return nil
}

// openDeck opens the database, applies pending migrations and builds the
// card service.
func (c *cli) openDeck(ctx context.Context) error {
	if err := c.openDB(ctx); err != nil {
		return err
	}
	if err := database.Migrate(ctx, c.db, c.cfg.Database.Driver, database.CommandUp, c.logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		Intervals: c.cfg.SRS.Intervals,
		Threshold: c.cfg.SRS.Threshold,
	})
	if err != nil {
		return fmt.Errorf("failed to create SRS parameters: %w", err)
	}
	c.srs = srs.NewServiceWithParams(params)

	cardStore, err := database.NewCardStore(c.cfg.Database.Driver, c.db, c.logger)
	if err != nil {
		return err
	}
	c.cards, err = service.NewCardService(c.db, cardStore, c.srs, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create card service: %w", err)
	}
	return nil
}

// withDeck runs fn against an open deck and closes the database afterwards.
func (c *cli) withDeck(ctx context.Context, fn func(ctx context.Context) error) error {
	defer c.close()
	if err := c.openDeck(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

func (c *cli) close() {
	if c.db == nil {
		return
	}
	if err := c.db.Close(); err != nil {
		c.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
	c.db = nil
}
