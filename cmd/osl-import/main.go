// Command osl-import runs the results pipeline: fetch competitions from
// the LiftControl platform, export or import canonical documents, manage
// schema migrations, and recompute scores.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/config"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/database"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/importer"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/liftcontrol"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/logging"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/ris"
)

// app carries the shared state every subcommand needs.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func (a *app) connect(ctx context.Context) error {
	pool, err := database.NewPool(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	a.pool = pool
	return nil
}

// connectAndMigrate is the entry point for write commands: the schema is
// brought up to date before any import or recompute touches it.
func (a *app) connectAndMigrate(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	return database.Migrate(ctx, a.pool)
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) importService() *importer.Service {
	return importer.NewService(a.pool, a.cfg.Import, slog.Default())
}

func (a *app) client() *liftcontrol.Client {
	return liftcontrol.NewClient(a.cfg.Source.BaseURL, a.cfg.Source.Timeout, slog.Default())
}

func (a *app) registryCompetition(id string) (liftcontrol.CompetitionConfig, error) {
	registry, err := liftcontrol.LoadRegistry(a.cfg.Import.RegistryPath)
	if err != nil {
		return liftcontrol.CompetitionConfig{}, err
	}
	cfg, ok := registry.Get(id)
	if !ok {
		return liftcontrol.CompetitionConfig{}, fmt.Errorf("competition %q not in registry %s", id, a.cfg.Import.RegistryPath)
	}
	return cfg, nil
}

func main() {
	a := &app{}

	var databaseURL string
	var verbose bool

	root := &cobra.Command{
		Use:           "osl-import",
		Short:         "Import strength sport competition results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists (Overload overwrites existing env vars)
			if err := godotenv.Overload(); err == nil {
				slog.Info("loaded .env file (overwriting existing env vars)")
			}

			// Flags win over the environment and the .env file.
			if databaseURL != "" {
				os.Setenv("DATABASE_URL", databaseURL)
			}
			if verbose {
				os.Setenv("LOG_LEVEL", "debug")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg

			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", cfg.String())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newMigrateCmd(a),
		newLiftControlCmd(a),
		newExportCmd(a),
		newFileCmd(a),
		newRecomputeCmd(a),
		newFormulasCmd(a),
		newAthleteCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.close()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		a.close()
		os.Exit(1)
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if status {
				return database.MigrationStatus(ctx, a.pool)
			}
			if err := database.Migrate(ctx, a.pool); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "show migration status instead of applying")
	return cmd
}

func newLiftControlCmd(a *app) *cobra.Command {
	var (
		competitionID string
		list          bool
	)

	cmd := &cobra.Command{
		Use:   "liftcontrol",
		Short: "Fetch a registered competition from the platform and import it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				registry, err := liftcontrol.LoadRegistry(a.cfg.Import.RegistryPath)
				if err != nil {
					return err
				}
				for _, id := range registry.IDs() {
					c, _ := registry.Get(id)
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d session(s)\n", id, c.Metadata.Name, len(c.SubSlugs))
				}
				return nil
			}
			if competitionID == "" {
				return fmt.Errorf("either --competition or --list is required")
			}

			cfg, err := a.registryCompetition(competitionID)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.connectAndMigrate(ctx); err != nil {
				return err
			}

			result, err := a.importService().ImportLiftControl(ctx, a.client(), cfg)
			if err != nil {
				return err
			}
			slog.Info("competition imported",
				"competition", competitionID,
				"athletes", result.Athletes,
				"lifts", result.Lifts,
				"attempts", result.Attempts,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&competitionID, "competition", "", "registry ID of the competition to import")
	cmd.Flags().BoolVar(&list, "list", false, "list registered competitions and exit")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		competitionID string
		outDir        string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch a registered competition and write canonical JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if competitionID == "" {
				return fmt.Errorf("--competition is required")
			}

			cfg, err := a.registryCompetition(competitionID)
			if err != nil {
				return err
			}

			// Export needs no database; it only talks to the platform.
			svc := importer.NewService(nil, a.cfg.Import, slog.Default())
			paths, err := svc.ExportLiftControl(cmd.Context(), a.client(), cfg, outDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&competitionID, "competition", "", "registry ID of the competition to export")
	cmd.Flags().StringVar(&outDir, "out", "export", "output directory for canonical JSON files")
	return cmd
}

func newFileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>...",
		Short: "Import canonical JSON documents from files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connectAndMigrate(ctx); err != nil {
				return err
			}

			summary, err := a.importService().ImportFiles(ctx, args)
			if err != nil {
				return err
			}
			slog.Info("batch finished", "succeeded", summary.Succeeded, "failed", summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", summary.Failed, len(summary.Files))
			}
			return nil
		},
	}
}

func newRecomputeCmd(a *app) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute every participant's score, by competition date or against one formula version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connectAndMigrate(ctx); err != nil {
				return err
			}

			tx, err := a.pool.Begin(ctx)
			if err != nil {
				return fmt.Errorf("begin recompute transaction: %w", err)
			}
			defer tx.Rollback(ctx)

			scored, err := ris.NewEngine(tx, slog.Default()).RecomputeAll(ctx, version)
			if err != nil {
				return err
			}
			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("commit recompute: %w", err)
			}
			slog.Info("recompute committed", "scored", scored)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "score against this formula version instead of each competition's date")
	return cmd
}

func newFormulasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formulas",
		Short: "List scoring formula versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			formulas, err := ris.ListFormulas(ctx, a.pool)
			if err != nil {
				return err
			}
			for _, f := range formulas {
				until := "open"
				if f.EffectiveUntil != nil {
					until = f.EffectiveUntil.Format("2006-01-02")
				}
				current := ""
				if f.IsCurrent {
					current = " (current)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s -> %s%s\n",
					f.Version, f.Gender, f.EffectiveFrom.Format("2006-01-02"), until, current)
			}
			return nil
		},
	}
}

func newAthleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athlete",
		Short: "Inspect and maintain athlete records",
	}

	show := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show an athlete by slug, following retired slugs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			athlete, err := database.NewStore(a.pool).AthleteBySlug(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s, %s)\n", athlete.FirstName, athlete.LastName, athlete.Gender, athlete.Country)
			fmt.Fprintf(out, "slug: %s\n", athlete.Slug)
			if len(athlete.SlugHistory) > 0 {
				fmt.Fprintf(out, "previous slugs: %v\n", athlete.SlugHistory)
			}
			return nil
		},
	}

	var firstName, lastName string
	rename := &cobra.Command{
		Use:   "rename <slug>",
		Short: "Rename an athlete; the old slug keeps resolving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if firstName == "" || lastName == "" {
				return fmt.Errorf("--first and --last are required")
			}

			ctx := cmd.Context()
			if err := a.connectAndMigrate(ctx); err != nil {
				return err
			}

			store := database.NewStore(a.pool)
			athlete, err := store.AthleteBySlug(ctx, args[0])
			if err != nil {
				return err
			}
			newSlug, err := store.RenameAthlete(ctx, athlete.ID, firstName, lastName)
			if err != nil {
				return err
			}
			slog.Info("athlete renamed", "old_slug", athlete.Slug, "new_slug", newSlug)
			return nil
		},
	}
	rename.Flags().StringVar(&firstName, "first", "", "new first name")
	rename.Flags().StringVar(&lastName, "last", "", "new last name")

	cmd.AddCommand(show, rename)
	return cmd
}
