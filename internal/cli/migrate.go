package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/standup-assistant/internal/infrastructure/database"
)

func newMigrateCommand() *cobra.Command {
	var (
		dir   string
		limit int
	)

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := database.Up
			if len(args) == 1 {
				direction = database.Direction(args[0])
			}
			// down rolls back one step unless --limit is given
			if direction == database.Down && limit == 0 {
				limit = 1
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Database.MigrationsDir
			}

			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			n, err := database.Migrate(db, dir, direction, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) %s\n", n, direction)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (default DB_MIGRATIONS_DIR)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum steps; 0 applies all (down defaults to 1)")
	return cmd
}
