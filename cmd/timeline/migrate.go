package main

import (
	"fmt"

	"github.com/Freeeeeet/table_timeline/internal/app"
	"github.com/Freeeeeet/table_timeline/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back one) database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			migrator, err := app.NewMigrator(rt.pool, migrations.FS, rt.logger)
			if err != nil {
				return err
			}
			defer migrator.Close()

			if down {
				err = migrator.Down(ctx)
			} else {
				err = migrator.Run(ctx)
			}
			if err != nil {
				return err
			}

			version, err := migrator.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back the latest migration")
	return cmd
}
