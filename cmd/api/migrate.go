package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo-web/internal/database"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the todos table and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			dbService, err := database.New(cfg.DB, log)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, dbService.Close())
			}()

			if err := dbService.Migrate(); err != nil {
				return err
			}
			log.Info("schema migrated", "driver", cfg.DB.Driver)
			return nil
		},
	}
}
