package cli

import (
	"creativehub/app"
	"creativehub/config"
	"creativehub/persistence"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			ds, err := connect(c)
			if err != nil {
				return err
			}
			defer ds.Stop()
			if err := app.Migrate(ds.GormDB()); err != nil {
				return fmt.Errorf("database migration failed: %w", err)
			}
			logrus.Info("database migrated")
			return nil
		},
	}
}

func connect(c *config.AppConfig) (*persistence.DataSourceManager, error) {
	// create database (no conflict)
	if c.Database.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(c.Database.DriverArgs); err != nil {
			return nil, fmt.Errorf("failed to prepare database: %w", err)
		}
	}
	ds := &persistence.DataSourceManager{DatabaseConfig: c.Database}
	if err := ds.Start(); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return ds, nil
}
