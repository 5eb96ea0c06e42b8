package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/changyuyeo/fitbody/config"
	"github.com/changyuyeo/fitbody/database/seeders"
	"github.com/changyuyeo/fitbody/pkg/database"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// fitbody db:seed
var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB)
	},
}
