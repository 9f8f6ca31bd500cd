/*
Copyright 2025 Cartera Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/carterahq/cartera"
	"github.com/carterahq/cartera/database"
)

func migrateCommands(b *carteraInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "start or rollback cartera schema migration",
	}

	cmd.AddCommand(migrateUpCommands(b))
	cmd.AddCommand(migrateDownCommands(b))
	return cmd
}

func migrateUpCommands(b *carteraInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "migrate up cartera database",
		Run: func(cmd *cobra.Command, args []string) {
			migrations := &migrate.EmbedFileSystemMigrationSource{
				FileSystem: cartera.SQLFiles,
				Root:       "sql",
			}

			db, err := database.ConnectDB(b.cnf.DataSource.Dns)
			if err != nil {
				log.Printf("Error connecting to database: %v", err)
				return
			}

			migrate.SetSchema("cartera")
			n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
			if err != nil {
				log.Printf("Error migrating up: %v", err)
				return
			}
			log.Printf("Applied %d migrations!", n)
		},
	}

	return cmd
}

func migrateDownCommands(b *carteraInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "rollback cartera database migration",
		Run: func(cmd *cobra.Command, args []string) {
			migrations := &migrate.EmbedFileSystemMigrationSource{
				FileSystem: cartera.SQLFiles,
				Root:       "sql",
			}

			db, err := database.ConnectDB(b.cnf.DataSource.Dns)
			if err != nil {
				log.Printf("Error connecting to database: %v", err)
				return
			}

			migrate.SetSchema("cartera")
			n, err := migrate.Exec(db, "postgres", migrations, migrate.Down)
			if err != nil {
				log.Printf("Error migrating down: %v", err)
				return
			}
			log.Printf("Rolled back %d migrations!", n)
		},
	}

	return cmd
}
