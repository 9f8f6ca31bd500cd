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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carterahq/cartera"
	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/database"
	"github.com/carterahq/cartera/internal/notification"
)

// Cli represents the CLI application, encapsulating the root Cobra command.
type Cli struct {
	cmd *cobra.Command
}

// carteraInstance holds the Cartera instance and its configuration.
// This is used to store the runtime instance and configuration globally within the application.
type carteraInstance struct {
	cartera *cartera.Cartera
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the Cartera instance before running any command.
func preRun(app *carteraInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("cartera.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newCartera, err := setupCartera(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.cartera = newCartera
		app.cnf = cnf

		return nil
	}
}

// setupCartera creates and initializes a new Cartera instance based on the provided configuration.
func setupCartera(cfg *config.Configuration) (*cartera.Cartera, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newCartera, err := cartera.NewCartera(db)
	if err != nil {
		return nil, fmt.Errorf("error creating cartera: %v", err)
	}
	return newCartera, nil
}

// NewCLI creates the command-line interface for the Cartera application.
func NewCLI() *Cli {
	var configFile string
	b := &carteraInstance{}

	var rootCmd = &cobra.Command{
		Use:   "cartera",
		Short: "Debt collection campaign manager",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./cartera.json", "Configuration file for cartera")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Cli{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w Cli) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
