/*
Package main is the entry point for the skillbridge service.

Usage:

	skillbridge [command]

Available Commands:

	serve       Run the HTTP API
	migrate     Apply database migrations and exit
	resolve     Resolve one assessment result and print it as JSON

Configuration comes from the environment, optionally loaded from a .env
file in the working directory.
*/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// set via ldflags
var version = "dev"

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "skillbridge",
		Short:         "Skills assessment and recommendation service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newResolveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "skillbridge:", err)
		os.Exit(1)
	}
}
