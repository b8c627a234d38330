// Command migrate applies or rolls back the PostgreSQL schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/database"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the ACE database schema",
	Long: `Schema migration commands. Connection settings come from the same
config.yaml and ACE_DATABASE_* variables the server reads.

Examples:
  migrate up
  migrate down --steps 1`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(0)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		if steps < 1 {
			return fmt.Errorf("--steps must be at least 1")
		}
		return run(-steps)
	},
}

func init() {
	downCmd.Flags().Int("steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(upCmd, downCmd)
}

func run(steps int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := database.Migrate(cfg.Database, steps); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
