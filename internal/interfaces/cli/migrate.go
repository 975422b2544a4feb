package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd(deps CommandDependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the scan database schema",
	}
	cmd.AddCommand(
		newMigrateUpCmd(deps),
		newMigrateDownCmd(deps),
		newMigrateStatusCmd(deps),
		newMigrateForceCmd(deps),
	)
	return cmd
}

// withMigrator opens a migrator for the duration of fn.
func withMigrator(cmd *cobra.Command, deps CommandDependencies, fn func(Migrator) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := cc.withTimeout(cmd.Context())
	defer cancel()

	mg, err := deps.OpenMigrator(ctx, cc)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func newMigrateUpCmd(deps CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, deps, func(mg Migrator) error {
				if err := mg.Up(); err != nil {
					return err
				}
				return printMigrationStatus(cmd, mg)
			})
		},
	}
}

func newMigrateDownCmd(deps CommandDependencies) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.InvalidParam("--steps must be at least 1")
			}
			return withMigrator(cmd, deps, func(mg Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				return printMigrationStatus(cmd, mg)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateStatusCmd(deps CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, deps, func(mg Migrator) error {
				return printMigrationStatus(cmd, mg)
			})
		},
	}
}

func newMigrateForceCmd(deps CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var version int
			if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil || version < -1 {
				return errors.InvalidParam("version must be an integer >= -1").WithDetail(args[0])
			}
			return withMigrator(cmd, deps, func(mg Migrator) error {
				if err := mg.Force(version); err != nil {
					return err
				}
				return printMigrationStatus(cmd, mg)
			})
		},
	}
}

// MigrationStatus is the printable schema state.
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s *MigrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("schema version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("schema version %d", s.Version)
}

func printMigrationStatus(cmd *cobra.Command, mg Migrator) error {
	version, dirty, err := mg.Status()
	if err != nil {
		return err
	}
	return PrintResult(cmd, &MigrationStatus{Version: version, Dirty: dirty})
}

//Personal.AI order the ending
